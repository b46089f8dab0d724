package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestTavily_Search_SendsKeyAndParsesResults(t *testing.T) {
	var gotBody tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Alpha", "url": "https://a.example", "content": "first"},
				{"title": "Beta", "url": "https://b.example", "content": "second"},
			},
		})
	}))
	defer srv.Close()

	tv := &Tavily{APIKey: "tk", BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := tv.Search(context.Background(), "alpha beta", 2)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if gotBody.APIKey != "tk" || gotBody.Query != "alpha beta" || gotBody.MaxResults != 2 {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Source != "tavily" {
		t.Fatalf("unexpected source: %q", got[0].Source)
	}
}

func TestTavily_Search_RequiresAPIKey(t *testing.T) {
	tv := &Tavily{}
	if _, err := tv.Search(context.Background(), "q", 1); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestDuckDuckGo_Search_ScrapesResults(t *testing.T) {
	page := `<html><body>
	<div class="result">
		<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fdoc">Example Doc</a>
		<a class="result__snippet">A snippet about the doc.</a>
	</div>
	<div class="result">
		<a class="result__a" href="https://direct.example/page">Direct Link</a>
		<a class="result__snippet">Direct snippet.</a>
	</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "docs" {
			t.Errorf("missing query param, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := d.Search(context.Background(), "docs", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].URL != "https://example.com/doc" {
		t.Fatalf("redirect not unwrapped: %q", got[0].URL)
	}
	if got[1].URL != "https://direct.example/page" {
		t.Fatalf("direct link altered: %q", got[1].URL)
	}
	if got[0].Snippet != "A snippet about the doc." {
		t.Fatalf("unexpected snippet: %q", got[0].Snippet)
	}
}

func TestResolveRedirect(t *testing.T) {
	cases := []struct {
		name string
		href string
		want string
	}{
		{"plain", "https://example.com/x", "https://example.com/x"},
		{"uddg", "https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fy", "https://example.com/y"},
		{"scheme relative uddg", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fz", "https://example.com/z"},
		{"relative without dest", "/l/?kh=1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveRedirect(tc.href); got != tc.want {
				t.Fatalf("resolveRedirect(%q) = %q, want %q", tc.href, got, tc.want)
			}
		})
	}
}

func TestFileProvider_Search_FiltersAndLimits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	data := `[
		{"title": "Go concurrency patterns", "url": "https://a.example", "snippet": "channels"},
		{"title": "Rust ownership", "url": "https://b.example", "snippet": "borrow checker"},
		{"title": "Go scheduler", "url": "https://c.example", "snippet": "goroutines"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	fp := &FileProvider{Path: path}
	got, err := fp.Search(context.Background(), "go", 1)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].URL != "https://a.example" {
		t.Fatalf("unexpected result: %+v", got[0])
	}
	if got[0].Source != "file" {
		t.Fatalf("unexpected source: %q", got[0].Source)
	}
}

func TestQueryFile_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	results := []Result{
		{Title: "One", URL: "https://one.example", Snippet: "s1", Source: "searxng"},
		{Title: "Two", URL: "https://two.example", Snippet: "s2", Source: "tavily"},
	}
	if err := WriteQueryFile(path, "topic", 5, []string{"searxng", "tavily"}, results); err != nil {
		t.Fatalf("write: %v", err)
	}
	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if qf.Query != "topic" || qf.Limit != 5 {
		t.Fatalf("header mismatch: %+v", qf)
	}
	if qf.Summary.Total != 2 || len(qf.Summary.Backends) != 2 {
		t.Fatalf("summary mismatch: %+v", qf.Summary)
	}
	if len(qf.Results) != 2 || qf.Results[1].URL != "https://two.example" {
		t.Fatalf("results mismatch: %+v", qf.Results)
	}
}

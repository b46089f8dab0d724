package extract

import (
	"strings"
	"testing"
)

func TestHeuristic_PrefersMainOverBody(t *testing.T) {
	input := []byte(`<html><head><title>Page Title</title></head><body>
	<nav>Home About Contact</nav>
	<main><p>The article body.</p><p>Second paragraph.</p></main>
	<footer>Copyright</footer>
	</body></html>`)

	doc, err := HeuristicExtractor{}.Extract(input, "https://example.com/a")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Title != "Page Title" {
		t.Fatalf("title = %q", doc.Title)
	}
	want := "The article body.\nSecond paragraph."
	if doc.Text != want {
		t.Fatalf("text = %q, want %q", doc.Text, want)
	}
	if doc.Length != len(want) {
		t.Fatalf("length = %d, want %d", doc.Length, len(want))
	}
}

func TestHeuristic_LargestCandidateWins(t *testing.T) {
	input := []byte(`<html><body>
	<div class="content"><p>Short sidebar blurb.</p></div>
	<article><p>This is the much longer primary article text that should be selected over the shorter container.</p></article>
	</body></html>`)

	doc, err := HeuristicExtractor{}.Extract(input, "https://example.com/b")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(doc.Text, "primary article text") {
		t.Fatalf("longest candidate not chosen: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "sidebar blurb") {
		t.Fatalf("shorter candidate leaked into output: %q", doc.Text)
	}
}

func TestHeuristic_ClassBasedCandidates(t *testing.T) {
	input := []byte(`<html><body>
	<div class="ad">Buy now</div>
	<div class="post"><p>Post body text here.</p></div>
	</body></html>`)

	doc, err := HeuristicExtractor{}.Extract(input, "https://example.com/c")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Text != "Post body text here." {
		t.Fatalf("text = %q", doc.Text)
	}
}

func TestHeuristic_FallsBackToBody(t *testing.T) {
	input := []byte(`<html><body>
	<p>Line one.</p>
	<p>Line two.</p>
	</body></html>`)

	doc, err := HeuristicExtractor{}.Extract(input, "https://example.com/d")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Text != "Line one.\nLine two." {
		t.Fatalf("text = %q", doc.Text)
	}
}

func TestHeuristic_StripsBoilerplate(t *testing.T) {
	input := []byte(`<html><body>
	<script>var x = 1;</script>
	<style>p { color: red }</style>
	<header>Site header</header>
	<aside>Related links</aside>
	<p>Actual text.</p>
	<noscript>Enable JS</noscript>
	</body></html>`)

	doc, err := HeuristicExtractor{}.Extract(input, "https://example.com/e")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Text != "Actual text." {
		t.Fatalf("boilerplate survived: %q", doc.Text)
	}
}

func TestHeuristic_Deterministic(t *testing.T) {
	input := []byte(`<html><head><title>T</title></head><body>
	<main><p>Alpha  beta	gamma.</p></main>
	</body></html>`)

	first, err := HeuristicExtractor{}.Extract(input, "https://example.com/f")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := HeuristicExtractor{}.Extract(input, "https://example.com/f")
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		if again != first {
			t.Fatalf("run %d differed: %+v vs %+v", i, again, first)
		}
	}
	if first.Text != "Alpha beta gamma." {
		t.Fatalf("whitespace not collapsed: %q", first.Text)
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := collapseSpaces("a  b\tc\nd"); got != "a b c d" {
		t.Fatalf("collapseSpaces = %q", got)
	}
}

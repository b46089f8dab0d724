// Package selection cuts a merged result set down to the URLs worth
// fetching. The default keeps discovery order and takes the first N unique
// URLs; optional filters add per-domain caps, a low-signal snippet floor,
// and a language-hint preference.
package selection

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"github.com/parasfis/deep-research-new/internal/aggregate"
	"github.com/parasfis/deep-research-new/internal/search"
)

// Options configures selection constraints.
type Options struct {
	// MaxTotal caps the selected set. Zero or negative means 10.
	MaxTotal int
	// PerDomain caps results per host. Zero disables the cap.
	PerDomain int
	// MinSnippetChars drops results whose snippet has fewer than this many
	// characters. Zero disables low-signal filtering.
	MinSnippetChars int
	// LanguageHint, when set (e.g. "en", "fi"), moves results whose
	// country-code TLD clearly conflicts with the hint behind the rest.
	// Relative order within each group is preserved.
	LanguageHint string
}

// Select applies the configured filters in discovery order and returns the
// first MaxTotal unique URLs. With only MaxTotal set this is exactly a
// first-N discovery-order cut.
func Select(results []search.Result, opt Options) []search.Result {
	if opt.MaxTotal <= 0 {
		opt.MaxTotal = 10
	}

	ordered := results
	if opt.LanguageHint != "" {
		ordered = preferLanguage(results, opt.LanguageHint)
	}

	seen := aggregate.NewSet()
	domainCounts := map[string]int{}
	out := make([]search.Result, 0, opt.MaxTotal)
	for _, r := range ordered {
		if opt.MinSnippetChars > 0 && len(strings.TrimSpace(r.Snippet)) < opt.MinSnippetChars {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Host)
		if opt.PerDomain > 0 && domainCounts[host] >= opt.PerDomain {
			continue
		}
		if !seen.Add(r.URL) {
			continue
		}
		domainCounts[host]++
		out = append(out, r)
		if len(out) >= opt.MaxTotal {
			break
		}
	}
	return out
}

// preferLanguage stably partitions results into hint-compatible and
// conflicting groups. A result conflicts only when its host ends in a
// country-code TLD that parses as a language incompatible with the hint;
// generic TLDs are neutral and stay in place.
func preferLanguage(results []search.Result, hint string) []search.Result {
	hintTag, err := language.Parse(hint)
	if err != nil {
		return results
	}
	matcher := language.NewMatcher([]language.Tag{hintTag})

	preferred := make([]search.Result, 0, len(results))
	var deferred []search.Result
	for _, r := range results {
		if conflictsWithHint(r.URL, matcher) {
			deferred = append(deferred, r)
			continue
		}
		preferred = append(preferred, r)
	}
	return append(preferred, deferred...)
}

func conflictsWithHint(rawURL string, matcher language.Matcher) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	dot := strings.LastIndex(host, ".")
	if dot < 0 || dot == len(host)-1 {
		return false
	}
	tld := host[dot+1:]
	if len(tld) != 2 {
		return false
	}
	tldTag, err := language.Parse(tld)
	if err != nil {
		return false
	}
	_, _, conf := matcher.Match(tldTag)
	return conf == language.No
}

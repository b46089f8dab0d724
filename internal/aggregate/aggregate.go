// Package aggregate canonicalizes source URLs and tracks first-seen
// deduplication keys for merged search results.
package aggregate

import (
	"net/url"
	"strings"
)

// trackingParams are removed before a URL is used as a dedup key. They vary
// per visitor and would otherwise split identical pages into distinct keys.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"utm_id", "gclid", "fbclid", "mc_cid", "mc_eid",
}

// CanonicalURL normalizes a URL into its deduplication key: scheme and host
// lowercased, default ports and fragment dropped, tracking parameters
// removed, and a trailing slash on non-root paths trimmed. The second return
// is false when the input does not parse as an absolute URL.
func CanonicalURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}
	u.Fragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}

// Set tracks canonical URLs already seen during a merge. First-seen-wins:
// Add reports true only for the first occurrence of a key.
type Set struct {
	seen map[string]struct{}
}

// NewSet returns an empty dedup set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add canonicalizes raw and records it. It returns false when the URL was
// seen before or does not parse; callers drop such results.
func (s *Set) Add(raw string) bool {
	key, ok := CanonicalURL(raw)
	if !ok {
		return false
	}
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len reports how many unique URLs the set holds.
func (s *Set) Len() int { return len(s.seen) }

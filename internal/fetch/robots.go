package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// RobotsGate checks robots.txt before a URL is fetched, caching the parsed
// rules per host. Lookups that fail or return no robots.txt default to
// allowed, so an unreachable robots endpoint never blocks research.
type RobotsGate struct {
	HTTPClient *http.Client
	UserAgent  string
	// Expiry bounds how long cached rules are reused. Zero means 1 hour.
	Expiry time.Duration

	mu    sync.Mutex
	cache map[string]robotsEntry
	now   func() time.Time
}

type robotsEntry struct {
	data    *robotstxt.RobotsData
	expires time.Time
}

// Allowed reports whether rawURL may be fetched under the host's robots.txt.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	data := g.rules(ctx, u)
	if data == nil {
		return true
	}
	agent := g.UserAgent
	if agent == "" {
		agent = "deepresearch"
	}
	return data.TestAgent(u.Path, agent)
}

func (g *RobotsGate) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	g.mu.Lock()
	if g.now == nil {
		g.now = time.Now
	}
	if g.cache == nil {
		g.cache = make(map[string]robotsEntry)
	}
	key := u.Scheme + "://" + u.Host
	if e, ok := g.cache[key]; ok && g.now().Before(e.expires) {
		g.mu.Unlock()
		return e.data
	}
	g.mu.Unlock()

	data := g.fetchRules(ctx, key+"/robots.txt")

	expiry := g.Expiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	g.mu.Lock()
	g.cache[key] = robotsEntry{data: data, expires: g.now().Add(expiry)}
	g.mu.Unlock()
	return data
}

// fetchRules returns nil when robots.txt is missing or unreachable, meaning
// everything is allowed.
func (g *RobotsGate) fetchRules(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	hc := g.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", robotsURL).Msg("robots.txt unreachable")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		log.Debug().Err(fmt.Errorf("parse robots.txt: %w", err)).Str("url", robotsURL).Msg("ignoring robots.txt")
		return nil
	}
	return data
}

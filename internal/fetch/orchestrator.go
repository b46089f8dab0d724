package fetch

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/parasfis/deep-research-new/internal/extract"
	"github.com/parasfis/deep-research-new/internal/metrics"
)

// ContentRecord is the extracted content of one fetched URL plus metadata.
// One record exists per unique URL; the orchestrator owns records until it
// hands the result map to its caller.
type ContentRecord struct {
	URL         string
	Title       string
	Text        string
	Domain      string
	FetchedAt   time.Time
	ContentType string
	Length      int
}

// Orchestrator fans a URL set out to parallel fetch+extract workers bounded
// by MaxWorkers. Per-URL failures are logged and omitted from the result;
// they never abort sibling fetches.
type Orchestrator struct {
	Client    *Client
	Extractor extract.Extractor
	// MaxWorkers is the hard upper bound on concurrent outbound fetches.
	// Zero or negative means 4.
	MaxWorkers int
}

// FetchAll fetches every URL and returns a partial mapping from URL to its
// content record. Missing keys denote a fetch or extraction failure for that
// URL. The call returns once every dispatched task has completed or timed
// out; individual URLs are not retried here.
func (o *Orchestrator) FetchAll(ctx context.Context, urls []string) map[string]ContentRecord {
	workers := o.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	extractor := o.Extractor
	if extractor == nil {
		extractor = extract.HeuristicExtractor{}
	}

	sem := semaphore.NewWeighted(int64(workers))
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records = make(map[string]ContentRecord, len(urls))
	)
	for _, u := range urls {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Warn().Err(err).Str("url", pageURL).Msg("fetch canceled before dispatch")
				return
			}
			defer sem.Release(1)

			rec, err := o.fetchOne(ctx, pageURL, extractor)
			if err != nil {
				log.Warn().Err(err).Str("url", pageURL).Msg("fetch failed; skipping source")
				return
			}
			mu.Lock()
			records[pageURL] = rec
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return records
}

func (o *Orchestrator) fetchOne(ctx context.Context, pageURL string, extractor extract.Extractor) (ContentRecord, error) {
	start := time.Now()
	body, contentType, err := o.Client.Get(ctx, pageURL)
	metrics.RecordFetch(hostOf(pageURL), len(body), time.Since(start), err)
	if err != nil {
		return ContentRecord{}, err
	}
	doc, err := extractor.Extract(body, pageURL)
	if err != nil {
		return ContentRecord{}, err
	}
	return ContentRecord{
		URL:         pageURL,
		Title:       doc.Title,
		Text:        doc.Text,
		Domain:      hostOf(pageURL),
		FetchedAt:   time.Now(),
		ContentType: contentType,
		Length:      doc.Length,
	}, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

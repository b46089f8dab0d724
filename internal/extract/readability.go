package extract

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityExtractor extracts content with the go-readability port of
// Mozilla's Readability. It tends to produce cleaner text on news and blog
// pages than the heuristic strategy at the cost of more aggressive pruning.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(input []byte, srcURL string) (Document, error) {
	pageURL, err := url.Parse(srcURL)
	if err != nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(input), pageURL)
	if err != nil {
		return Document{}, &ExtractionError{URL: srcURL, Err: err}
	}
	text := normalizeLines(article.TextContent)
	return Document{
		Title:  strings.TrimSpace(article.Title),
		Text:   text,
		Length: len(text),
	}, nil
}

// normalizeLines collapses the extracted text to non-blank trimmed lines
// joined by single newlines.
func normalizeLines(s string) string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if t := strings.TrimSpace(collapseSpaces(line)); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

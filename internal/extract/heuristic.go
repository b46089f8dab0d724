package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// removeSelector matches elements stripped before any text extraction.
const removeSelector = "script, style, noscript, nav, header, footer, aside, iframe"

// candidateSelector matches containers likely to hold the main content:
// semantic elements first, then the class conventions common on article pages.
const candidateSelector = "main, article, [role=main], " +
	"div.content, div.main, div.article, div.post, " +
	"section.content, section.main, section.article, section.post"

// HeuristicExtractor picks the densest main-content container and falls back
// to whole-body text when the document exposes none.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte, srcURL string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}, &ExtractionError{URL: srcURL, Err: err}
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	doc.Find(removeSelector).Remove()

	// Among candidate containers, keep the one whose extracted text is
	// longest; ties go to the earliest in document order.
	var best string
	doc.Find(candidateSelector).Each(func(_ int, sel *goquery.Selection) {
		text := selectionText(sel)
		if len(text) > len(best) {
			best = text
		}
	})
	if best == "" {
		body := doc.Find("body").First()
		if body.Length() > 0 {
			best = selectionText(body)
		} else {
			best = selectionText(doc.Selection)
		}
	}

	return Document{Title: title, Text: best, Length: len(best)}, nil
}

// selectionText walks the selection's text nodes and joins the non-blank
// lines with single newlines, mirroring a line-per-text-node layout.
func selectionText(sel *goquery.Selection) string {
	var lines []string
	for _, n := range sel.Nodes {
		collectLines(n, &lines)
	}
	return strings.Join(lines, "\n")
}

func collectLines(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(collapseSpaces(n.Data)); t != "" {
			*lines = append(*lines, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLines(c, lines)
	}
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}

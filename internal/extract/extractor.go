// Package extract turns raw HTML into clean readable text. Extraction is
// pure: given identical input bytes the output is byte-identical, and no
// network I/O happens here.
package extract

import "fmt"

// Document is the extracted content of one page.
type Document struct {
	Title string
	Text  string
	// Length is the character count of Text, recorded as metadata.
	Length int
}

// Extractor is the interface for content extraction strategies.
// Implementations must be deterministic and side-effect free.
type Extractor interface {
	// Extract converts raw HTML into a Document. srcURL is the page's own
	// URL, used only to resolve relative references; it is never fetched.
	Extract(input []byte, srcURL string) (Document, error)
}

// ExtractionError reports unparseable input. HTTP-level failures are the
// fetching caller's concern and never surface as this type.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

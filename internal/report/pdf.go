// Package report renders a research run into a PDF document.
package report

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/parasfis/deep-research-new/internal/analyze"
	"github.com/parasfis/deep-research-new/internal/pipeline"
)

const titlePrefix = "Deep Research Report: "

// WritePDF renders the topic, analyzed sources, and the consulted source
// list into a simple A4 PDF at outPath. Layout is intentionally minimal.
func WritePDF(topic string, bundle *pipeline.Bundle, analyses []analyze.Analysis, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, titlePrefix+topic, "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(analyses) > 0 {
		heading(pdf, "Key findings")
		for _, a := range analyses {
			src, ok := bundle.ContentSources[a.URL]
			title := a.URL
			if ok && src.Title != "" {
				title = src.Title
			}
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, fmt.Sprintf("%s (relevance %.2f)", title, a.RelevanceScore), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			for _, fact := range a.KeyFacts {
				pdf.MultiCell(0, 5, "- "+fact, "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	heading(pdf, "Sources")
	for i, u := range bundle.Selected {
		src, fetched := bundle.ContentSources[u]
		label := u
		if fetched && src.Title != "" {
			label = src.Title
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.WriteLinkString(5, fmt.Sprintf("%d. %s", i+1, label), u)
		pdf.Ln(5)
		if !fetched {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 5, "   content unavailable", "", 1, "L", false, 0, "")
		}
	}

	return pdf.OutputFileAndClose(outPath)
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// Build returns a Letter-size PDF with one page per argument. Each string
// is drawn as a single line of Helvetica text; an empty string yields a
// blank page. Content streams are left uncompressed.
func Build(pages ...string) []byte {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)

	for _, text := range pages {
		doc.AddPage()
		if text == "" {
			continue
		}
		doc.SetFont("Helvetica", "", 12)
		doc.Text(72, 72, text)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		panic("pdftest: " + err.Error())
	}
	return buf.Bytes()
}

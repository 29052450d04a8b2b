package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "StudyroomSans"
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

func (pf *PDFFormatter) Format(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts cannot render Hangul, so prefer the configured TTF when it exists
	fontName := "Arial"
	if pf.fontPath != "" {
		if _, err := os.Stat(pf.fontPath); err == nil {
			pdf.AddUTF8Font(pdfFontName, "", pf.fontPath)
			pdf.AddUTF8Font(pdfFontName, "B", pf.fontPath)
			fontName = pdfFontName
		}
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, doc.title())
	pdf.Ln(12)

	pdf.SetFont(fontName, "", 11)
	_, lineHeight := pdf.GetFontSize()
	pdf.MultiCell(0, lineHeight*1.5, doc.Body, "", "", false)

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}

package formatter

import (
	"bytes"
	"strings"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(doc Document) ([]byte, error) {
	out := document.New()
	defer out.Close()

	titlePar := out.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(doc.title())

	// One paragraph per chunk keeps the delimiter structure visible in Word
	for _, part := range strings.Split(doc.Body, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		run := out.AddParagraph().AddRun()
		for i, line := range strings.Split(part, "\n") {
			if i > 0 {
				run.AddBreak()
			}
			run.AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := out.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

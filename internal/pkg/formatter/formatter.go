package formatter

import (
	"fmt"

	"github.com/futig/studyroom-rag/internal/entity"
)

const defaultTitle = "Study context"

// Document is an assembled context ready for export
type Document struct {
	Title string
	Body  string
}

func (d Document) title() string {
	if d.Title == "" {
		return defaultTitle
	}
	return d.Title
}

type Formatter interface {
	Format(doc Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	fontPath string
}

// NewFactory creates formatters; fontPath optionally points at a UTF-8 TTF used for PDF output
func NewFactory(fontPath string) *Factory {
	return &Factory{fontPath: fontPath}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown, "":
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.fontPath), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

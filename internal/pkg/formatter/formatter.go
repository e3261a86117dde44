// Package formatter renders a project plan as markdown, PDF or DOCX.
package formatter

import (
	"fmt"

	"github.com/futig/coach-backend/internal/entity"
)

type Formatter interface {
	Format(doc entity.PlanDocument) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	fontPath string
}

// NewFactory creates a factory. fontPath points to a UTF-8 TTF font for PDF output;
// when empty or missing the PDF falls back to a core font.
func NewFactory(fontPath string) *Factory {
	return &Factory{fontPath: fontPath}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.fontPath), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidParameter, format)
	}
}

package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/coach-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(doc entity.PlanDocument) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", doc.Title)
	if doc.Subtitle != "" {
		fmt.Fprintf(&buf, "\n_%s_\n", doc.Subtitle)
	}

	for _, s := range doc.Sections {
		fmt.Fprintf(&buf, "\n## %s\n\n", s.Heading)
		if s.Text != "" {
			fmt.Fprintf(&buf, "%s\n\n", s.Text)
		}
		for _, item := range s.Items {
			fmt.Fprintf(&buf, "- %s\n", item)
		}
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

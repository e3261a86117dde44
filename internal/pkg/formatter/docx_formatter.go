package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"

	"github.com/futig/coach-backend/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(plan entity.PlanDocument) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	addParagraph(doc, "Title", plan.Title)
	if plan.Subtitle != "" {
		addParagraph(doc, "Subtitle", plan.Subtitle)
	}

	for _, s := range plan.Sections {
		addParagraph(doc, "Heading1", s.Heading)
		if s.Text != "" {
			addParagraph(doc, "", s.Text)
		}
		for _, item := range s.Items {
			addParagraph(doc, "ListParagraph", "• "+item)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addParagraph(doc *document.Document, style, text string) {
	p := doc.AddParagraph()
	if style != "" {
		p.SetStyle(style)
	}
	p.AddRun().AddText(text)
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

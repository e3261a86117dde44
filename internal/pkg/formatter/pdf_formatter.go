package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/futig/coach-backend/internal/entity"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name gofpdf registers the UTF-8 font under
	pdfFontName = "DejaVuSans"
	// pdfCoreFont only covers Latin-1
	pdfCoreFont = "Arial"
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

func (mf *PDFFormatter) Format(doc entity.PlanDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := pdfCoreFont
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if mf.fontPath != "" {
		if _, err := os.Stat(mf.fontPath); err == nil {
			// Register regular and bold styles under the same family name
			pdf.AddUTF8Font(pdfFontName, "", mf.fontPath)
			pdf.AddUTF8Font(pdfFontName, "B", mf.fontPath)
			fontName = pdfFontName
			tr = func(s string) string { return s }
		}
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.MultiCell(0, 10, tr(doc.Title), "", "", false)
	if doc.Subtitle != "" {
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, 6, tr(doc.Subtitle), "", "", false)
	}
	pdf.Ln(4)

	for _, s := range doc.Sections {
		pdf.SetFont(fontName, "B", 14)
		pdf.MultiCell(0, 8, tr(s.Heading), "", "", false)

		pdf.SetFont(fontName, "", 12)
		_, lineHeight := pdf.GetFontSize()
		if s.Text != "" {
			pdf.MultiCell(0, lineHeight*1.5, tr(s.Text), "", "", false)
		}
		for _, item := range s.Items {
			pdf.MultiCell(0, lineHeight*1.5, tr("- "+item), "", "", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}

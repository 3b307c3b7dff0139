package convert

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/docx"
	"github.com/tsawler/docflip/render"
	"github.com/tsawler/docflip/typeset"
)

// PDFOutput is the result of a DOCX to PDF conversion.
type PDFOutput struct {
	PDF       []byte
	PageCount int
	Warnings  []string
}

// DocxToPDF converts DOCX packages to PDF. A value may be reused; each call
// owns its parser, layout cursor and canvas.
type DocxToPDF struct {
	settings
}

// NewDocxToPDF returns a converter configured by opts.
func NewDocxToPDF(opts ...Option) *DocxToPDF {
	return &DocxToPDF{settings: newSettings(opts)}
}

// Convert parses data as a DOCX package, lays the document out on pages of
// the given size and renders them. The document is measured and then drawn;
// both passes must agree on the page count.
func (c *DocxToPDF) Convert(data []byte, size typeset.PageSize) (*PDFOutput, error) {
	start := time.Now()
	if len(data) == 0 {
		return nil, Classify(fmt.Errorf("%w: empty document", ErrInvalidInput))
	}

	pkg, err := docx.Open(data, docx.WithLogger(c.log))
	if err != nil {
		return nil, Classify(err)
	}
	doc, warnings, err := pkg.Document()
	if err != nil {
		return nil, Classify(err)
	}

	engine := typeset.NewEngine(size,
		typeset.WithMargins(c.margins),
		typeset.WithMeasurer(c.measurer),
		typeset.WithImages(pkg),
		typeset.WithLogger(c.log),
	)

	measured, err := engine.Measure(doc)
	if err != nil {
		return nil, Classify(err)
	}

	canvas := render.NewPDFCanvas(size, render.WithLogger(c.log), render.WithTitle(title(measured)))
	drawn, err := engine.Draw(doc, canvas)
	if err != nil {
		return nil, Classify(err)
	}
	if drawn.PageCount != measured.PageCount {
		return nil, Classify(fmt.Errorf("%w: measured %d pages but drew %d",
			typeset.ErrRender, measured.PageCount, drawn.PageCount))
	}

	pdf, err := canvas.Bytes()
	if err != nil {
		return nil, Classify(fmt.Errorf("%w: %v", typeset.ErrRender, err))
	}

	warnings = appendUnique(warnings, drawn.Warnings...)
	c.log.WithFields(logrus.Fields{
		"pages":    drawn.PageCount,
		"size":     size.Name,
		"bytes":    len(pdf),
		"warnings": len(warnings),
		"elapsed":  time.Since(start).String(),
	}).Info("converted DOCX to PDF")

	return &PDFOutput{PDF: pdf, PageCount: drawn.PageCount, Warnings: warnings}, nil
}

// title is the first level-one heading, used as the PDF title.
func title(plan *typeset.Plan) string {
	for _, h := range plan.Headings {
		if h.Level == 1 {
			return h.Title
		}
	}
	return ""
}

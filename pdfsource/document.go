// Package pdfsource adapts PDF files to the extract page interfaces.
//
// Text comes from the PDF's own text layer, read with ledongthuc/pdf. Pages
// that are scans (a single page-covering image and no text) can be
// rasterized from their largest image for OCR.
package pdfsource

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/extract"
	"github.com/tsawler/docflip/internal/logging"
)

// ErrInvalidPDF is returned when data cannot be read as a PDF.
var ErrInvalidPDF = errors.New("invalid PDF")

// Default page size used when a page declares no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Document is an opened PDF.
type Document struct {
	data   []byte
	reader *pdf.Reader
	pages  int
	log    logrus.FieldLogger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Document) {
		d.log = logging.OrDiscard(log)
	}
}

// Open parses a PDF held in memory. The data must not be modified while the
// document is in use.
func Open(data []byte, opts ...Option) (doc *Document, err error) {
	d := &Document{data: data, log: logging.Discard()}
	for _, opt := range opts {
		opt(d)
	}

	// The reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	d.reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	d.pages = d.reader.NumPage()
	if d.pages <= 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}

	d.log.WithField("pages", d.pages).Debug("PDF opened")
	return d, nil
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return d.pages
}

// Page returns the page at a 0-based index.
func (d *Document) Page(index int) (*Page, error) {
	if index < 0 || index >= d.pages {
		return nil, fmt.Errorf("page %d out of range [0, %d)", index, d.pages)
	}
	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("%w: page %d not found", ErrInvalidPDF, index+1)
	}

	page := &Page{doc: d, page: p, index: index}
	page.x0, page.y0, page.width, page.height = mediaBox(p)
	return page, nil
}

// Pages returns every page in order.
func (d *Document) Pages() ([]extract.Page, error) {
	pages := make([]extract.Page, 0, d.pages)
	for i := 0; i < d.pages; i++ {
		p, err := d.Page(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// mediaBox returns the page's MediaBox origin and size. MediaBox is
// inheritable, so parents are searched too.
func mediaBox(p pdf.Page) (x0, y0, width, height float64) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		x0, y0 = box.Index(0).Float64(), box.Index(1).Float64()
		x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		if x1-x0 > 0 && y1-y0 > 0 {
			return x0, y0, x1 - x0, y1 - y0
		}
	}
	return 0, 0, defaultPageWidth, defaultPageHeight
}

// Page is one page of a Document. It implements extract.Page,
// extract.TextLayer and extract.Rasterizer.
type Page struct {
	doc   *Document
	page  pdf.Page
	index int

	x0, y0        float64
	width, height float64
}

var (
	_ extract.TextLayer  = (*Page)(nil)
	_ extract.Rasterizer = (*Page)(nil)
)

// Size implements extract.Page.
func (p *Page) Size() (float64, float64) {
	return p.width, p.height
}

// Index returns the 0-based page index
func (p *Page) Index() int {
	return p.index
}

package typeset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/model"
)

// ErrRender is returned when a canvas fails while a document is drawn.
var ErrRender = errors.New("render error")

// Vertical gaps, in points.
const (
	defaultParagraphGap = 6.0
	tableGap            = 6.0
	headingGapFactor    = 0.5
)

// Engine lays a document out onto fixed-size pages. An Engine holds no
// per-run state and may be shared; every Measure or Draw call owns its own
// cursor.
type Engine struct {
	page     PageSize
	margins  Margins
	measurer Measurer
	images   ImageSource
	log      logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMargins overrides the default 56pt margins.
func WithMargins(m Margins) Option {
	return func(e *Engine) {
		e.margins = m
	}
}

// WithMeasurer replaces the Go font measurer.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithImages sets where inline images are loaded from. Without it every
// image is drawn as a placeholder.
func WithImages(src ImageSource) Option {
	return func(e *Engine) {
		e.images = src
	}
}

// WithLogger sets the logger used for layout diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = logging.OrDiscard(log)
	}
}

// NewEngine returns an engine for the given page size.
func NewEngine(size PageSize, opts ...Option) *Engine {
	e := &Engine{
		page:    size,
		margins: UniformMargins(DefaultMargin),
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.measurer == nil {
		e.measurer = NewGoFontMeasurer()
	}
	return e
}

// PageSize returns the size of the pages the engine produces
func (e *Engine) PageSize() PageSize {
	return e.page
}

// Placement records where a top-level element was laid out.
type Placement struct {
	StartPage int // 0-based
	EndPage   int
	Top       float64
}

// Heading is an explicit or inferred heading and where it landed.
type Heading struct {
	Level int
	Title string
	Page  int
	Y     float64
}

// Plan is the outcome of a layout run.
type Plan struct {
	PageCount  int
	Placements []Placement // one per document element, in order
	Headings   []Heading
	Warnings   []string
}

// Measure lays the document out without drawing anything.
func (e *Engine) Measure(doc *model.Document) (*Plan, error) {
	return e.run(doc, nil)
}

// Draw lays the document out and draws it onto canvas. The returned plan is
// identical to the one Measure returns for the same document.
func (e *Engine) Draw(doc *model.Document, canvas Canvas) (*Plan, error) {
	if canvas == nil {
		return nil, fmt.Errorf("%w: nil canvas", ErrRender)
	}
	return e.run(doc, canvas)
}

// run is the single layout routine behind Measure and Draw. Every decision
// that moves the cursor is taken the same way whether canvas is nil or not.
func (e *Engine) run(doc *model.Document, canvas Canvas) (*Plan, error) {
	p := &pass{
		Engine: e,
		cursor: NewCursor(e.page, e.margins),
		canvas: canvas,
		plan:   &Plan{},
		warned: make(map[string]bool),
		media:  make(map[string]*decodedImage),
	}

	p.ensurePage()
	if doc != nil {
		for _, el := range doc.Elements {
			switch el := el.(type) {
			case *model.Paragraph:
				p.paragraph(el)
			case *model.Table:
				p.table(el)
			default:
				p.plan.Placements = append(p.plan.Placements, p.placement(p.cursor.Page))
			}
			if p.err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, p.err)
			}
		}
	}

	p.ensurePage()
	if p.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, p.err)
	}
	p.plan.PageCount = p.cursor.Page + 1

	e.log.WithFields(logrus.Fields{
		"pages":    p.plan.PageCount,
		"elements": len(p.plan.Placements),
		"headings": len(p.plan.Headings),
		"warnings": len(p.plan.Warnings),
		"draw":     canvas != nil,
	}).Debug("layout finished")

	return p.plan, nil
}

// pass is the mutable state of one layout run.
type pass struct {
	*Engine
	cursor *Cursor
	canvas Canvas
	plan   *Plan
	warned map[string]bool
	media  map[string]*decodedImage
	begun  int
	err    error
}

func (p *pass) warn(msg string) {
	if p.warned[msg] {
		return
	}
	p.warned[msg] = true
	p.plan.Warnings = append(p.plan.Warnings, msg)
}

// ensurePage begins canvas pages up to the cursor's page. Pages are begun
// lazily so a layout that ends exactly on a page boundary does not emit a
// trailing blank page.
func (p *pass) ensurePage() {
	for p.begun <= p.cursor.Page {
		p.begun++
		if p.canvas != nil && p.err == nil {
			p.err = p.canvas.BeginPage(p.page.Width, p.page.Height)
		}
	}
}

// drawing reports whether ink should be placed. It begins the current page
// first.
func (p *pass) drawing() bool {
	if p.canvas == nil || p.err != nil {
		return false
	}
	p.ensurePage()
	return p.err == nil
}

func (p *pass) placement(start int) Placement {
	return Placement{StartPage: start, EndPage: p.cursor.Page, Top: p.cursor.Y}
}

func (p *pass) contentWidth() float64 {
	return p.cursor.ContentRect.Width
}

func (p *pass) contentHeight() float64 {
	return p.cursor.ContentRect.Height
}

// breakBefore honours an explicit page break unless the page is still empty.
func (p *pass) breakBefore(requested bool) {
	if requested && !p.cursor.AtTop() {
		p.cursor.NextPage()
	}
}

// InferHeadingLevel returns the paragraph's heading level, inferring one from
// its average font size when none is set. List items and paragraphs without
// text are never inferred to be headings.
func InferHeadingLevel(para *model.Paragraph) int {
	if para == nil {
		return 0
	}
	if para.HeadingLevel > 0 {
		return para.HeadingLevel
	}
	if para.IsListItem() || strings.TrimSpace(para.PlainText()) == "" {
		return 0
	}
	return model.HeadingLevelForSize(para.AverageFontSize())
}

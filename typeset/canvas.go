package typeset

// Canvas receives the drawing operations of a layout run. Coordinates are
// points from the top-left corner of the current page.
type Canvas interface {
	// BeginPage starts a new page; every other call applies to the most
	// recently begun page.
	BeginPage(width, height float64) error
	// DrawText draws text with its baseline at y.
	DrawText(x, y float64, text string, style Style) error
	DrawLine(x1, y1, x2, y2, width float64, color string) error
	DrawRect(x, y, w, h, lineWidth float64) error
	// DrawImage draws encoded image data scaled into the given box.
	DrawImage(x, y, w, h float64, data []byte, name string) error
	// Bookmark adds an outline entry pointing at y on the current page.
	Bookmark(title string, level int, y float64) error
}

// ImageSource resolves image relationship ids to encoded image data.
type ImageSource interface {
	Media(relID string) ([]byte, error)
}

// OpKind identifies a recorded canvas operation.
type OpKind int

const (
	OpBeginPage OpKind = iota
	OpText
	OpLine
	OpRect
	OpImage
	OpBookmark
)

// Op is one recorded canvas call.
type Op struct {
	Kind  OpKind
	Page  int // 0-based
	X, Y  float64
	W, H  float64
	Text  string
	Style Style
	Level int
}

// Recorder is a Canvas that records every call. It is useful for inspecting
// a layout without producing a PDF.
type Recorder struct {
	Ops   []Op
	pages int
}

// PageCount returns the number of pages begun
func (r *Recorder) PageCount() int {
	return r.pages
}

// Texts returns the recorded text operations in drawing order
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}

func (r *Recorder) current() int {
	return r.pages - 1
}

// BeginPage implements Canvas.
func (r *Recorder) BeginPage(width, height float64) error {
	r.pages++
	r.Ops = append(r.Ops, Op{Kind: OpBeginPage, Page: r.current(), W: width, H: height})
	return nil
}

// DrawText implements Canvas.
func (r *Recorder) DrawText(x, y float64, text string, style Style) error {
	r.Ops = append(r.Ops, Op{Kind: OpText, Page: r.current(), X: x, Y: y, Text: text, Style: style})
	return nil
}

// DrawLine implements Canvas.
func (r *Recorder) DrawLine(x1, y1, x2, y2, width float64, color string) error {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Page: r.current(), X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
	return nil
}

// DrawRect implements Canvas.
func (r *Recorder) DrawRect(x, y, w, h, lineWidth float64) error {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Page: r.current(), X: x, Y: y, W: w, H: h})
	return nil
}

// DrawImage implements Canvas.
func (r *Recorder) DrawImage(x, y, w, h float64, data []byte, name string) error {
	r.Ops = append(r.Ops, Op{Kind: OpImage, Page: r.current(), X: x, Y: y, W: w, H: h, Text: name})
	return nil
}

// Bookmark implements Canvas.
func (r *Recorder) Bookmark(title string, level int, y float64) error {
	r.Ops = append(r.Ops, Op{Kind: OpBookmark, Page: r.current(), Y: y, Text: title, Level: level})
	return nil
}

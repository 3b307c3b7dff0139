package typeset

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tsawler/docflip/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LineSpacing is the line height as a multiple of the font size.
const LineSpacing = 1.2

// Style is the formatting a fragment of text is measured and drawn with.
type Style struct {
	Family    string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Color     string // RRGGBB; empty is black
}

// StyleOf returns the style of a text run
func StyleOf(r model.Run) Style {
	return Style{
		Family:    r.FontFamily,
		Size:      r.Size(),
		Bold:      r.Bold,
		Italic:    r.Italic,
		Underline: r.Underline,
		Color:     r.Color,
	}
}

// Face is one of the embedded Go font faces.
type Face int

const (
	FaceRegular Face = iota
	FaceBold
	FaceItalic
	FaceBoldItalic
	FaceMono
	FaceMonoBold
	FaceMonoItalic
	FaceMonoBoldItalic
)

var faceNames = [...]string{
	"GoRegular", "GoBold", "GoItalic", "GoBoldItalic",
	"GoMono", "GoMonoBold", "GoMonoItalic", "GoMonoBoldItalic",
}

// Name returns a font name unique to the face
func (f Face) Name() string {
	if f < 0 || int(f) >= len(faceNames) {
		return faceNames[FaceRegular]
	}
	return faceNames[f]
}

// TTF returns the TrueType data of the face
func (f Face) TTF() []byte {
	switch f {
	case FaceBold:
		return gobold.TTF
	case FaceItalic:
		return goitalic.TTF
	case FaceBoldItalic:
		return gobolditalic.TTF
	case FaceMono:
		return gomono.TTF
	case FaceMonoBold:
		return gomonobold.TTF
	case FaceMonoItalic:
		return gomonoitalic.TTF
	case FaceMonoBoldItalic:
		return gomonobolditalic.TTF
	default:
		return goregular.TTF
	}
}

// monospaceHints are family name fragments mapped to the mono faces.
var monospaceHints = []string{"mono", "courier", "consolas", "code", "menlo", "typewriter"}

// FaceFor maps a style to the face it is measured and drawn with. Families
// that look monospaced map to Go Mono, everything else to Go.
func FaceFor(s Style) Face {
	face := FaceRegular
	family := strings.ToLower(s.Family)
	for _, hint := range monospaceHints {
		if strings.Contains(family, hint) {
			face = FaceMono
			break
		}
	}
	if s.Bold {
		face++
	}
	if s.Italic {
		face += 2
	}
	return face
}

// Measurer reports text metrics in points.
type Measurer interface {
	// Width returns the advance width of text set in style.
	Width(text string, style Style) float64
	// Metrics returns the ascent and descent of the style's font, both
	// positive.
	Metrics(style Style) (ascent, descent float64)
}

// LineHeight returns the height of one line set in style
func LineHeight(s Style) float64 {
	return s.Size * LineSpacing
}

type faceKey struct {
	face Face
	size float64
}

// GoFontMeasurer measures text with the Go fonts at 72 DPI without hinting,
// so one unit is one point. It is safe for concurrent use.
type GoFontMeasurer struct {
	mu    sync.Mutex
	fonts map[Face]*opentype.Font
	faces map[faceKey]font.Face
}

// NewGoFontMeasurer returns a measurer with empty caches.
func NewGoFontMeasurer() *GoFontMeasurer {
	return &GoFontMeasurer{
		fonts: make(map[Face]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Width implements Measurer.
func (m *GoFontMeasurer) Width(text string, style Style) float64 {
	if text == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	face := m.face(style)
	if face == nil {
		return approximateWidth(text, style.Size)
	}
	return toPoints(font.MeasureString(face, text))
}

// Metrics implements Measurer.
func (m *GoFontMeasurer) Metrics(style Style) (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	face := m.face(style)
	if face == nil {
		return style.Size * 0.8, style.Size * 0.2
	}
	metrics := face.Metrics()
	return toPoints(metrics.Ascent), toPoints(metrics.Descent)
}

// face returns a cached face for the style, or nil when the font cannot be
// loaded. The caller holds m.mu.
func (m *GoFontMeasurer) face(style Style) font.Face {
	if m.fonts == nil {
		m.fonts = make(map[Face]*opentype.Font)
		m.faces = make(map[faceKey]font.Face)
	}

	key := faceKey{face: FaceFor(style), size: style.Size}
	if f, ok := m.faces[key]; ok {
		return f
	}

	parsed, ok := m.fonts[key.face]
	if !ok {
		var err error
		parsed, err = opentype.Parse(key.face.TTF())
		if err != nil {
			parsed = nil
		}
		m.fonts[key.face] = parsed
	}
	if parsed == nil {
		return nil
	}

	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    style.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	m.faces[key] = f
	return f
}

func toPoints(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// approximateWidth is used only when a font cannot be loaded.
func approximateWidth(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.5
}

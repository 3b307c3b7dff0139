package pdfsource

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/extract"
)

// Word grouping thresholds as fractions of the font size.
const (
	wordGapFactor   = 0.3 // a wider gap between glyphs ends a word
	baselineFactor  = 0.5 // a larger baseline shift ends a word
	descentFactor   = 0.2 // box bottom below the baseline
	fallbackAdvance = 0.5 // glyph advance assumed when widths are unknown
	spaceAdvance    = 0.25
	backtrackFactor = 1.0 // moving left by more than this ends a word
)

// Words implements extract.TextLayer. Glyphs from the content stream are
// merged into words by proximity on a shared baseline.
func (p *Page) Words() (words []extract.Word, err error) {
	defer func() {
		if r := recover(); r != nil {
			words, err = nil, fmt.Errorf("reading page %d text: %v", p.index+1, r)
		}
	}()

	content := p.page.Content()
	words = groupGlyphs(content.Text, p.x0, p.y0)
	p.doc.log.WithFields(logrus.Fields{
		"page":   p.index + 1,
		"glyphs": len(content.Text),
		"words":  len(words),
	}).Debug("text layer read")
	return words, nil
}

// wordBuilder accumulates glyphs of one word.
type wordBuilder struct {
	text     strings.Builder
	left     float64
	right    float64
	baseline float64
	size     float64
}

func (b *wordBuilder) empty() bool {
	return b.text.Len() == 0
}

func (b *wordBuilder) start(g pdf.Text, x, y float64) {
	b.text.Reset()
	b.text.WriteString(g.S)
	b.left, b.baseline, b.size = x, y, g.FontSize
	b.right = x + advance(g)
}

// continues reports whether the glyph at (x, y) belongs to the current word.
func (b *wordBuilder) continues(g pdf.Text, x, y float64) bool {
	size := math.Max(b.size, g.FontSize)
	if size <= 0 {
		size = 1
	}
	if math.Abs(y-b.baseline) > baselineFactor*size {
		return false
	}
	gap := x - b.right
	return gap <= wordGapFactor*size && gap >= -backtrackFactor*size
}

func (b *wordBuilder) add(g pdf.Text, x float64) {
	b.text.WriteString(g.S)
	b.right = math.Max(b.right, x+advance(g))
	b.size = math.Max(b.size, g.FontSize)
}

func (b *wordBuilder) word() extract.Word {
	w := extract.Word{Text: b.text.String(), FontSize: b.size}
	if b.size > 0 && b.right > b.left {
		w.X = b.left
		w.Y = b.baseline - descentFactor*b.size
		w.Width = b.right - b.left
		w.Height = b.size
		w.Boxed = true
	}
	return w
}

// advance is the glyph's width, estimated from the font size when the font
// carries no width table.
func advance(g pdf.Text) float64 {
	if g.W > 0 {
		return g.W
	}
	factor := fallbackAdvance
	if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
		factor = spaceAdvance
	}
	return factor * g.FontSize * float64(utf8.RuneCountInString(g.S))
}

// pen places glyphs whose font has no width table. Such glyphs are reported
// at the start of their text run, so the estimated advance is carried from
// glyph to glyph until the run moves.
type pen struct {
	rawX, rawY float64
	x          float64
	active     bool
}

func (p *pen) place(g pdf.Text, x, y float64) float64 {
	if g.W > 0 {
		p.active = false
		return x
	}
	if p.active && x == p.rawX && y == p.rawY {
		x = p.x
	} else {
		p.rawX, p.rawY = x, y
	}
	p.x = x + advance(g)
	p.active = true
	return x
}

// groupGlyphs merges glyphs into words. Whitespace glyphs separate words and
// are dropped. Coordinates are shifted so the MediaBox origin is (0, 0).
func groupGlyphs(glyphs []pdf.Text, x0, y0 float64) []extract.Word {
	var words []extract.Word
	var b wordBuilder
	var placer pen
	flush := func() {
		if !b.empty() {
			words = append(words, b.word())
			b.text.Reset()
		}
	}

	for _, g := range glyphs {
		y := g.Y - y0
		x := placer.place(g, g.X-x0, y)
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		if !b.empty() && b.continues(g, x, y) {
			b.add(g, x)
			continue
		}
		flush()
		b.start(g, x, y)
	}
	flush()
	return words
}

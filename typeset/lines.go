package typeset

import "strings"

// tabStop is the width of a tab, in spaces.
const tabStop = 4

// span is a piece of text with one style, the input of line breaking.
type span struct {
	text  string
	style Style
}

// fragment is a word, a space or a tab placed on a line.
type fragment struct {
	text  string
	style Style
	width float64
	space bool // stretchable when justifying
	tab   bool // advances without ink
}

// line is one laid-out line of text.
type line struct {
	frags   []fragment
	width   float64 // trailing spaces excluded
	height  float64
	ascent  float64
	descent float64
	// last marks the final line of a paragraph or a line ended by a hard
	// break; such lines are never justified.
	last bool
}

// spaces returns the number of stretchable spaces on the line
func (l *line) spaces() int {
	n := 0
	for _, f := range l.frags {
		if f.space {
			n++
		}
	}
	return n
}

// lineBreaker fills lines of a fixed width from styled spans.
type lineBreaker struct {
	m        Measurer
	maxWidth float64

	lines   []line
	current []fragment
	width   float64
	wrapped bool  // current line began at an automatic break
	style   Style // style of the most recent text, sizes empty lines
}

// breakLines wraps spans into lines no wider than maxWidth. Words wider than
// a whole line are split between characters. Newlines force a break. An
// empty input produces one empty line in the fallback style.
func breakLines(m Measurer, spans []span, maxWidth float64, fallback Style) []line {
	b := &lineBreaker{m: m, maxWidth: maxWidth, style: fallback}
	for _, s := range spans {
		b.add(s)
	}
	b.flush(true)
	return b.lines
}

func (b *lineBreaker) add(s span) {
	if s.text == "" {
		return
	}
	b.style = s.style
	spaceW := b.m.Width(" ", s.style)

	for _, tok := range tokenize(s.text) {
		switch tok {
		case "\n":
			b.flush(true)
		case " ":
			if b.wrapped && len(b.current) == 0 {
				continue
			}
			if b.width+spaceW > b.maxWidth {
				b.wrap()
				continue
			}
			b.push(fragment{text: " ", style: s.style, width: spaceW, space: true})
		case "\t":
			w := spaceW * tabStop
			if b.width+w > b.maxWidth {
				b.wrap()
				continue
			}
			b.push(fragment{style: s.style, width: w, tab: true})
		default:
			b.word(tok, s.style)
		}
	}
}

func (b *lineBreaker) word(tok string, style Style) {
	w := b.m.Width(tok, style)
	if b.width+w <= b.maxWidth {
		b.push(fragment{text: tok, style: style, width: w})
		return
	}
	if w <= b.maxWidth {
		b.wrap()
		b.push(fragment{text: tok, style: style, width: w})
		return
	}

	// Character-level wrapping
	if len(b.current) > 0 {
		b.wrap()
	}
	var sub strings.Builder
	subWidth := 0.0
	for _, r := range tok {
		rw := b.m.Width(string(r), style)
		if subWidth+rw > b.maxWidth && sub.Len() > 0 {
			b.push(fragment{text: sub.String(), style: style, width: subWidth})
			b.wrap()
			sub.Reset()
			subWidth = 0
		}
		sub.WriteRune(r)
		subWidth += rw
	}
	if sub.Len() > 0 {
		b.push(fragment{text: sub.String(), style: style, width: subWidth})
	}
}

func (b *lineBreaker) push(f fragment) {
	b.current = append(b.current, f)
	b.width += f.width
}

// wrap ends the current line at an automatic break.
func (b *lineBreaker) wrap() {
	b.flush(false)
	b.wrapped = true
}

// flush ends the current line. hard marks paragraph ends and forced breaks.
func (b *lineBreaker) flush(hard bool) {
	// A hard break right after an automatic one ends the wrapped line
	// instead of adding an empty line.
	if hard && len(b.current) == 0 && b.wrapped && len(b.lines) > 0 {
		b.lines[len(b.lines)-1].last = true
		b.wrapped = false
		return
	}

	frags := b.current
	for len(frags) > 0 && frags[len(frags)-1].space {
		frags = frags[:len(frags)-1]
	}

	l := line{frags: frags, last: hard}
	for _, f := range frags {
		l.width += f.width
	}

	// A line's height follows its tallest style; an empty line uses the
	// style of the text before it.
	styles := []Style{b.style}
	if len(frags) > 0 {
		styles = styles[:0]
		for _, f := range frags {
			styles = append(styles, f.style)
		}
	}
	for _, s := range styles {
		ascent, descent := b.m.Metrics(s)
		if h := LineHeight(s); h > l.height {
			l.height = h
		}
		if ascent > l.ascent {
			l.ascent = ascent
		}
		if descent > l.descent {
			l.descent = descent
		}
	}

	b.lines = append(b.lines, l)
	b.current = nil
	b.width = 0
	b.wrapped = false
}

// tokenize splits text into words, single spaces, tabs and newlines.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	emit := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case ' ', '\u00a0':
			emit()
			tokens = append(tokens, " ")
		case '\t':
			emit()
			tokens = append(tokens, "\t")
		case '\n':
			emit()
			tokens = append(tokens, "\n")
		case '\r':
			emit()
		default:
			word.WriteRune(r)
		}
	}
	emit()
	return tokens
}

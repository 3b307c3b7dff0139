package model

import "strings"

// DefaultFontSize is the run size, in points, used when a run sets none.
const DefaultFontSize = 12.0

// Alignment represents horizontal paragraph alignment
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "unknown"
	}
}

// ParseAlignment maps a WordprocessingML justification value to an Alignment.
// Unknown values are treated as left aligned.
func ParseAlignment(val string) Alignment {
	switch val {
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "both", "justify", "distribute":
		return AlignJustify
	default:
		return AlignLeft
	}
}

// ListKind distinguishes bulleted from numbered list items
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListNumbered
)

func (k ListKind) String() string {
	switch k {
	case ListBullet:
		return "bullet"
	case ListNumbered:
		return "numbered"
	default:
		return "none"
	}
}

// headingSizes are the font sizes applied to runs of heading paragraphs that
// carry no explicit size.
var headingSizes = [...]float64{0, 24, 18, 15, 13, 12, 11}

// HeadingFontSize returns the font size for a heading level, or
// DefaultFontSize for body text and out-of-range levels.
func HeadingFontSize(level int) float64 {
	if level < 1 || level >= len(headingSizes) {
		return DefaultFontSize
	}
	return headingSizes[level]
}

// HeadingLevelForSize infers a heading level from an average font size.
// Sizes above 18pt are level 1, above 15pt level 2, anything else body (0).
func HeadingLevelForSize(size float64) int {
	switch {
	case size > 18:
		return 1
	case size > 15:
		return 2
	default:
		return 0
	}
}

// InlineImage references an image part through a relationship id.
type InlineImage struct {
	RelationshipID string
	WidthPt        float64
	HeightPt       float64
	AltText        string
}

// Run is the smallest formatted unit of a paragraph. A run with a non-nil
// Image is rendered as that image and its Text is ignored.
type Run struct {
	Text       string
	Bold       bool
	Italic     bool
	Underline  bool
	FontSize   float64 // points; 0 means DefaultFontSize
	FontFamily string
	Color      string // RRGGBB hex; empty means automatic
	Image      *InlineImage
}

// Size returns the effective font size of the run
func (r Run) Size() float64 {
	if r.FontSize <= 0 {
		return DefaultFontSize
	}
	return r.FontSize
}

// IsImage reports whether the run renders as an image
func (r Run) IsImage() bool {
	return r.Image != nil
}

// Paragraph is a block of runs with alignment, heading and list hints.
type Paragraph struct {
	Runs      []Run
	Alignment Alignment

	// HeadingLevel is 0 for body text, 1..6 for headings.
	HeadingLevel int

	ListKind ListKind
	// ListLevel is 1 for a top-level list item; 0 outside lists.
	ListLevel int
	// NumberingIndex is the 1-based ordinal of a numbered item within its list.
	NumberingIndex int

	SpacingBefore float64 // points
	SpacingAfter  float64 // points

	PageBreakBefore bool
}

// NewParagraph creates a body paragraph with a single default-formatted run
func NewParagraph(text string) *Paragraph {
	return &Paragraph{Runs: []Run{{Text: text}}}
}

// Kind implements Element
func (p *Paragraph) Kind() ElementKind {
	return ElementKindParagraph
}

// PlainText returns the concatenated text of all text runs
func (p *Paragraph) PlainText() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		if r.Image == nil {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

// IsHeading returns true for heading paragraphs
func (p *Paragraph) IsHeading() bool {
	return p.HeadingLevel > 0
}

// IsListItem returns true when the paragraph is a bullet or numbered item
func (p *Paragraph) IsListItem() bool {
	return p.ListKind != ListNone
}

// IsEmpty returns true when the paragraph has no text and no images
func (p *Paragraph) IsEmpty() bool {
	for _, r := range p.Runs {
		if r.Image != nil || strings.TrimSpace(r.Text) != "" {
			return false
		}
	}
	return true
}

// AverageFontSize returns the mean effective size of the text runs, or
// DefaultFontSize when there are none.
func (p *Paragraph) AverageFontSize() float64 {
	var total float64
	var n int
	for _, r := range p.Runs {
		if r.Image != nil {
			continue
		}
		total += r.Size()
		n++
	}
	if n == 0 {
		return DefaultFontSize
	}
	return total / float64(n)
}

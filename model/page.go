package model

// PositionedTextBlock is a unit of text extracted from a page together with
// its bounding box. Box coordinates are fractions of the page size with a
// top-left origin.
type PositionedTextBlock struct {
	Text string
	Box  BBox

	// FontSize is the estimated size in points, derived from the box height.
	FontSize float64

	// Confidence is 1 for text layer extraction and the recognizer's score
	// (0..1) for OCR.
	Confidence float64
}

// HasBox reports whether the block carries a usable bounding box. Blocks
// without one keep their text but cannot drive geometry decisions.
func (b PositionedTextBlock) HasBox() bool {
	return !b.Box.IsEmpty()
}

// PageContent is the extraction result of one page.
type PageContent struct {
	Blocks   []PositionedTextBlock
	WidthPt  float64
	HeightPt float64

	// Image is an optional PNG rendering of the whole page.
	Image []byte
}

// Text returns the block text joined by spaces, in block order
func (p *PageContent) Text() string {
	var text string
	for i, b := range p.Blocks {
		if i > 0 {
			text += " "
		}
		text += b.Text
	}
	return text
}

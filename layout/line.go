package layout

import (
	"math"
	"strings"

	"github.com/tsawler/docflip/model"
)

// edge records which content edges a line touches.
type edge uint8

const (
	edgeLeft edge = 1 << iota
	edgeRight
	edgeCenter
)

// Line is one visual line of a paragraph: a band of blocks, left to right.
type Line struct {
	Blocks []model.PositionedTextBlock
	BBox   model.BBox

	edges edge
}

func (l *Line) Text() string {
	words := make([]string, len(l.Blocks))
	for i, b := range l.Blocks {
		words[i] = b.Text
	}
	return strings.Join(words, " ")
}

// sameBand reports whether two blocks share a visual line. Their vertical
// centers must be closer than half the taller block.
func sameBand(a, b model.BBox) bool {
	return math.Abs(a.CenterY()-b.CenterY()) < max(a.Height, b.Height)/2
}

func groupIntoLines(blocks []model.PositionedTextBlock) []Line {
	groups := bands(blocks)
	lines := make([]Line, len(groups))
	for i, band := range groups {
		for _, idx := range band {
			lines[i].Blocks = append(lines[i].Blocks, blocks[idx])
			lines[i].BBox = lines[i].BBox.Union(blocks[idx].Box)
		}
	}
	return lines
}

// markEdges compares every line with the page content box.
func markEdges(lines []Line, content model.BBox, tolerance float64) {
	near := func(a, b float64) bool { return math.Abs(a-b) <= tolerance }
	for i := range lines {
		box := lines[i].BBox
		var e edge
		if near(box.Left(), content.Left()) {
			e |= edgeLeft
		}
		if near(box.Right(), content.Right()) {
			e |= edgeRight
		}
		if near(box.CenterX(), content.CenterX()) {
			e |= edgeCenter
		}
		lines[i].edges = e
	}
}

// alignment classifies one line. A line spanning the full width is left
// aligned, since justification is not inferred.
func (l *Line) alignment() (model.Alignment, bool) {
	switch {
	case l.edges&edgeLeft != 0:
		return model.AlignLeft, true
	case l.edges&edgeRight != 0:
		return model.AlignRight, true
	case l.edges&edgeCenter != 0:
		return model.AlignCenter, true
	}
	return model.AlignLeft, false
}

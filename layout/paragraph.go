package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/docflip/model"
)

// GrouperConfig holds configuration for paragraph grouping. Distances are in
// the normalized page units of the blocks unless noted.
type GrouperConfig struct {
	// SpacingThreshold is the multiplier for block height to detect paragraph
	// breaks: a vertical gap larger than SpacingThreshold times the taller
	// block's height starts a new paragraph.
	// Default: 1.5
	SpacingThreshold float64

	// FontSizeRatio starts a new paragraph when consecutive lines differ in
	// average font size by more than this ratio. Zero disables the check.
	// Default: 1.2
	FontSizeRatio float64

	// AlignmentTolerance is the allowed deviation when matching a line edge or
	// center against the page content boundaries, as a fraction of page width.
	// Default: 0.02
	AlignmentTolerance float64

	// PageWidthPt converts normalized indents to points for list levels.
	// Default: 595
	PageWidthPt float64

	// ListIndentPt is the indent of one list level in points.
	// Default: 18
	ListIndentPt float64
}

// DefaultGrouperConfig returns sensible default configuration
func DefaultGrouperConfig() GrouperConfig {
	return GrouperConfig{
		SpacingThreshold:   1.5,
		FontSizeRatio:      1.2,
		AlignmentTolerance: 0.02,
		PageWidthPt:        595,
		ListIndentPt:       18,
	}
}

// ParagraphGrouper clusters positioned text blocks of one page into
// paragraphs.
type ParagraphGrouper struct {
	config GrouperConfig
}

// NewParagraphGrouper creates a grouper with default configuration
func NewParagraphGrouper() *ParagraphGrouper {
	return &ParagraphGrouper{config: DefaultGrouperConfig()}
}

// NewParagraphGrouperWithConfig creates a grouper with custom configuration
func NewParagraphGrouperWithConfig(config GrouperConfig) *ParagraphGrouper {
	return &ParagraphGrouper{config: config}
}

// Group clusters blocks into paragraphs in reading order: top to bottom,
// and left to right within a line band.
//
// Blocks without a bounding box cannot be placed; each one joins the
// paragraph of the boxed block that preceded it in the input, or the first
// paragraph when none did.
func (g *ParagraphGrouper) Group(blocks []model.PositionedTextBlock) [][]model.PositionedTextBlock {
	if len(blocks) == 0 {
		return nil
	}

	var boxed []model.PositionedTextBlock
	anchors := make(map[int][]model.PositionedTextBlock) // boxed index -> trailing loose blocks
	for _, b := range blocks {
		if b.HasBox() {
			boxed = append(boxed, b)
			continue
		}
		anchors[len(boxed)-1] = append(anchors[len(boxed)-1], b)
	}
	if len(boxed) == 0 {
		return [][]model.PositionedTextBlock{append([]model.PositionedTextBlock(nil), blocks...)}
	}

	var groups [][]int
	var current []int
	var prev []int
	for _, band := range bands(boxed) {
		if len(current) > 0 && g.breaksBetween(boxed, prev, band) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, band...)
		prev = band
	}
	groups = append(groups, current)

	result := make([][]model.PositionedTextBlock, len(groups))
	for i, idxs := range groups {
		for _, idx := range idxs {
			result[i] = append(result[i], boxed[idx])
		}
	}
	// Loose blocks follow the whole paragraph of their anchor, in input order.
	groupOf := make(map[int]int, len(boxed))
	for gi, idxs := range groups {
		for _, idx := range idxs {
			groupOf[idx] = gi
		}
	}
	for anchor := -1; anchor < len(boxed); anchor++ {
		loose, ok := anchors[anchor]
		if !ok {
			continue
		}
		gi := 0
		if anchor >= 0 {
			gi = groupOf[anchor]
		}
		result[gi] = append(result[gi], loose...)
	}
	return result
}

// breaksBetween reports whether a paragraph break separates two
// consecutive line bands.
func (g *ParagraphGrouper) breaksBetween(blocks []model.PositionedTextBlock, prev, next []int) bool {
	prevBox, prevHeight, prevSize := bandStats(blocks, prev)
	nextBox, nextHeight, nextSize := bandStats(blocks, next)

	gap := nextBox.Top() - prevBox.Bottom()
	if gap > g.config.SpacingThreshold*max(prevHeight, nextHeight) {
		return true
	}

	if g.config.FontSizeRatio > 0 && prevSize > 0 && nextSize > 0 {
		ratio := max(prevSize, nextSize) / min(prevSize, nextSize)
		if ratio > g.config.FontSizeRatio {
			return true
		}
	}
	return false
}

func bandStats(blocks []model.PositionedTextBlock, band []int) (box model.BBox, height, fontSize float64) {
	var sizes []float64
	for _, idx := range band {
		b := blocks[idx]
		box = box.Union(b.Box)
		height = max(height, b.Box.Height)
		if b.FontSize > 0 {
			sizes = append(sizes, b.FontSize)
		}
	}
	return box, height, mean(sizes)
}

// bands returns indices of blocks grouped into line bands, top to bottom,
// each band ordered left to right.
func bands(blocks []model.PositionedTextBlock) [][]int {
	if len(blocks) == 0 {
		return nil
	}
	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return blocks[order[i]].Box.CenterY() < blocks[order[j]].Box.CenterY()
	})

	var result [][]int
	var current []int
	for _, idx := range order {
		if len(current) > 0 && sameBand(blocks[current[0]].Box, blocks[idx].Box) {
			current = append(current, idx)
			continue
		}
		if len(current) > 0 {
			result = append(result, current)
		}
		current = []int{idx}
	}
	result = append(result, current)

	for _, band := range result {
		sort.SliceStable(band, func(i, j int) bool {
			return blocks[band[i]].Box.X < blocks[band[j]].Box.X
		})
	}
	return result
}

// Paragraphs converts groups produced by Group into document paragraphs.
// Heading level follows the average font size; alignment and list markers
// are inferred from the geometry and text.
func (g *ParagraphGrouper) Paragraphs(groups [][]model.PositionedTextBlock) []*model.Paragraph {
	var content model.BBox
	for _, group := range groups {
		for _, b := range group {
			content = content.Union(b.Box)
		}
	}

	var paragraphs []*model.Paragraph
	for _, group := range groups {
		if p := g.paragraph(group, content); p != nil {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func (g *ParagraphGrouper) paragraph(group []model.PositionedTextBlock, content model.BBox) *model.Paragraph {
	var boxed, loose []model.PositionedTextBlock
	var sizes []float64
	for _, b := range group {
		if b.FontSize > 0 {
			sizes = append(sizes, b.FontSize)
		}
		if b.HasBox() {
			boxed = append(boxed, b)
		} else {
			loose = append(loose, b)
		}
	}

	lines := groupIntoLines(boxed)
	var parts []string
	for i := range lines {
		parts = append(parts, lines[i].Text())
	}
	for _, b := range loose {
		parts = append(parts, b.Text)
	}
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if text == "" {
		return nil
	}

	para := &model.Paragraph{}
	size := mean(sizes)
	para.HeadingLevel = model.HeadingLevelForSize(size)

	if len(lines) > 0 && !content.IsEmpty() {
		markEdges(lines, content, g.config.AlignmentTolerance)
		para.Alignment = paragraphAlignment(lines)
	}

	if para.HeadingLevel == 0 {
		if kind, number, rest, ok := detectListMarker(text); ok {
			para.ListKind = kind
			para.NumberingIndex = number
			para.ListLevel = g.listLevel(lines, content)
			text = rest
		}
	}

	run := model.Run{Text: text}
	if size > 0 {
		run.FontSize = math.Round(size*2) / 2
	}
	para.Runs = []model.Run{run}
	return para
}

// paragraphAlignment is centered or right aligned only when every line is.
func paragraphAlignment(lines []Line) model.Alignment {
	first, ok := lines[0].alignment()
	if !ok || first == model.AlignLeft {
		return model.AlignLeft
	}
	for i := 1; i < len(lines); i++ {
		if a, ok := lines[i].alignment(); !ok || a != first {
			return model.AlignLeft
		}
	}
	return first
}

// listLevel derives a 1-based nesting level from the first line's indent.
func (g *ParagraphGrouper) listLevel(lines []Line, content model.BBox) int {
	if len(lines) == 0 || g.config.ListIndentPt <= 0 {
		return 1
	}
	indent := (lines[0].BBox.Left() - content.Left()) * g.config.PageWidthPt
	return max(1, int(math.Round(indent/g.config.ListIndentPt)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

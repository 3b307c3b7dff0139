package layout

import (
	"math"
	"regexp"
	"strings"

	"github.com/tsawler/docflip/model"
)

// zone is the page strip a repeated line was found in.
type zone uint8

const (
	zoneTop zone = iota + 1
	zoneBottom
)

// HeaderFooterConfig tunes repeated-line detection. Heights are in points.
type HeaderFooterConfig struct {
	TopZonePt    float64
	BottomZonePt float64

	// MinShare is the fraction of pages a line must recur on. Two pages are
	// always required.
	MinShare float64
	MinPages int
}

func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{TopZonePt: 72, BottomZonePt: 72, MinShare: 0.5, MinPages: 2}
}

// HeaderFooterDetector drops running heads and page numbers: lines that
// recur in the top or bottom zone of several pages.
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

func NewHeaderFooterDetector() *HeaderFooterDetector {
	return NewHeaderFooterDetectorWithConfig(DefaultHeaderFooterConfig())
}

func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) *HeaderFooterDetector {
	return &HeaderFooterDetector{config: config}
}

type regionKey struct {
	zone zone
	text string
}

// Filter removes header and footer lines from every page and returns the
// removed line texts. Pages are modified in place.
func (d *HeaderFooterDetector) Filter(pages []*model.PageContent) []string {
	if len(pages) < max(d.config.MinPages, 1) {
		return nil
	}

	counts := make(map[regionKey]int)
	for _, page := range pages {
		seen := make(map[regionKey]bool)
		for _, c := range d.candidates(page) {
			if !seen[c.key] {
				seen[c.key] = true
				counts[c.key]++
			}
		}
	}

	need := max(2, int(math.Ceil(d.config.MinShare*float64(len(pages)))))
	var removed []string
	for _, page := range pages {
		drop := make(map[int]bool)
		for _, c := range d.candidates(page) {
			if counts[c.key] < need {
				continue
			}
			for _, idx := range c.blocks {
				drop[idx] = true
			}
			removed = append(removed, c.text)
		}
		if len(drop) == 0 {
			continue
		}
		kept := page.Blocks[:0]
		for i, b := range page.Blocks {
			if !drop[i] {
				kept = append(kept, b)
			}
		}
		page.Blocks = kept
	}
	return removed
}

type candidate struct {
	key    regionKey
	text   string
	blocks []int
}

// candidates returns the lines of a page inside its header or footer zone.
func (d *HeaderFooterDetector) candidates(page *model.PageContent) []candidate {
	if page.HeightPt <= 0 {
		return nil
	}
	top := d.config.TopZonePt / page.HeightPt
	bottom := 1 - d.config.BottomZonePt/page.HeightPt

	var boxed []model.PositionedTextBlock
	var index []int
	for i, b := range page.Blocks {
		if b.HasBox() {
			boxed = append(boxed, b)
			index = append(index, i)
		}
	}

	var result []candidate
	for _, band := range bands(boxed) {
		var box model.BBox
		parts := make([]string, 0, len(band))
		blocks := make([]int, 0, len(band))
		for _, idx := range band {
			box = box.Union(boxed[idx].Box)
			parts = append(parts, boxed[idx].Text)
			blocks = append(blocks, index[idx])
		}

		var z zone
		switch {
		case box.Bottom() <= top:
			z = zoneTop
		case box.Top() >= bottom:
			z = zoneBottom
		default:
			continue
		}
		text := strings.Join(parts, " ")
		result = append(result, candidate{
			key:    regionKey{zone: z, text: maskDigits(text)},
			text:   text,
			blocks: blocks,
		})
	}
	return result
}

var digitRun = regexp.MustCompile(`\d+`)

// maskDigits folds case and numbers, so "Page 3" matches "page 14".
func maskDigits(text string) string {
	return digitRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "#")
}

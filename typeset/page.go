package typeset

import (
	"strings"

	"github.com/tsawler/docflip/model"
)

// DefaultMargin is the margin on every side of a page, in points.
const DefaultMargin = 56.0

// PageSize is a page size in points.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

// Supported page sizes
var (
	Letter = PageSize{Name: "LETTER", Width: 612, Height: 792}
	Legal  = PageSize{Name: "LEGAL", Width: 612, Height: 1008}
	A4     = PageSize{Name: "A4", Width: 595, Height: 842}
)

// ParsePageSize maps a page size token to a size. Matching ignores case;
// unknown and empty tokens select A4.
func ParsePageSize(token string) PageSize {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "LETTER":
		return Letter
	case "LEGAL":
		return Legal
	default:
		return A4
	}
}

// Margins defines page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// UniformMargins returns margins of the same size on every side
func UniformMargins(m float64) Margins {
	return Margins{Top: m, Bottom: m, Left: m, Right: m}
}

// ContentRect returns the area of a page inside the margins
func (s PageSize) ContentRect(m Margins) model.BBox {
	return model.BBox{
		X:      m.Left,
		Y:      m.Top,
		Width:  s.Width - m.Left - m.Right,
		Height: s.Height - m.Top - m.Bottom,
	}
}

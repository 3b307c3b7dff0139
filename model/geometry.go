package model

import "math"

// BBox is an axis-aligned box in page space. The origin is the top-left
// corner and Y grows downward, so a box spans [Y, Y+Height] vertically.
// Layout code uses it both in points and in page-normalized units.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

func (b BBox) Left() float64   { return b.X }
func (b BBox) Right() float64  { return b.X + b.Width }
func (b BBox) Top() float64    { return b.Y }
func (b BBox) Bottom() float64 { return b.Y + b.Height }

func (b BBox) CenterX() float64 { return b.X + b.Width/2 }
func (b BBox) CenterY() float64 { return b.Y + b.Height/2 }

func (b BBox) Area() float64 { return b.Width * b.Height }

// IsEmpty reports a degenerate box. Words without geometry carry one.
func (b BBox) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Union grows b to cover other. Empty boxes are ignored, which lets a zero
// BBox seed an accumulation loop.
func (b BBox) Union(other BBox) BBox {
	switch {
	case b.IsEmpty():
		return other
	case other.IsEmpty():
		return b
	}
	left, top := math.Min(b.X, other.X), math.Min(b.Y, other.Y)
	return BBox{
		X:      left,
		Y:      top,
		Width:  math.Max(b.Right(), other.Right()) - left,
		Height: math.Max(b.Bottom(), other.Bottom()) - top,
	}
}

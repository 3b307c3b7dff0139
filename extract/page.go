// Package extract recovers positioned text from document pages.
//
// A page exposes whatever it can: a native text layer (TextLayer), a raster
// rendering (Rasterizer), or both. The Extractor tries the text layer first
// and falls back to OCR on the raster when the text layer yields nothing and
// the caller allows it. Block boxes are always normalized to the unit square
// with a top-left origin, whatever convention the source used.
package extract

import (
	"errors"
	"image"
)

// ErrRasterUnavailable is returned by pages that cannot render themselves.
var ErrRasterUnavailable = errors.New("page raster unavailable")

// Page is one page of a source document. Sizes are in points.
type Page interface {
	Size() (width, height float64)
}

// Word is a word from a native text layer. Coordinates are points with a
// bottom-left origin: (X, Y) is the lower-left corner of the word's box.
type Word struct {
	Text     string
	X, Y     float64
	Width    float64
	Height   float64
	FontSize float64
	// Boxed is false when the word's box could not be resolved. Such words
	// are kept with an empty box.
	Boxed bool
}

// TextLayer is implemented by pages with native text.
type TextLayer interface {
	Words() ([]Word, error)
}

// Rasterizer is implemented by pages that can be rendered. The returned
// image covers the whole page at scale pixels per point.
type Rasterizer interface {
	Rasterize(scale float64) (image.Image, error)
}

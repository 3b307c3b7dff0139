package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageDPI is the resolution assumed for image pages.
const ImageDPI = 96.0

// ImagePage is a page made from a single image, such as a scan. It has no
// text layer.
type ImagePage struct {
	img    image.Image
	width  float64
	height float64
}

// NewImagePage decodes an image into a page. The page is sized at ImageDPI.
func NewImagePage(data []byte) (*ImagePage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding page image: %w", err)
	}
	return ImagePageOf(img), nil
}

// ImagePageOf wraps an already decoded image.
func ImagePageOf(img image.Image) *ImagePage {
	b := img.Bounds()
	return &ImagePage{
		img:    img,
		width:  float64(b.Dx()) * 72 / ImageDPI,
		height: float64(b.Dy()) * 72 / ImageDPI,
	}
}

// Size implements Page.
func (p *ImagePage) Size() (float64, float64) {
	return p.width, p.height
}

// Rasterize implements Rasterizer.
func (p *ImagePage) Rasterize(scale float64) (image.Image, error) {
	return ScaleToPage(p.img, p.width, p.height, scale)
}

// ScaleToPage resamples img to cover a page of the given size in points at
// scale pixels per point, on a white background.
func ScaleToPage(img image.Image, widthPt, heightPt, scale float64) (image.Image, error) {
	w, h := int(widthPt*scale+0.5), int(heightPt*scale+0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty page", ErrRasterUnavailable)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst, nil
}

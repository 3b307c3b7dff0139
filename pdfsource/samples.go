package pdfsource

import (
	"fmt"
	"image"
	"image/color"
)

// sampleFormat describes the pixel layout of an image XObject.
type sampleFormat struct {
	width      int
	height     int
	components int
	bpc        int
	palette    color.Palette // set for Indexed color spaces
}

func (f sampleFormat) rowBytes() int {
	return (f.width*f.components*f.bpc + 7) / 8
}

// toImage converts decoded sample data to an image. Rows are byte aligned.
func (f sampleFormat) toImage(data []byte) (image.Image, error) {
	if f.width <= 0 || f.height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", f.width, f.height)
	}
	switch f.bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", f.bpc)
	}
	stride := f.rowBytes()
	if need := stride * f.height; len(data) < need {
		return nil, fmt.Errorf("insufficient image data: got %d, expected %d", len(data), need)
	}

	switch {
	case f.palette != nil:
		return f.toPaletted(data, stride)
	case f.components == 1:
		return f.toGray(data, stride), nil
	case f.components == 3:
		return f.toRGB(data, stride), nil
	case f.components == 4:
		return f.toCMYK(data, stride), nil
	}
	return nil, fmt.Errorf("unsupported component count: %d", f.components)
}

// sample returns the i-th sample of a row scaled to 8 bits.
func (f sampleFormat) sample(row []byte, i int) uint8 {
	switch f.bpc {
	case 8:
		return row[i]
	case 16:
		return row[2*i]
	}
	return uint8(f.raw(row, i) * 255 / (1<<f.bpc - 1))
}

// raw returns the i-th sample of a row without scaling. Samples are packed
// MSB first.
func (f sampleFormat) raw(row []byte, i int) int {
	switch f.bpc {
	case 8:
		return int(row[i])
	case 16:
		return int(row[2*i])<<8 | int(row[2*i+1])
	}
	bit := i * f.bpc
	shift := 8 - f.bpc - bit%8
	return int(row[bit/8]>>shift) & (1<<f.bpc - 1)
}

func (f sampleFormat) toGray(data []byte, stride int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		row := data[y*stride:]
		for x := 0; x < f.width; x++ {
			img.Pix[y*img.Stride+x] = f.sample(row, x)
		}
	}
	return img
}

func (f sampleFormat) toRGB(data []byte, stride int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		row := data[y*stride:]
		for x := 0; x < f.width; x++ {
			dst := y*img.Stride + x*4
			img.Pix[dst+0] = f.sample(row, x*3)
			img.Pix[dst+1] = f.sample(row, x*3+1)
			img.Pix[dst+2] = f.sample(row, x*3+2)
			img.Pix[dst+3] = 255
		}
	}
	return img
}

func (f sampleFormat) toCMYK(data []byte, stride int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		row := data[y*stride:]
		for x := 0; x < f.width; x++ {
			r, g, b := color.CMYKToRGB(
				f.sample(row, x*4), f.sample(row, x*4+1),
				f.sample(row, x*4+2), f.sample(row, x*4+3),
			)
			dst := y*img.Stride + x*4
			img.Pix[dst+0] = r
			img.Pix[dst+1] = g
			img.Pix[dst+2] = b
			img.Pix[dst+3] = 255
		}
	}
	return img
}

func (f sampleFormat) toPaletted(data []byte, stride int) (*image.Paletted, error) {
	img := image.NewPaletted(image.Rect(0, 0, f.width, f.height), f.palette)
	for y := 0; y < f.height; y++ {
		row := data[y*stride:]
		for x := 0; x < f.width; x++ {
			idx := f.raw(row, x)
			if idx >= len(f.palette) {
				idx = len(f.palette) - 1
			}
			img.Pix[y*img.Stride+x] = uint8(idx)
		}
	}
	return img, nil
}

// buildPalette converts an Indexed lookup table into a palette. base is the
// component count of the base color space.
func buildPalette(lookup []byte, base, hival int) (color.Palette, error) {
	n := hival + 1
	if n <= 0 || n > 256 {
		return nil, fmt.Errorf("invalid palette size %d", n)
	}
	if base != 1 && base != 3 && base != 4 {
		return nil, fmt.Errorf("unsupported palette base with %d components", base)
	}
	if len(lookup) < n*base {
		return nil, fmt.Errorf("palette lookup too short: got %d, expected %d", len(lookup), n*base)
	}

	pal := make(color.Palette, n)
	for i := range pal {
		c := lookup[i*base:]
		switch base {
		case 1:
			pal[i] = color.Gray{Y: c[0]}
		case 3:
			pal[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
		case 4:
			r, g, b := color.CMYKToRGB(c[0], c[1], c[2], c[3])
			pal[i] = color.RGBA{R: r, G: g, B: b, A: 255}
		}
	}
	return pal, nil
}

// unpredict reverses a PNG predictor (Predictor >= 10) applied before
// compression. Each row carries a leading filter-type byte.
func unpredict(data []byte, colors, bpc, columns int) ([]byte, error) {
	bpp := max(1, (colors*bpc+7)/8)
	rowLen := (columns*colors*bpc + 7) / 8
	if rowLen <= 0 {
		return nil, fmt.Errorf("invalid predictor row length %d", rowLen)
	}
	stride := rowLen + 1
	rows := len(data) / stride

	out := make([]byte, rows*rowLen)
	prev := make([]byte, rowLen)
	for r := 0; r < rows; r++ {
		filter := data[r*stride]
		cur := out[r*rowLen : (r+1)*rowLen]
		copy(cur, data[r*stride+1:(r+1)*stride])

		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch filter {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d in row %d", filter, r)
			}
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

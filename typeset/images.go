package typeset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/model"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pixelsToPoints converts pixels at 96 DPI to points.
const pixelsToPoints = 0.75

// Placeholder size used when an image has neither an extent nor readable
// data.
const (
	placeholderWidth  = 144.0
	placeholderHeight = 96.0
	placeholderLine   = 0.5
)

// imageBox is an image sized for placement.
type imageBox struct {
	relID         string
	data          []byte
	width, height float64
	placeholder   bool
}

// image resolves and sizes an inline image, scaling it down to fit maxWidth
// and the page's content height while keeping its aspect ratio. Images that
// cannot be loaded or decoded become placeholders and record a warning.
func (p *pass) image(img *model.InlineImage, maxWidth float64) *imageBox {
	src := p.loadImage(img)
	box := *src

	if box.width > maxWidth {
		box.height *= maxWidth / box.width
		box.width = maxWidth
	}
	if h := p.contentHeight(); box.height > h {
		box.width *= h / box.height
		box.height = h
	}
	return &box
}

// decodedImage is the result of loading one image part.
type decodedImage struct {
	data          []byte
	width, height float64 // intrinsic size in points
	err           error
}

var errNoImageSource = errors.New("no image source")

// loadImage sizes an image from its declared extent, or from its pixel size
// at 96 DPI when no extent was given. Each part is read once per run.
func (p *pass) loadImage(img *model.InlineImage) *imageBox {
	dec, ok := p.media[img.RelationshipID]
	if !ok {
		dec = p.decode(img.RelationshipID)
		p.media[img.RelationshipID] = dec
	}

	box := &imageBox{relID: img.RelationshipID, width: img.WidthPt, height: img.HeightPt}
	if dec.err != nil {
		p.warn(fmt.Sprintf("image %s could not be loaded; a placeholder was drawn", img.RelationshipID))
		box.placeholder = true
		if box.width <= 0 || box.height <= 0 {
			box.width, box.height = placeholderWidth, placeholderHeight
		}
		return box
	}

	box.data = dec.data
	if box.width <= 0 || box.height <= 0 {
		box.width, box.height = dec.width, dec.height
	}
	return box
}

func (p *pass) decode(relID string) *decodedImage {
	if p.images == nil {
		return &decodedImage{err: errNoImageSource}
	}
	data, err := p.images.Media(relID)
	if err != nil {
		p.log.WithError(err).WithField("rel", relID).Debug("image not found")
		return &decodedImage{err: err}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		p.log.WithError(err).WithField("rel", relID).Debug("image not decodable")
		return &decodedImage{err: err}
	}
	p.log.WithFields(logrus.Fields{"rel": relID, "format": format}).Debug("image loaded")
	return &decodedImage{
		data:   data,
		width:  float64(cfg.Width) * pixelsToPoints,
		height: float64(cfg.Height) * pixelsToPoints,
	}
}

// drawImage places an image row at the cursor, aligned within the box.
func (p *pass) drawImage(r row, x, width float64) {
	img := r.image
	avail := width - r.indent
	left := x + r.indent
	switch r.align {
	case model.AlignCenter:
		left += (avail - img.width) / 2
	case model.AlignRight:
		left += avail - img.width
	}
	top := p.cursor.Y

	if !img.placeholder {
		p.err = p.canvas.DrawImage(left, top, img.width, img.height, img.data, img.relID)
		return
	}

	p.err = p.canvas.DrawRect(left, top, img.width, img.height, placeholderLine)
	if p.err == nil {
		p.err = p.canvas.DrawLine(left, top, left+img.width, top+img.height, placeholderLine, "")
	}
	if p.err == nil {
		p.err = p.canvas.DrawLine(left, top+img.height, left+img.width, top, placeholderLine, "")
	}
}

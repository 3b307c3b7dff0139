// Package render draws laid-out documents as PDF.
//
// PDFCanvas implements typeset.Canvas on top of gofpdf. Text is set in the
// same Go fonts typeset measures with, embedded as UTF-8 TrueType fonts, so
// the widths used for line breaking match the ink on the page.
package render

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/typeset"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrFinished is returned when drawing on a canvas whose output was taken.
var ErrFinished = errors.New("canvas already finished")

// Creator is recorded in the PDF document information.
const Creator = "docflip"

// PDFCanvas is a typeset.Canvas producing a PDF document. A canvas is used
// by one goroutine for one document.
type PDFCanvas struct {
	pdf      *gofpdf.Fpdf
	fonts    map[typeset.Face]bool
	images   map[string]string // content hash -> registered name
	bookmark int               // level of the previous outline entry
	finished bool
	log      logrus.FieldLogger
}

// Option configures a PDFCanvas.
type Option func(*PDFCanvas)

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *PDFCanvas) {
		c.log = logging.OrDiscard(log)
	}
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(c *PDFCanvas) {
		c.pdf.SetTitle(title, true)
	}
}

// NewPDFCanvas returns a canvas whose default page size is size. Pages are
// added with BeginPage.
func NewPDFCanvas(size typeset.PageSize, opts ...Option) *PDFCanvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(Creator, true)
	pdf.SetCompression(true)

	c := &PDFCanvas{
		pdf:      pdf,
		fonts:    make(map[typeset.Face]bool),
		images:   make(map[string]string),
		bookmark: -1,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// check reports the first gofpdf error, or ErrFinished.
func (c *PDFCanvas) check() error {
	if c.finished {
		return ErrFinished
	}
	return c.pdf.Error()
}

// BeginPage implements typeset.Canvas.
func (c *PDFCanvas) BeginPage(width, height float64) error {
	if err := c.check(); err != nil {
		return err
	}
	c.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	return c.pdf.Error()
}

// DrawText implements typeset.Canvas. y is the baseline.
func (c *PDFCanvas) DrawText(x, y float64, text string, style typeset.Style) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.useFont(style); err != nil {
		return err
	}
	r, g, b := parseColor(style.Color)
	c.pdf.SetTextColor(r, g, b)
	c.pdf.Text(x, y, text)
	return c.pdf.Error()
}

// useFont embeds the style's face on first use and selects it.
func (c *PDFCanvas) useFont(style typeset.Style) error {
	face := typeset.FaceFor(style)
	if !c.fonts[face] {
		c.pdf.AddUTF8FontFromBytes(face.Name(), "", face.TTF())
		if err := c.pdf.Error(); err != nil {
			return fmt.Errorf("embedding font %s: %w", face.Name(), err)
		}
		c.fonts[face] = true
		c.log.WithField("font", face.Name()).Debug("font embedded")
	}
	c.pdf.SetFont(face.Name(), "", style.Size)
	return c.pdf.Error()
}

// DrawLine implements typeset.Canvas.
func (c *PDFCanvas) DrawLine(x1, y1, x2, y2, width float64, color string) error {
	if err := c.check(); err != nil {
		return err
	}
	r, g, b := parseColor(color)
	c.pdf.SetDrawColor(r, g, b)
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, y1, x2, y2)
	return c.pdf.Error()
}

// DrawRect implements typeset.Canvas. The rectangle is stroked in black.
func (c *PDFCanvas) DrawRect(x, y, w, h, lineWidth float64) error {
	if err := c.check(); err != nil {
		return err
	}
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetLineWidth(lineWidth)
	c.pdf.Rect(x, y, w, h, "D")
	return c.pdf.Error()
}

// DrawImage implements typeset.Canvas. PNG, JPEG and GIF data is embedded as
// is; other formats are converted to PNG first. Identical images are
// embedded once.
func (c *PDFCanvas) DrawImage(x, y, w, h float64, data []byte, name string) error {
	if err := c.check(); err != nil {
		return err
	}
	registered, err := c.register(data, name)
	if err != nil {
		return err
	}
	c.pdf.ImageOptions(registered, x, y, w, h, false, gofpdf.ImageOptions{}, 0, "")
	return c.pdf.Error()
}

func (c *PDFCanvas) register(data []byte, name string) (string, error) {
	sum := sha1.Sum(data)
	key := hex.EncodeToString(sum[:])
	if registered, ok := c.images[key]; ok {
		return registered, nil
	}

	imgType, payload, err := embeddable(data)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", name, err)
	}

	registered := "img-" + key
	c.pdf.RegisterImageOptionsReader(registered, gofpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(payload))
	if err := c.pdf.Error(); err != nil {
		return "", fmt.Errorf("image %s: %w", name, err)
	}
	c.images[key] = registered
	c.log.WithFields(logrus.Fields{"image": name, "type": imgType, "bytes": len(payload)}).Debug("image embedded")
	return registered, nil
}

// embeddable returns data in a form gofpdf can embed, with its type.
func embeddable(data []byte) (string, []byte, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	switch format {
	case "png":
		return "PNG", data, nil
	case "jpeg":
		return "JPG", data, nil
	case "gif":
		return "GIF", data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, err
	}
	return "PNG", buf.Bytes(), nil
}

// Bookmark implements typeset.Canvas. Outline levels are 1-based and may
// descend by at most one level per entry; deeper jumps are flattened.
func (c *PDFCanvas) Bookmark(title string, level int, y float64) error {
	if err := c.check(); err != nil {
		return err
	}
	lvl := min(max(level-1, 0), c.bookmark+1)
	c.pdf.Bookmark(title, lvl, y)
	c.bookmark = lvl
	return c.pdf.Error()
}

// PageCount returns the number of pages begun
func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

// Bytes finishes the document and returns the PDF. The canvas cannot be
// drawn on afterwards.
func (c *PDFCanvas) Bytes() ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if c.pdf.PageCount() == 0 {
		c.pdf.AddPage()
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	c.finished = true
	return buf.Bytes(), nil
}

// parseColor converts RRGGBB to components. Anything else is black.
func parseColor(hexColor string) (int, int, int) {
	if len(hexColor) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hexColor, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

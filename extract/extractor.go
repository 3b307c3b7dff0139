package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/model"
	"github.com/tsawler/docflip/ocr"
	"golang.org/x/text/unicode/norm"
)

// RasterScale is the resolution pages are rendered at for OCR, in pixels
// per point.
const RasterScale = 2.0

// Source identifies which strategy produced a page's blocks.
type Source int

const (
	SourceNone Source = iota
	SourceNative
	SourceOCR
)

func (s Source) String() string {
	switch s {
	case SourceNative:
		return "text"
	case SourceOCR:
		return "ocr"
	default:
		return "none"
	}
}

// Strategy controls extraction of one page.
type Strategy struct {
	// AllowOCR enables the OCR fallback for pages whose text layer is empty.
	AllowOCR bool
	// Language is the recognizer language hint ("auto" or a code).
	Language string
}

// PageResult is the text recovered from one page.
type PageResult struct {
	Content  *model.PageContent
	Source   Source
	Warnings []string
}

// Extractor recovers positioned text blocks from pages.
type Extractor struct {
	recognizer ocr.Recognizer
	log        logrus.FieldLogger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecognizer enables OCR with the given recognizer.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(e *Extractor) {
		e.recognizer = r
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Extractor) {
		e.log = logging.OrDiscard(log)
	}
}

// New returns an extractor. Without WithRecognizer the OCR fallback is
// unavailable.
func New(opts ...Option) *Extractor {
	e := &Extractor{log: logging.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract recovers the text of one page: first from its text layer, then,
// when that yields no blocks and s.AllowOCR is set, by recognizing its
// raster. A page with no text is not an error; its result has no blocks and
// SourceNone.
func (e *Extractor) Extract(ctx context.Context, page Page, s Strategy) (*PageResult, error) {
	width, height := page.Size()
	res := &PageResult{Content: &model.PageContent{WidthPt: width, HeightPt: height}}

	if layer, ok := page.(TextLayer); ok {
		words, err := layer.Words()
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("text layer could not be read: %v", err))
			e.log.WithError(err).Debug("text layer failed")
		}
		res.Content.Blocks = nativeBlocks(words, width, height)
		if len(res.Content.Blocks) > 0 {
			res.Source = SourceNative
			e.log.WithField("blocks", len(res.Content.Blocks)).Debug("native text extracted")
			return res, nil
		}
	}

	if !s.AllowOCR {
		return res, nil
	}
	if e.recognizer == nil {
		res.Warnings = append(res.Warnings, "page has no text layer and OCR is not available")
		return res, nil
	}
	raster, ok := page.(Rasterizer)
	if !ok {
		res.Warnings = append(res.Warnings, "page has no text layer and cannot be rendered for OCR")
		return res, nil
	}

	img, err := raster.Rasterize(RasterScale)
	if errors.Is(err, ErrRasterUnavailable) {
		res.Warnings = append(res.Warnings, "page has no text layer and cannot be rendered for OCR")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page raster: %w", err)
	}

	e.log.WithFields(logrus.Fields{"language": s.Language, "bytes": buf.Len()}).Debug("falling back to OCR")
	lines, err := e.recognizer.Recognize(ctx, buf.Bytes(), s.Language)
	if err != nil {
		return nil, fmt.Errorf("recognizing page: %w", err)
	}

	res.Content.Blocks = ocrBlocks(lines, img.Bounds(), height)
	if len(res.Content.Blocks) > 0 {
		res.Source = SourceOCR
	}
	return res, nil
}

// normalizeText folds compatibility characters such as ligatures and trims
// surrounding whitespace.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// nativeBlocks converts text layer words to blocks. Words are given with a
// bottom-left origin and are flipped here.
func nativeBlocks(words []Word, pageWidth, pageHeight float64) []model.PositionedTextBlock {
	var blocks []model.PositionedTextBlock
	for _, w := range words {
		text := normalizeText(w.Text)
		if text == "" {
			continue
		}
		b := model.PositionedTextBlock{Text: text, FontSize: w.FontSize, Confidence: 1}
		if w.Boxed && pageWidth > 0 && pageHeight > 0 && w.Width > 0 && w.Height > 0 {
			h := w.Height / pageHeight
			b.Box = model.BBox{
				X:      w.X / pageWidth,
				Y:      1 - w.Y/pageHeight - h,
				Width:  w.Width / pageWidth,
				Height: h,
			}
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// ocrBlocks splits recognized lines into word blocks. A word's box is the
// slice of its line's box proportional to its share of the line's
// characters, counting one character per gap between words. Recognizer boxes
// already have a top-left origin. The line height in points stands in for
// the font size.
func ocrBlocks(lines []ocr.Line, bounds image.Rectangle, pageHeight float64) []model.PositionedTextBlock {
	imgW, imgH := float64(bounds.Dx()), float64(bounds.Dy())
	if imgW <= 0 || imgH <= 0 {
		return nil
	}

	var blocks []model.PositionedTextBlock
	for _, line := range lines {
		words := strings.Fields(normalizeText(line.Text))
		if len(words) == 0 {
			continue
		}

		total := len(words) - 1
		for _, w := range words {
			total += utf8.RuneCountInString(w)
		}

		box := line.Box.Sub(bounds.Min)
		lineX := float64(box.Min.X) / imgW
		lineW := float64(box.Dx()) / imgW
		y := float64(box.Min.Y) / imgH
		h := float64(box.Dy()) / imgH
		fontSize := h * pageHeight

		offset := 0
		for _, w := range words {
			n := utf8.RuneCountInString(w)
			blocks = append(blocks, model.PositionedTextBlock{
				Text: w,
				Box: model.BBox{
					X:      lineX + lineW*float64(offset)/float64(total),
					Y:      y,
					Width:  lineW * float64(n) / float64(total),
					Height: h,
				},
				FontSize:   fontSize,
				Confidence: line.Confidence,
			})
			offset += n + 1
		}
	}
	return blocks
}

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/docx"
	"github.com/tsawler/docflip/extract"
	"github.com/tsawler/docflip/layout"
	"github.com/tsawler/docflip/model"
)

// Mode selects how text is recovered from PDF pages, and reports which
// strategy was actually used.
type Mode string

const (
	// ModeText uses the text layer only.
	ModeText Mode = "text"
	// ModeTextAndImages also embeds a raster of every page.
	ModeTextAndImages Mode = "textAndImages"
	// ModeAuto uses the text layer and falls back to OCR for pages without
	// one.
	ModeAuto Mode = "auto"
	// ModeOCR is reported when OCR produced text for at least one page.
	ModeOCR Mode = "ocr"
)

// ParseMode maps a mode token to a Mode. Matching ignores case; empty and
// "ocrFallback" select ModeAuto.
func ParseMode(token string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "text":
		return ModeText, nil
	case "textandimages":
		return ModeTextAndImages, nil
	case "", "auto", "ocrfallback":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, token)
}

// DocxOutput is the result of a PDF to DOCX conversion.
type DocxOutput struct {
	Docx      []byte
	PageCount int
	// Mode is the strategy that actually produced the content.
	Mode     Mode
	Warnings []string
}

// PDFToDocx rebuilds editable documents from PDF pages.
type PDFToDocx struct {
	settings
}

// NewPDFToDocx returns a converter configured by opts. Without
// WithRecognizer, pages that need OCR come out empty with a warning.
func NewPDFToDocx(opts ...Option) *PDFToDocx {
	return &PDFToDocx{settings: newSettings(opts)}
}

// pageOutput is the intermediate result for one page.
type pageOutput struct {
	result *extract.PageResult
	raster []byte // PNG, textAndImages only
}

// Convert extracts text from every page in order, groups it into
// paragraphs and writes a DOCX package with a page break between pages.
func (c *PDFToDocx) Convert(ctx context.Context, pages []extract.Page, mode Mode, language string) (*DocxOutput, error) {
	start := time.Now()
	if len(pages) == 0 {
		return nil, Classify(fmt.Errorf("%w: no pages", ErrInvalidInput))
	}
	if mode == "" {
		mode = ModeAuto
	}

	extractor := extract.New(extract.WithRecognizer(c.recognizer), extract.WithLogger(c.log))
	strategy := extract.Strategy{AllowOCR: mode != ModeText, Language: language}

	var warnings []string
	outputs := make([]pageOutput, 0, len(pages))
	usedOCR := false
	embedded := 0

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, Classify(err)
		}

		res, err := extractor.Extract(ctx, page, strategy)
		if err != nil {
			if ctx.Err() != nil {
				return nil, Classify(ctx.Err())
			}
			return nil, Classify(fmt.Errorf("%w: page %d: %v", ErrOCR, i+1, err))
		}
		for _, w := range res.Warnings {
			warnings = appendUnique(warnings, fmt.Sprintf("page %d: %s", i+1, w))
		}
		if res.Source == extract.SourceOCR {
			usedOCR = true
		}

		out := pageOutput{result: res}
		if mode == ModeTextAndImages {
			raster, err := pageRaster(page)
			if err != nil {
				warnings = appendUnique(warnings, fmt.Sprintf("page %d: page image not embedded: %v", i+1, err))
			} else {
				out.raster = raster
				embedded++
			}
		}
		outputs = append(outputs, out)

		c.log.WithFields(logrus.Fields{
			"page":   i + 1,
			"source": res.Source.String(),
			"blocks": len(res.Content.Blocks),
		}).Debug("page extracted")
	}

	if c.stripRepeated {
		contents := make([]*model.PageContent, len(outputs))
		for i, o := range outputs {
			contents[i] = o.result.Content
		}
		if removed := layout.NewHeaderFooterDetector().Filter(contents); len(removed) > 0 {
			c.log.WithField("lines", len(removed)).Debug("removed repeated header and footer lines")
			warnings = append(warnings, fmt.Sprintf("removed %d repeated header/footer lines", len(removed)))
		}
	}

	data, err := c.write(outputs)
	if err != nil {
		return nil, Classify(err)
	}

	actual := ModeText
	switch {
	case embedded > 0:
		actual = ModeTextAndImages
	case usedOCR:
		actual = ModeOCR
	}

	c.log.WithFields(logrus.Fields{
		"pages":    len(pages),
		"mode":     actual,
		"bytes":    len(data),
		"warnings": len(warnings),
		"elapsed":  time.Since(start).String(),
	}).Info("converted PDF to DOCX")

	return &DocxOutput{Docx: data, PageCount: len(pages), Mode: actual, Warnings: warnings}, nil
}

// write emits the pages as one DOCX package.
func (c *PDFToDocx) write(outputs []pageOutput) ([]byte, error) {
	w := docx.NewWriter()
	first := outputs[0].result.Content
	w.SetPageSize(first.WidthPt, first.HeightPt, c.margins.Left)

	for i, o := range outputs {
		if i > 0 {
			w.AddPageBreak()
		}
		content := o.result.Content

		if o.raster != nil {
			width, height := fitWidth(content.WidthPt, content.HeightPt, content.WidthPt-c.margins.Left-c.margins.Right)
			w.AddImage(o.raster, width, height, fmt.Sprintf("Page %d", i+1))
		}

		cfg := layout.DefaultGrouperConfig()
		if content.WidthPt > 0 {
			cfg.PageWidthPt = content.WidthPt
		}
		grouper := layout.NewParagraphGrouperWithConfig(cfg)
		for _, p := range grouper.Paragraphs(grouper.Group(content.Blocks)) {
			w.AddParagraph(p)
		}
	}
	return w.Bytes()
}

// pageRaster renders a page at one pixel per point as PNG.
func pageRaster(page extract.Page) ([]byte, error) {
	r, ok := page.(extract.Rasterizer)
	if !ok {
		return nil, extract.ErrRasterUnavailable
	}
	img, err := r.Rasterize(1)
	if err != nil {
		if errors.Is(err, extract.ErrRasterUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page image: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWidth scales a width and height down, preserving aspect ratio, so the
// width does not exceed maxWidth.
func fitWidth(width, height, maxWidth float64) (float64, float64) {
	if width <= 0 || height <= 0 || maxWidth <= 0 || width <= maxWidth {
		return width, height
	}
	scale := maxWidth / width
	return maxWidth, height * scale
}

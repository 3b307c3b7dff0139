package docflip

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tsawler/docflip/convert"
	"github.com/tsawler/docflip/extract"
	"github.com/tsawler/docflip/format"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/ocr"
	"github.com/tsawler/docflip/pdfsource"
	"github.com/tsawler/docflip/typeset"
)

// Converter provides a fluent interface for converting one source document.
// Each configuration method returns a new Converter, so a configured value
// can be shared and reused safely.
type Converter struct {
	// Source
	src string

	// Configuration
	pageSize      typeset.PageSize
	mode          convert.Mode
	language      string
	outputDir     string
	margin        float64
	stripRepeated bool
	recognizer    ocr.Recognizer
	log           logrus.FieldLogger

	// Accumulated error (fail-fast)
	err error
}

// PDFResult describes a PDF written by ToPDF.
type PDFResult struct {
	OutputURL     string   `json:"outputUrl"`
	PageCount     int      `json:"pageCount"`
	FileSizeBytes int64    `json:"fileSizeBytes"`
	Warnings      []string `json:"warnings"`
}

// DocxResult describes a DOCX written by ToDOCX. Mode is the extraction
// strategy that actually produced the content.
type DocxResult struct {
	OutputURL     string   `json:"outputUrl"`
	PageCount     int      `json:"pageCount"`
	FileSizeBytes int64    `json:"fileSizeBytes"`
	Mode          string   `json:"mode"`
	Warnings      []string `json:"warnings,omitempty"`
}

// clone creates a shallow copy of the Converter.
func (c *Converter) clone() *Converter {
	n := *c
	return &n
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// PageSize selects the PDF page size: "LETTER", "LEGAL", or anything else
// for A4.
//
// Example:
//
//	res, err := docflip.Open("doc.docx").PageSize("LETTER").ToPDF(ctx)
func (c *Converter) PageSize(token string) *Converter {
	n := c.clone()
	n.pageSize = typeset.ParsePageSize(token)
	return n
}

// Mode selects the PDF to DOCX strategy: "text", "textAndImages", "auto"
// or "ocrFallback" (same as "auto"). An unknown token fails the terminal
// operation with INVALID_INPUT.
func (c *Converter) Mode(token string) *Converter {
	n := c.clone()
	mode, err := convert.ParseMode(token)
	if err != nil && n.err == nil {
		n.err = err
	}
	n.mode = mode
	return n
}

// Language sets the recognizer language hint, "auto" or a code such as
// "eng" or "eng+fra".
func (c *Converter) Language(hint string) *Converter {
	n := c.clone()
	n.language = hint
	return n
}

// OutputDir sets the directory output files are written to. The default is
// the system temporary directory.
func (c *Converter) OutputDir(dir string) *Converter {
	n := c.clone()
	n.outputDir = dir
	return n
}

// Margin sets a uniform page margin in points.
func (c *Converter) Margin(pt float64) *Converter {
	n := c.clone()
	if pt < 0 && n.err == nil {
		n.err = fmt.Errorf("%w: negative margin %v", convert.ErrInvalidInput, pt)
	}
	n.margin = pt
	return n
}

// StripRepeatedLines drops running headers and footers, such as page
// numbers, when rebuilding a DOCX from a PDF.
func (c *Converter) StripRepeatedLines() *Converter {
	n := c.clone()
	n.stripRepeated = true
	return n
}

// Logger sets the logger used for diagnostics. A nil logger discards.
func (c *Converter) Logger(log logrus.FieldLogger) *Converter {
	n := c.clone()
	n.log = logging.OrDiscard(log)
	return n
}

// Recognizer enables OCR for PDF pages without a text layer and for image
// sources.
func (c *Converter) Recognizer(r ocr.Recognizer) *Converter {
	n := c.clone()
	n.recognizer = r
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// ToPDF converts a DOCX source to PDF and writes it to the output directory.
func (c *Converter) ToPDF(ctx context.Context) (*PDFResult, error) {
	data, err := c.source(ctx, format.DOCX)
	if err != nil {
		return nil, err
	}

	out, err := convert.NewDocxToPDF(c.options()...).Convert(data, c.pageSize)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, convert.Classify(err)
	}

	outURL, size, err := c.write(out.PDF, ".pdf")
	if err != nil {
		return nil, err
	}
	warnings := out.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &PDFResult{OutputURL: outURL, PageCount: out.PageCount, FileSizeBytes: size, Warnings: warnings}, nil
}

// ToDOCX converts a PDF or image source to DOCX and writes it to the output
// directory.
func (c *Converter) ToDOCX(ctx context.Context) (*DocxResult, error) {
	data, err := c.source(ctx, format.PDF, format.Image)
	if err != nil {
		return nil, err
	}

	pages, err := c.pages(data)
	if err != nil {
		return nil, err
	}

	out, err := convert.NewPDFToDocx(c.options()...).Convert(ctx, pages, c.mode, c.language)
	if err != nil {
		return nil, err
	}

	outURL, size, err := c.write(out.Docx, ".docx")
	if err != nil {
		return nil, err
	}
	return &DocxResult{
		OutputURL:     outURL,
		PageCount:     out.PageCount,
		FileSizeBytes: size,
		Mode:          string(out.Mode),
		Warnings:      out.Warnings,
	}, nil
}

// Format reports the detected format of the source, reading it if needed.
func (c *Converter) Format() (format.Format, error) {
	path, err := c.path()
	if err != nil {
		return format.Unknown, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return format.Unknown, convert.Classify(err)
	}
	if f := format.DetectBytes(data); f != format.Unknown {
		return f, nil
	}
	return format.Detect(path), nil
}

// ============================================================================
// Internal helpers
// ============================================================================

func (c *Converter) options() []convert.Option {
	opts := []convert.Option{
		convert.WithLogger(c.log),
		convert.WithMargins(typeset.UniformMargins(c.margin)),
		convert.WithRepeatedLineFiltering(c.stripRepeated),
	}
	if c.recognizer != nil {
		opts = append(opts, convert.WithRecognizer(c.recognizer))
	}
	return opts
}

// path resolves the source to a local file path.
func (c *Converter) path() (string, error) {
	if c.err != nil {
		return "", convert.Classify(c.err)
	}
	src := strings.TrimSpace(c.src)
	if src == "" {
		return "", convert.Classify(fmt.Errorf("%w: no source specified", convert.ErrInvalidInput))
	}
	if !strings.Contains(src, "://") {
		return src, nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", convert.Classify(fmt.Errorf("%w: %v", convert.ErrInvalidInput, err))
	}
	if u.Scheme != "file" {
		return "", convert.Classify(fmt.Errorf("%w: unsupported source scheme %q", convert.ErrInvalidInput, u.Scheme))
	}
	return u.Path, nil
}

// source reads the source and checks that it is one of the accepted
// formats.
func (c *Converter) source(ctx context.Context, accept ...format.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, convert.Classify(err)
	}
	path, err := c.path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, convert.Classify(err)
	}

	detected := format.DetectBytes(data)
	if detected == format.Unknown {
		// Damaged files still get the parser's diagnosis.
		detected = format.Detect(path)
	}
	for _, f := range accept {
		if detected == f {
			c.log.WithFields(logrus.Fields{"source": path, "format": detected, "bytes": len(data)}).Debug("read source")
			return data, nil
		}
	}
	return nil, convert.Classify(fmt.Errorf("%w: %s source cannot be converted this way", convert.ErrInvalidInput, detected))
}

// pages opens PDF data, or wraps image data in a single page.
func (c *Converter) pages(data []byte) ([]extract.Page, error) {
	if format.DetectBytes(data) == format.Image {
		page, err := extract.NewImagePage(data)
		if err != nil {
			return nil, convert.Classify(fmt.Errorf("%w: %v", convert.ErrInvalidInput, err))
		}
		return []extract.Page{page}, nil
	}

	doc, err := pdfsource.Open(data, pdfsource.WithLogger(c.log))
	if err != nil {
		return nil, convert.Classify(err)
	}
	pages, err := doc.Pages()
	if err != nil {
		return nil, convert.Classify(err)
	}
	return pages, nil
}

// write stores data under a generated name and returns its file URL and
// size.
func (c *Converter) write(data []byte, ext string) (string, int64, error) {
	dir := c.outputDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, convert.Classify(err)
	}

	name := fmt.Sprintf("docflip-%s-%s%s", time.Now().UTC().Format("20060102"), uuid.NewString(), ext)
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", 0, convert.Classify(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, convert.Classify(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, convert.Classify(err)
	}
	c.log.WithFields(logrus.Fields{"path": path, "bytes": info.Size()}).Info("wrote output")

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), info.Size(), nil
}

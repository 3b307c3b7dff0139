// Package ocr recognizes text in page images.
//
// The Tesseract-backed Client is compiled in with the "ocr" build tag and
// requires Tesseract to be installed. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag, New returns ErrOCRNotEnabled.
package ocr

import (
	"context"
	"errors"
	"image"
	"strings"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// DefaultLanguage is used when the caller asks for automatic detection.
const DefaultLanguage = "eng"

// Line is one recognized line of text.
type Line struct {
	Text string
	// Box is in pixels of the recognized image, origin top-left.
	Box image.Rectangle
	// Confidence is between 0 and 1.
	Confidence float64
}

// Recognizer turns an encoded image into lines of text. Implementations
// block until recognition finishes or ctx is done.
type Recognizer interface {
	Recognize(ctx context.Context, img []byte, language string) ([]Line, error)
}

var _ Recognizer = (*Client)(nil)

// Languages splits a language hint into recognizer language codes. "auto"
// and an empty hint select DefaultLanguage. Multiple languages may be joined
// with "+" (e.g., "eng+fra").
func Languages(hint string) []string {
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.EqualFold(hint, "auto") {
		return []string{DefaultLanguage}
	}
	var langs []string
	for _, l := range strings.Split(hint, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{DefaultLanguage}
	}
	return langs
}

// Package docflip provides a fluent API for converting DOCX documents to PDF
// and PDF documents (or scanned page images) back to editable DOCX.
//
// Basic usage:
//
//	res, err := docflip.Open("report.docx").PageSize("LETTER").ToPDF(ctx)
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(res.OutputURL, res.PageCount)
//
// The reverse direction:
//
//	res, err := docflip.Open("file:///tmp/scan.pdf").
//	    Mode("auto").
//	    Language("eng").
//	    OutputDir("/tmp/out").
//	    ToDOCX(ctx)
//
// Every conversion writes a new file with a generated name and reports it in
// the result. Failures are *convert.Error values carrying a stable code.
//
// For lower-level control, the convert package works on bytes and pages
// directly.
package docflip

import (
	"github.com/tsawler/docflip/convert"
	"github.com/tsawler/docflip/internal/logging"
	"github.com/tsawler/docflip/typeset"
)

// Open names a source document and returns a Converter for fluent
// configuration. src is a file path or a file:// URL; nothing is read until
// a terminal operation such as ToPDF.
//
// Example:
//
//	res, err := docflip.Open("document.docx").ToPDF(ctx)
func Open(src string) *Converter {
	return &Converter{
		src:      src,
		pageSize: typeset.A4,
		mode:     convert.ModeAuto,
		language: "auto",
		margin:   typeset.DefaultMargin,
		log:      logging.Discard(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := docflip.Must(docflip.Open("document.docx").ToPDF(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

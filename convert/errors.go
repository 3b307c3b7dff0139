package convert

import (
	"context"
	"errors"
	"io/fs"

	"github.com/tsawler/docflip/container"
	"github.com/tsawler/docflip/docx"
	"github.com/tsawler/docflip/ocr"
	"github.com/tsawler/docflip/pdfsource"
	"github.com/tsawler/docflip/render"
	"github.com/tsawler/docflip/typeset"
)

// Code is a stable identifier for a class of conversion failure.
type Code string

// Failure codes.
const (
	CodeInvalidArchive      Code = "INVALID_ARCHIVE"
	CodeMissingRequiredPart Code = "MISSING_REQUIRED_PART"
	CodeParseError          Code = "PARSE_ERROR"
	CodeRenderError         Code = "RENDER_ERROR"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeIOError             Code = "IO_ERROR"
	CodeOCRError            Code = "OCR_ERROR"
	CodeCancelled           Code = "CANCELLED"
	CodeInternal            Code = "INTERNAL"
)

var (
	// ErrInvalidInput is returned for arguments a conversion cannot use.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOCR wraps failures while recovering text from a page image.
	ErrOCR = errors.New("text recognition failed")
)

// Error is a fatal conversion failure.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// codes maps sentinel errors to failure codes, first match wins.
var codes = []struct {
	err  error
	code Code
}{
	{container.ErrNotZip, CodeInvalidArchive},
	{container.ErrCorrupt, CodeInvalidArchive},
	{container.ErrTruncated, CodeInvalidArchive},
	{container.ErrChecksum, CodeInvalidArchive},
	{docx.ErrMissingDocumentXML, CodeMissingRequiredPart},
	{docx.ErrParse, CodeParseError},
	{typeset.ErrRender, CodeRenderError},
	{render.ErrFinished, CodeRenderError},
	{pdfsource.ErrInvalidPDF, CodeInvalidInput},
	{ErrInvalidInput, CodeInvalidInput},
	{context.Canceled, CodeCancelled},
	{context.DeadlineExceeded, CodeCancelled},
	{ocr.ErrOCRNotEnabled, CodeOCRError},
	{ErrOCR, CodeOCRError},
	{fs.ErrNotExist, CodeIOError},
	{fs.ErrPermission, CodeIOError},
}

// Classify converts err into an *Error. Errors that already are *Error are
// returned unchanged; nil yields nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return &Error{Code: c.code, Message: err.Error(), Err: err}
		}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &Error{Code: CodeIOError, Message: err.Error(), Err: err}
	}
	return &Error{Code: CodeInternal, Message: err.Error(), Err: err}
}

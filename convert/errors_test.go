package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/tsawler/docflip/container"
	"github.com/tsawler/docflip/docx"
	"github.com/tsawler/docflip/ocr"
	"github.com/tsawler/docflip/pdfsource"
	"github.com/tsawler/docflip/typeset"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not a zip", fmt.Errorf("opening: %w", container.ErrNotZip), CodeInvalidArchive},
		{"truncated", container.ErrTruncated, CodeInvalidArchive},
		{"missing document", docx.ErrMissingDocumentXML, CodeMissingRequiredPart},
		{"parse", fmt.Errorf("%w: bad token", docx.ErrParse), CodeParseError},
		{"render", typeset.ErrRender, CodeRenderError},
		{"invalid pdf", pdfsource.ErrInvalidPDF, CodeInvalidInput},
		{"invalid input", ErrInvalidInput, CodeInvalidInput},
		{"cancelled", context.Canceled, CodeCancelled},
		{"deadline", fmt.Errorf("ocr: %w", context.DeadlineExceeded), CodeCancelled},
		{"ocr disabled", ocr.ErrOCRNotEnabled, CodeOCRError},
		{"missing file", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, CodeIOError},
		{"other path error", &fs.PathError{Op: "read", Path: "x", Err: errors.New("boom")}, CodeIOError},
		{"unknown", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got == nil {
				t.Fatal("Classify returned nil")
			}
			if got.Code != tt.want {
				t.Errorf("Code = %s, want %s", got.Code, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error does not wrap the original")
			}
		})
	}
}

func TestClassifyPassesThrough(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}

	original := &Error{Code: CodeRenderError, Message: "x"}
	wrapped := fmt.Errorf("outer: %w", original)
	if got := Classify(wrapped); got != original {
		t.Errorf("Classify = %+v, want the wrapped *Error", got)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: CodeParseError, Message: "unexpected EOF"}
	if got := err.Error(); got != "PARSE_ERROR: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}

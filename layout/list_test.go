package layout

import (
	"testing"

	"github.com/tsawler/docflip/model"
)

func TestDetectListMarker(t *testing.T) {
	tests := []struct {
		text   string
		kind   model.ListKind
		number int
		rest   string
	}{
		{"• First", model.ListBullet, 0, "First"},
		{"- dash item", model.ListBullet, 0, "dash item"},
		{"◦ nested", model.ListBullet, 0, "nested"},
		{"1. One", model.ListNumbered, 1, "One"},
		{"12) Twelve", model.ListNumbered, 12, "Twelve"},
		{"-5 degrees", model.ListNone, 0, "-5 degrees"},
		{"*emphasis*", model.ListNone, 0, "*emphasis*"},
		{"•", model.ListNone, 0, "•"},
		{"2024. was a year", model.ListNone, 0, "2024. was a year"},
		{"0. zero", model.ListNone, 0, "0. zero"},
		{"Plain text", model.ListNone, 0, "Plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			kind, number, rest, ok := detectListMarker(tt.text)
			if ok != (tt.kind != model.ListNone) {
				t.Errorf("Expected ok=%v, got %v", tt.kind != model.ListNone, ok)
			}
			if kind != tt.kind || number != tt.number || rest != tt.rest {
				t.Errorf("Expected (%v, %d, %q), got (%v, %d, %q)", tt.kind, tt.number, tt.rest, kind, number, rest)
			}
		})
	}
}

package typeset

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

// fixedMeasurer gives every character half the font size in width, which
// keeps layout arithmetic exact in tests.
type fixedMeasurer struct{}

func (fixedMeasurer) Width(text string, s Style) float64 {
	return float64(utf8.RuneCountInString(text)) * s.Size * 0.5
}

func (fixedMeasurer) Metrics(s Style) (float64, float64) {
	return s.Size * 0.8, s.Size * 0.2
}

func lineTexts(lines []line) []string {
	var out []string
	for _, l := range lines {
		s := ""
		for _, f := range l.frags {
			if f.tab {
				s += "\t"
				continue
			}
			s += f.text
		}
		out = append(out, s)
	}
	return out
}

func body(text string) []span {
	return []span{{text: text, style: Style{Size: 12}}}
}

func TestTokenize(t *testing.T) {
	got := tokenize("a  b\tc\r\nd e")
	want := []string{"a", " ", " ", "b", "\t", "c", "\n", "d", " ", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize() = %q, want %q", got, want)
	}
}

func TestBreakLines(t *testing.T) {
	fallback := Style{Size: 12}
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
		wantLast []bool
	}{
		{
			name:     "fits on one line",
			text:     "aaaa bbbb",
			maxWidth: 60,
			want:     []string{"aaaa bbbb"},
			wantLast: []bool{true},
		},
		{
			name:     "wraps at a space",
			text:     "aaaa bbbb cccc",
			maxWidth: 60,
			want:     []string{"aaaa bbbb", "cccc"},
			wantLast: []bool{false, true},
		},
		{
			name:     "splits a word wider than the line",
			text:     "abcdefghijklmnop",
			maxWidth: 60,
			want:     []string{"abcdefghij", "klmnop"},
			wantLast: []bool{false, true},
		},
		{
			name:     "newline forces a break",
			text:     "a\nb",
			maxWidth: 60,
			want:     []string{"a", "b"},
			wantLast: []bool{true, true},
		},
		{
			name:     "newline right after a wrap adds no empty line",
			text:     "aaaaaaaaaa \nb",
			maxWidth: 60,
			want:     []string{"aaaaaaaaaa", "b"},
			wantLast: []bool{true, true},
		},
		{
			name:     "spaces at a wrap are dropped",
			text:     "aaaaaaaaaa   bb",
			maxWidth: 60,
			want:     []string{"aaaaaaaaaa", "bb"},
			wantLast: []bool{false, true},
		},
		{
			name:     "tab",
			text:     "a\tb",
			maxWidth: 60,
			want:     []string{"a\tb"},
			wantLast: []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := breakLines(fixedMeasurer{}, body(tt.text), tt.maxWidth, fallback)
			if got := lineTexts(lines); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("lines = %q, want %q", got, tt.want)
			}
			for i, l := range lines {
				if l.last != tt.wantLast[i] {
					t.Errorf("line %d last = %v, want %v", i, l.last, tt.wantLast[i])
				}
				if l.width > tt.maxWidth {
					t.Errorf("line %d width %v exceeds %v", i, l.width, tt.maxWidth)
				}
			}
		})
	}
}

func TestBreakLinesEmpty(t *testing.T) {
	lines := breakLines(fixedMeasurer{}, nil, 100, Style{Size: 12})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].height != 12*LineSpacing {
		t.Errorf("height = %v, want %v", lines[0].height, 12*LineSpacing)
	}
}

func TestBreakLinesTallestStyleSetsHeight(t *testing.T) {
	spans := []span{
		{text: "small ", style: Style{Size: 12}},
		{text: "BIG", style: Style{Size: 24}},
	}
	lines := breakLines(fixedMeasurer{}, spans, 500, Style{Size: 12})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].height != 24*LineSpacing {
		t.Errorf("height = %v, want %v", lines[0].height, 24*LineSpacing)
	}
	if lines[0].ascent != 24*0.8 {
		t.Errorf("ascent = %v, want %v", lines[0].ascent, 24*0.8)
	}
	if lines[0].width != 6*6+3*12 {
		t.Errorf("width = %v, want %v", lines[0].width, 6*6+3*12)
	}
}

func TestLineSpaces(t *testing.T) {
	lines := breakLines(fixedMeasurer{}, body("a b c"), 500, Style{Size: 12})
	if n := lines[0].spaces(); n != 2 {
		t.Errorf("spaces() = %d, want 2", n)
	}
}

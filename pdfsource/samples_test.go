package pdfsource

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestUnpredict(t *testing.T) {
	// Two rows of three 1-byte pixels.
	data := []byte{
		1, 10, 5, 5, // Sub: 10 15 20
		2, 1, 1, 1, // Up: 11 16 21
	}
	got, err := unpredict(data, 1, 8, 3)
	if err != nil {
		t.Fatalf("unpredict: %v", err)
	}
	want := []byte{10, 15, 20, 11, 16, 21}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := unpredict([]byte{9, 0, 0, 0}, 1, 8, 3); err == nil {
		t.Error("expected an error for an unknown filter type")
	}
}

func TestUnpredictAveragePaeth(t *testing.T) {
	data := []byte{
		0, 100, 50,
		3, 0, 0, // Average: 50, (50+50)/2
		4, 0, 0, // Paeth picks up: 50, 50
	}
	got, err := unpredict(data, 1, 8, 2)
	if err != nil {
		t.Fatalf("unpredict: %v", err)
	}
	want := []byte{100, 50, 50, 50, 50, 50}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSampleFormats(t *testing.T) {
	tests := []struct {
		name   string
		format sampleFormat
		data   []byte
		want   []color.Gray // first row, converted to gray
	}{
		{
			name:   "1-bit",
			format: sampleFormat{width: 3, height: 1, components: 1, bpc: 1},
			data:   []byte{0b10100000},
			want:   []color.Gray{{255}, {0}, {255}},
		},
		{
			name:   "4-bit",
			format: sampleFormat{width: 2, height: 1, components: 1, bpc: 4},
			data:   []byte{0xF0},
			want:   []color.Gray{{255}, {0}},
		},
		{
			name:   "8-bit rgb",
			format: sampleFormat{width: 1, height: 1, components: 3, bpc: 8},
			data:   []byte{255, 255, 255},
			want:   []color.Gray{{255}},
		},
		{
			name:   "cmyk",
			format: sampleFormat{width: 1, height: 1, components: 4, bpc: 8},
			data:   []byte{0, 0, 0, 255},
			want:   []color.Gray{{0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.format.toImage(tt.data)
			if err != nil {
				t.Fatalf("toImage: %v", err)
			}
			for x, want := range tt.want {
				got := color.GrayModel.Convert(img.At(x, 0)).(color.Gray)
				if got != want {
					t.Errorf("pixel %d = %v, want %v", x, got, want)
				}
			}
		})
	}
}

func TestSampleFormatShortData(t *testing.T) {
	f := sampleFormat{width: 4, height: 4, components: 3, bpc: 8}
	if _, err := f.toImage(make([]byte, 10)); err == nil {
		t.Error("expected an error for short data")
	}
}

func TestPalette(t *testing.T) {
	pal, err := buildPalette([]byte{255, 0, 0, 0, 0, 255}, 3, 1)
	if err != nil {
		t.Fatalf("buildPalette: %v", err)
	}
	f := sampleFormat{width: 2, height: 1, components: 1, bpc: 8, palette: pal}
	img, err := f.toImage([]byte{1, 0})
	if err != nil {
		t.Fatalf("toImage: %v", err)
	}
	if p, ok := img.(*image.Paletted); !ok || p.ColorIndexAt(0, 0) != 1 || p.ColorIndexAt(1, 0) != 0 {
		t.Errorf("unexpected paletted image %v", img)
	}

	if _, err := buildPalette([]byte{1, 2}, 3, 1); err == nil {
		t.Error("expected an error for a short lookup table")
	}
}

func TestGroupGlyphs(t *testing.T) {
	glyph := func(s string, x, y, w float64) pdf.Text {
		return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: 10}
	}
	glyphs := []pdf.Text{
		glyph("a", 10, 700, 5),
		glyph("b", 15, 700, 5),
		glyph(" ", 20, 700, 3),
		glyph("c", 23, 700, 5),
		glyph("d", 40, 700, 5), // gap of 12 ends the word
		glyph("e", 45, 680, 5), // new baseline
	}

	words := groupGlyphs(glyphs, 0, 0)
	var texts []string
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	want := []string{"ab", "c", "d", "e"}
	if len(texts) != len(want) {
		t.Fatalf("words = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, texts[i], want[i])
		}
	}
	if w := words[0]; w.X != 10 || w.Width != 10 || w.Y != 698 || w.Height != 10 || !w.Boxed {
		t.Errorf("first word = %+v", w)
	}
}

func TestGroupGlyphsWithoutWidths(t *testing.T) {
	// Glyphs of one run without a width table share the run's origin.
	var glyphs []pdf.Text
	for _, r := range "ab cd" {
		glyphs = append(glyphs, pdf.Text{S: string(r), X: 100, Y: 500, FontSize: 10})
	}

	words := groupGlyphs(glyphs, 0, 0)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0].X != 100 || words[0].Width != 10 {
		t.Errorf("first word = %+v, want x=100 width=10", words[0])
	}
	// Two glyphs of 5 and a space of 2.5.
	if words[1].X != 112.5 {
		t.Errorf("second word x = %v, want 112.5", words[1].X)
	}
}

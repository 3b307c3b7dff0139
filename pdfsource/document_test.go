package pdfsource

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/tsawler/docflip/extract"
)

func newPDF(w, h float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func output(t *testing.T, pdf *gofpdf.Fpdf) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("writing PDF: %v", err)
	}
	return buf.Bytes()
}

func openPage(t *testing.T, data []byte, index int) *Page {
	t.Helper()
	doc, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	page, err := doc.Page(index)
	if err != nil {
		t.Fatalf("Page(%d): %v", index, err)
	}
	return page
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestOpenRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a pdf"), []byte("%PDF-1.4\ntruncated")} {
		if _, err := Open(data); !errors.Is(err, ErrInvalidPDF) {
			t.Errorf("Open(%q) err = %v, want ErrInvalidPDF", data, err)
		}
	}
}

func TestPageSizes(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"letter", 612, 792},
		{"a4", 595, 842},
		{"legal", 612, 1008},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf := newPDF(tt.w, tt.h)
			pdf.AddPage()
			pdf.AddPage()

			doc, err := Open(output(t, pdf))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if doc.PageCount() != 2 {
				t.Errorf("PageCount = %d, want 2", doc.PageCount())
			}
			pages, err := doc.Pages()
			if err != nil {
				t.Fatalf("Pages: %v", err)
			}
			for i, p := range pages {
				w, h := p.Size()
				if !near(w, tt.w) || !near(h, tt.h) {
					t.Errorf("page %d size = %vx%v, want %vx%v", i, w, h, tt.w, tt.h)
				}
			}
			if _, err := doc.Page(2); err == nil {
				t.Error("expected an error for a page past the end")
			}
		})
	}
}

func TestWordsFromTextLayer(t *testing.T) {
	pdf := newPDF(612, 792)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 100, "Hello world")
	pdf.Text(72, 130, "Second line")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(72, 200, "Title")

	words, err := openPage(t, output(t, pdf), 0).Words()
	if err != nil {
		t.Fatalf("Words: %v", err)
	}

	want := []string{"Hello", "world", "Second", "line", "Title"}
	if len(words) != len(want) {
		t.Fatalf("got %d words %+v, want %v", len(words), words, want)
	}
	for i, w := range words {
		if w.Text != want[i] {
			t.Errorf("word %d = %q, want %q", i, w.Text, want[i])
		}
		if !w.Boxed {
			t.Errorf("word %q has no box", w.Text)
		}
	}

	first := words[0]
	if !near(first.X, 72) || !near(first.FontSize, 12) || !near(first.Height, 12) {
		t.Errorf("first word = %+v", first)
	}
	// Baseline 692 in PDF space, box bottom a descent below it.
	if !near(first.Y, 692-0.2*12) {
		t.Errorf("first word Y = %v, want %v", first.Y, 692-0.2*12)
	}
	if words[1].X <= first.X+first.Width {
		t.Errorf("second word at %v overlaps the first ending at %v", words[1].X, first.X+first.Width)
	}
	if words[2].Y >= first.Y {
		t.Error("second line is not below the first")
	}
	if !near(words[4].FontSize, 20) {
		t.Errorf("title font size = %v, want 20", words[4].FontSize)
	}
}

func TestEmptyPageHasNoWords(t *testing.T) {
	pdf := newPDF(612, 792)
	pdf.AddPage()

	words, err := openPage(t, output(t, pdf), 0).Words()
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("got %d words, want none", len(words))
	}
}

func grayImage(w, h int, shade uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	return img
}

func scannedPDF(t *testing.T, imageType string, data []byte) []byte {
	t.Helper()
	pdf := newPDF(612, 792)
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("scan", opts, bytes.NewReader(data))
	pdf.ImageOptions("scan", 0, 0, 612, 792, false, opts, 0, "")
	return output(t, pdf)
}

func TestRasterizeScannedPage(t *testing.T) {
	var pngData, jpegData bytes.Buffer
	if err := png.Encode(&pngData, grayImage(120, 80, 0)); err != nil {
		t.Fatal(err)
	}
	rgb := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := range rgb.Pix {
		rgb.Pix[i] = 255
	}
	if err := jpeg.Encode(&jpegData, rgb, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		imageType string
		data      []byte
		dark      bool
	}{
		{"png", "PNG", pngData.Bytes(), true},
		{"jpeg", "JPG", jpegData.Bytes(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := openPage(t, scannedPDF(t, tt.imageType, tt.data), 0)
			img, err := page.Rasterize(0.5)
			if err != nil {
				t.Fatalf("Rasterize: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 306 || b.Dy() != 396 {
				t.Errorf("raster = %dx%d, want 306x396", b.Dx(), b.Dy())
			}
			y := color.GrayModel.Convert(img.At(153, 198)).(color.Gray).Y
			if tt.dark && y > 40 {
				t.Errorf("center luminance = %d, want dark", y)
			}
			if !tt.dark && y < 215 {
				t.Errorf("center luminance = %d, want light", y)
			}
		})
	}
}

func TestRasterizeWithoutImages(t *testing.T) {
	pdf := newPDF(612, 792)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 72, "text only")

	_, err := openPage(t, output(t, pdf), 0).Rasterize(1)
	if !errors.Is(err, extract.ErrRasterUnavailable) {
		t.Errorf("err = %v, want ErrRasterUnavailable", err)
	}
}

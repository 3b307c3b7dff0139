// Package format provides source format detection for docflip.
package format

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/tsawler/docflip/container"
)

// Format represents a supported source format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// Image indicates a raster image such as a scanned page.
	Image
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case DOCX:
		return "DOCX"
	case Image:
		return "Image"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case DOCX:
		return ".docx"
	case Image:
		return ".png"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return Image
	default:
		return Unknown
	}
}

var (
	pdfMagic  = []byte("%PDF")
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	gifMagic  = []byte("GIF8")
	bmpMagic  = []byte("BM")
	tiffLE    = []byte("II*\x00")
	tiffBE    = []byte("MM\x00*")
)

// DetectFromMagic checks leading magic bytes. ZIP archives are reported as
// Unknown; DetectBytes looks inside them.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return PDF
	case bytes.HasPrefix(data, pngMagic),
		bytes.HasPrefix(data, jpegMagic),
		bytes.HasPrefix(data, gifMagic),
		bytes.HasPrefix(data, bmpMagic),
		bytes.HasPrefix(data, tiffLE),
		bytes.HasPrefix(data, tiffBE),
		len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return Image
	}
	return Unknown
}

// DetectBytes inspects content to determine its format. It is more reliable
// than extension-based detection and tells a DOCX package apart from other
// ZIP archives by its word/ parts.
func DetectBytes(data []byte) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return Unknown
	}

	zr, err := container.Open(data)
	if err != nil {
		return Unknown
	}
	for _, e := range zr.Entries() {
		if strings.HasPrefix(e.Name, "word/") {
			return DOCX
		}
	}
	return Unknown
}

package pdfsource

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"regexp"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/docflip/extract"
)

// Rasterize implements extract.Rasterizer. There is no general PDF renderer
// here: the page's largest image is taken to be the page, which is what
// scanned documents look like.
func (p *Page) Rasterize(scale float64) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %v", extract.ErrRasterUnavailable, r)
		}
	}()

	xobj, ok := p.largestImage()
	if !ok {
		return nil, fmt.Errorf("%w: page %d has no images", extract.ErrRasterUnavailable, p.index+1)
	}
	src, err := p.doc.decodeImage(xobj)
	if err != nil {
		p.doc.log.WithError(err).WithField("page", p.index+1).Debug("page image not decodable")
		return nil, fmt.Errorf("%w: %v", extract.ErrRasterUnavailable, err)
	}
	return extract.ScaleToPage(src, p.width, p.height, scale)
}

// largestImage returns the image XObject with the most pixels.
func (p *Page) largestImage() (pdf.Value, bool) {
	xobjects := p.page.Resources().Key("XObject")
	var best pdf.Value
	var bestArea int64
	for _, name := range xobjects.Keys() {
		v := xobjects.Key(name)
		if v.Key("Subtype").Name() != "Image" {
			continue
		}
		area := v.Key("Width").Int64() * v.Key("Height").Int64()
		if area > bestArea {
			best, bestArea = v, area
		}
	}
	return best, bestArea > 0
}

// decodeImage turns an image XObject into an image.
func (d *Document) decodeImage(v pdf.Value) (image.Image, error) {
	width, height := int(v.Key("Width").Int64()), int(v.Key("Height").Int64())
	filters := filterNames(v.Key("Filter"))

	if len(filters) == 1 && filters[0] == "DCTDecode" {
		raw, err := d.rawStream(v, width, height)
		if err != nil {
			return nil, err
		}
		return jpeg.Decode(bytes.NewReader(raw))
	}

	format, err := sampleFormatOf(v, width, height)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch {
	case len(filters) == 0:
		data, err = io.ReadAll(v.Reader())
	case len(filters) == 1 && filters[0] == "FlateDecode":
		data, err = d.inflate(v, width, height, format)
	default:
		return nil, fmt.Errorf("unsupported image filters %v", filters)
	}
	if err != nil {
		return nil, err
	}
	return format.toImage(data)
}

// inflate decodes a FlateDecode image stream. The PDF reader only handles
// the PNG Up predictor, so predicted streams are located in the file and
// decoded here.
func (d *Document) inflate(v pdf.Value, width, height int, format sampleFormat) ([]byte, error) {
	parms := v.Key("DecodeParms")
	if parms.Kind() == pdf.Array && parms.Len() > 0 {
		parms = parms.Index(0)
	}
	predictor := int(parms.Key("Predictor").Int64())
	if predictor <= 1 {
		return io.ReadAll(v.Reader())
	}
	if predictor < 10 {
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}

	raw, err := d.rawStream(v, width, height)
	if err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("inflating image: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflating image: %w", err)
	}

	colors := intOr(parms.Key("Colors"), 1)
	bpc := intOr(parms.Key("BitsPerComponent"), 8)
	columns := intOr(parms.Key("Columns"), 1)
	return unpredict(data, colors, bpc, columns)
}

func intOr(v pdf.Value, def int) int {
	if v.Kind() == pdf.Integer {
		return int(v.Int64())
	}
	return def
}

func filterNames(v pdf.Value) []string {
	switch v.Kind() {
	case pdf.Name:
		return []string{v.Name()}
	case pdf.Array:
		names := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			names = append(names, v.Index(i).Name())
		}
		return names
	}
	return nil
}

// sampleFormatOf reads the color space and bit depth of an image XObject.
func sampleFormatOf(v pdf.Value, width, height int) (sampleFormat, error) {
	f := sampleFormat{width: width, height: height, bpc: intOr(v.Key("BitsPerComponent"), 8)}
	if v.Key("ImageMask").Bool() {
		f.components, f.bpc = 1, 1
		return f, nil
	}

	cs := v.Key("ColorSpace")
	if cs.Kind() == pdf.Array && cs.Len() > 0 && cs.Index(0).Name() == "Indexed" {
		if cs.Len() < 4 {
			return f, fmt.Errorf("malformed Indexed color space")
		}
		base, err := components(cs.Index(1))
		if err != nil {
			return f, err
		}
		lookup, err := stringOrStream(cs.Index(3))
		if err != nil {
			return f, err
		}
		f.palette, err = buildPalette(lookup, base, int(cs.Index(2).Int64()))
		f.components = 1
		return f, err
	}

	n, err := components(cs)
	f.components = n
	return f, err
}

// components returns the number of color components of a color space.
func components(cs pdf.Value) (int, error) {
	name := cs.Name()
	if cs.Kind() == pdf.Array && cs.Len() > 0 {
		name = cs.Index(0).Name()
		if name == "ICCBased" && cs.Len() > 1 {
			return intOr(cs.Index(1).Key("N"), 3), nil
		}
	}
	switch name {
	case "DeviceGray", "CalGray", "":
		return 1, nil
	case "DeviceRGB", "CalRGB", "Lab":
		return 3, nil
	case "DeviceCMYK":
		return 4, nil
	}
	return 0, fmt.Errorf("unsupported color space %q", name)
}

func stringOrStream(v pdf.Value) ([]byte, error) {
	if v.Kind() == pdf.String {
		return []byte(v.RawString()), nil
	}
	if v.Kind() == pdf.Stream {
		return io.ReadAll(v.Reader())
	}
	return nil, fmt.Errorf("unexpected palette lookup of kind %v", v.Kind())
}

var (
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")
	objKeyword       = []byte(" obj")
)

// rawStream finds the undecoded bytes of an image stream in the file. The
// PDF reader does not expose stream offsets, so candidates are matched on
// their Length and the Width and Height in their dictionary.
func (d *Document) rawStream(v pdf.Value, width, height int) ([]byte, error) {
	length := int(v.Key("Length").Int64())
	if length <= 0 {
		return nil, fmt.Errorf("image stream has no length")
	}
	widthRe := regexp.MustCompile(fmt.Sprintf(`/Width\s+%d\b`, width))
	heightRe := regexp.MustCompile(fmt.Sprintf(`/Height\s+%d\b`, height))

	data := d.data
	for pos := 0; pos < len(data); {
		i := bytes.Index(data[pos:], streamKeyword)
		if i < 0 {
			break
		}
		kw := pos + i
		pos = kw + len(streamKeyword)
		if kw > 0 && data[kw-1] == 'd' {
			continue
		}

		start := pos
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		end := start + length
		if end > len(data) {
			continue
		}
		if !bytes.HasPrefix(bytes.TrimLeft(data[end:], "\r\n \t"), endstreamKeyword) {
			continue
		}

		dictStart := bytes.LastIndex(data[:kw], objKeyword)
		if dictStart < 0 {
			continue
		}
		dict := data[dictStart:kw]
		if widthRe.Match(dict) && heightRe.Match(dict) {
			return data[start:end], nil
		}
	}
	return nil, fmt.Errorf("image stream of %d bytes not found", length)
}

package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/docflip/container"
	"github.com/tsawler/docflip/model"
)

// pointsPerInch is the number of points in one inch.
const pointsPerInch = 72

// Writer builds a minimal DOCX package. The package always holds exactly
// [Content_Types].xml, _rels/.rels, word/document.xml,
// word/_rels/document.xml.rels and one word/media/imageN.png per image.
// Relationship ids are assigned sequentially from rId1 in emission order.
type Writer struct {
	body   bytes.Buffer
	images [][]byte

	pageWidthPt  float64
	pageHeightPt float64
	marginPt     float64
}

// NewWriter returns an empty document writer.
func NewWriter() *Writer {
	return &Writer{}
}

// SetPageSize records the page size and margin emitted in the section
// properties. Without it no section properties are written.
func (w *Writer) SetPageSize(widthPt, heightPt, marginPt float64) {
	w.pageWidthPt = widthPt
	w.pageHeightPt = heightPt
	w.marginPt = marginPt
}

// ImageCount returns the number of images added so far
func (w *Writer) ImageCount() int {
	return len(w.images)
}

// AddParagraph appends a paragraph. Image runs are skipped; images are
// added with AddImage.
func (w *Writer) AddParagraph(p *model.Paragraph) {
	b := &w.body
	b.WriteString("<w:p>")
	w.writeParagraphProps(p)

	for _, r := range p.Runs {
		if r.Image != nil || r.Text == "" {
			continue
		}
		if p.HeadingLevel > 0 && r.FontSize == 0 {
			r.FontSize = model.HeadingFontSize(p.HeadingLevel)
			r.Bold = true
		}
		writeRun(b, r)
	}

	b.WriteString("</w:p>")
}

func (w *Writer) writeParagraphProps(p *model.Paragraph) {
	var props strings.Builder

	switch {
	case p.HeadingLevel > 0:
		fmt.Fprintf(&props, `<w:pStyle w:val="Heading%d"/>`, min(p.HeadingLevel, 6))
	case p.ListKind == model.ListNumbered:
		props.WriteString(`<w:pStyle w:val="ListNumber"/>`)
	case p.ListKind == model.ListBullet:
		props.WriteString(`<w:pStyle w:val="ListBullet"/>`)
	}
	if p.PageBreakBefore {
		props.WriteString(`<w:pageBreakBefore/>`)
	}
	if p.SpacingBefore > 0 || p.SpacingAfter > 0 {
		fmt.Fprintf(&props, `<w:spacing w:before="%d" w:after="%d"/>`, twips(p.SpacingBefore), twips(p.SpacingAfter))
	}
	if jc := justification(p.Alignment); jc != "" {
		fmt.Fprintf(&props, `<w:jc w:val="%s"/>`, jc)
	}

	if props.Len() > 0 {
		w.body.WriteString("<w:pPr>")
		w.body.WriteString(props.String())
		w.body.WriteString("</w:pPr>")
	}
}

func writeRun(b *bytes.Buffer, r model.Run) {
	b.WriteString("<w:r>")

	var props strings.Builder
	if r.FontFamily != "" {
		fmt.Fprintf(&props, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, escapeAttr(r.FontFamily), escapeAttr(r.FontFamily))
	}
	if r.Bold {
		props.WriteString("<w:b/>")
	}
	if r.Italic {
		props.WriteString("<w:i/>")
	}
	if r.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, escapeAttr(r.Color))
	}
	if r.FontSize > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/>`, int(math.Round(r.FontSize*2)))
	}
	if r.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if props.Len() > 0 {
		b.WriteString("<w:rPr>")
		b.WriteString(props.String())
		b.WriteString("</w:rPr>")
	}

	writeText(b, r.Text)
	b.WriteString("</w:r>")
}

// writeText emits text, turning tabs and newlines into their elements
func writeText(b *bytes.Buffer, text string) {
	start := 0
	flush := func(end int) {
		if end > start {
			b.WriteString(`<w:t xml:space="preserve">`)
			_ = xml.EscapeText(b, []byte(text[start:end]))
			b.WriteString("</w:t>")
		}
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\t':
			flush(i)
			b.WriteString("<w:tab/>")
			start = i + 1
		case '\n':
			flush(i)
			b.WriteString("<w:br/>")
			start = i + 1
		}
	}
	flush(len(text))
}

// AddImage appends a centered paragraph holding a PNG image sized in points
// and returns the image's relationship id.
func (w *Writer) AddImage(png []byte, widthPt, heightPt float64, name string) string {
	w.images = append(w.images, png)
	n := len(w.images)
	relID := "rId" + strconv.Itoa(n)
	cx, cy := emu(widthPt), emu(heightPt)
	if name == "" {
		name = fmt.Sprintf("Image %d", n)
	}

	fmt.Fprintf(&w.body, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="%d" name="%s"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="image%d.png"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, n, escapeAttr(name), n, n, relID, cx, cy)

	return relID
}

// AddPageBreak appends a paragraph holding only a page break.
func (w *Writer) AddPageBreak() {
	w.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

// Bytes assembles the package. It may be called more than once.
func (w *Writer) Bytes() ([]byte, error) {
	zw := container.NewWriter()

	parts := []struct {
		name string
		data []byte
	}{
		{partContentTypes, []byte(contentTypesXML)},
		{partPackageRels, []byte(packageRelsXML)},
		{partDocument, w.documentXML()},
		{partDocumentRels, w.documentRelsXML()},
	}
	for _, part := range parts {
		if err := zw.AddEntry(part.name, part.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	for i, img := range w.images {
		name := fmt.Sprintf("word/media/image%d.png", i+1)
		if err := zw.AddEntry(name, img); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	return zw.Finish()
}

func (w *Writer) documentXML() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`,
		nsW, nsR, nsWP, nsA, nsPic)
	b.Write(w.body.Bytes())

	if w.pageWidthPt > 0 && w.pageHeightPt > 0 {
		m := twips(w.marginPt)
		fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr>`,
			twips(w.pageWidthPt), twips(w.pageHeightPt), m, m, m, m)
	}

	b.WriteString("</w:body></w:document>")
	return b.Bytes()
}

func (w *Writer) documentRelsXML() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsPackageRels)
	for i := range w.images {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="media/image%d.png"/>`, i+1, relImage, i+1)
	}
	b.WriteString("</Relationships>")
	return b.Bytes()
}

var contentTypesXML = xml.Header +
	`<Types xmlns="` + nsContentTypes + `">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

var packageRelsXML = xml.Header +
	`<Relationships xmlns="` + nsPackageRels + `">` +
	`<Relationship Id="rId1" Type="` + relOfficeDocument + `" Target="word/document.xml"/>` +
	`</Relationships>`

func justification(a model.Alignment) string {
	switch a {
	case model.AlignCenter:
		return "center"
	case model.AlignRight:
		return "right"
	case model.AlignJustify:
		return "both"
	default:
		return ""
	}
}

func escapeAttr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// twips converts points to twentieths of a point
func twips(pt float64) int {
	return int(math.Round(pt * 20))
}

// emu converts points to English Metric Units
func emu(pt float64) int64 {
	return int64(math.Round(pt / pointsPerInch * emuPerInch))
}

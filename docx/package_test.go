package docx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tsawler/docflip/container"
)

const (
	testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
)

// createTestDOCX builds a DOCX package in memory from a body fragment and any
// extra parts.
func createTestDOCX(t *testing.T, body string, extra map[string]string) []byte {
	t.Helper()

	parts := map[string]string{
		"[Content_Types].xml": testContentTypes,
		"_rels/.rels":         testPackageRels,
		"word/document.xml":   wrapBody(body),
	}
	for name, data := range extra {
		parts[name] = data
	}

	return buildPackage(t, parts)
}

// buildPackage writes the given parts in a stable order.
func buildPackage(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	order := []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"}
	seen := map[string]bool{}
	w := container.NewWriter()
	for _, name := range order {
		if data, ok := parts[name]; ok {
			if err := w.AddEntry(name, []byte(data)); err != nil {
				t.Fatalf("AddEntry(%s) error = %v", name, err)
			}
			seen[name] = true
		}
	}
	for name, data := range parts {
		if seen[name] {
			continue
		}
		if err := w.AddEntry(name, []byte(data)); err != nil {
			t.Fatalf("AddEntry(%s) error = %v", name, err)
		}
	}

	out, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	return out
}

func TestOpenAndDocument(t *testing.T) {
	data := createTestDOCX(t, `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Report</w:t></w:r></w:p>
    <w:p><w:r><w:t>Body text</w:t></w:r></w:p>`, nil)

	pkg, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if pkg.MainPart() != "word/document.xml" {
		t.Errorf("MainPart() = %q", pkg.MainPart())
	}

	doc, warnings, err := pkg.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	paras := doc.Paragraphs()
	if len(paras) != 2 || paras[0].HeadingLevel != 1 || paras[1].PlainText() != "Body text" {
		t.Errorf("unexpected document: %+v", paras)
	}
}

func TestOpenErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := Open([]byte("plain text, not an archive"))
		if !errors.Is(err, container.ErrNotZip) {
			t.Errorf("error = %v, want ErrNotZip", err)
		}
	})

	t.Run("missing document part", func(t *testing.T) {
		data := buildPackage(t, map[string]string{
			"[Content_Types].xml": testContentTypes,
			"_rels/.rels":         testPackageRels,
			"word/other.xml":      "<x/>",
		})
		_, err := Open(data)
		if !errors.Is(err, ErrMissingDocumentXML) {
			t.Errorf("error = %v, want ErrMissingDocumentXML", err)
		}
	})

	t.Run("malformed document part", func(t *testing.T) {
		data := buildPackage(t, map[string]string{
			"[Content_Types].xml": testContentTypes,
			"word/document.xml":   "<w:document><w:body>",
		})
		pkg, err := Open(data)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, _, err := pkg.Document(); !errors.Is(err, ErrParse) {
			t.Errorf("Document() error = %v, want ErrParse", err)
		}
	})
}

func TestOpenWithoutContentTypesWarns(t *testing.T) {
	data := buildPackage(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:t>x</w:t></w:r></w:p>`),
	})

	pkg, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_, warnings, err := pkg.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(warnings) != 1 || warnings[0] != "package has no [Content_Types].xml" {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestOpenFollowsPackageRelationship(t *testing.T) {
	data := buildPackage(t, map[string]string{
		"[Content_Types].xml": testContentTypes,
		"_rels/.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://purl.oclc.org/ooxml/officeDocument/relationships/officeDocument" Target="/content/main.xml"/>
</Relationships>`,
		"content/main.xml": wrapBody(`<w:p><w:r><w:drawing><wp:inline><wp:extent cx="914400" cy="914400"/>
      <a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="rIdImg"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>
    </wp:inline></w:drawing></w:r></w:p>`),
		"content/_rels/main.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rIdImg" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/pic.png"/>
</Relationships>`,
		"content/media/pic.png": "PNGDATA",
	})

	pkg, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if pkg.MainPart() != "content/main.xml" {
		t.Fatalf("MainPart() = %q, want content/main.xml", pkg.MainPart())
	}

	doc, warnings, err := pkg.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	img := doc.Paragraphs()[0].Runs[0].Image
	if img == nil {
		t.Fatal("expected an image run")
	}
	media, err := pkg.Media(img.RelationshipID)
	if err != nil {
		t.Fatalf("Media() error = %v", err)
	}
	if !bytes.Equal(media, []byte("PNGDATA")) {
		t.Errorf("Media() = %q", media)
	}

	if _, err := pkg.Media("rIdMissing"); !errors.Is(err, container.ErrEntryNotFound) {
		t.Errorf("Media(missing) error = %v, want ErrEntryNotFound", err)
	}
}

func TestOpenLoadsNumberingAndStyles(t *testing.T) {
	data := createTestDOCX(t, `
    <w:p><w:pPr><w:pStyle w:val="Chapter"/></w:pPr><w:r><w:t>Chapter</w:t></w:r></w:p>
    <w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="2"/></w:numPr></w:pPr><w:r><w:t>one</w:t></w:r></w:p>
    <w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="2"/></w:numPr></w:pPr><w:r><w:t>two</w:t></w:r></w:p>`,
		map[string]string{
			"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`,
			"word/styles.xml":    testStylesXML,
			"word/numbering.xml": testNumberingXML,
		})

	pkg, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	doc, _, err := pkg.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}

	paras := doc.Paragraphs()
	if paras[0].HeadingLevel != 2 {
		t.Errorf("styled heading level = %d, want 2", paras[0].HeadingLevel)
	}
	if paras[1].NumberingIndex != 1 || paras[2].NumberingIndex != 2 {
		t.Errorf("numbering = %d, %d; want 1, 2", paras[1].NumberingIndex, paras[2].NumberingIndex)
	}
}

func TestOpenBrokenOptionalParts(t *testing.T) {
	data := createTestDOCX(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`,
		map[string]string{
			"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`,
			"word/numbering.xml": "<w:numbering",
		})

	pkg, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_, warnings, err := pkg.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning for broken numbering, got %v", warnings)
	}
}

// Package docx reads and writes WordprocessingML (DOCX) packages.
//
// Reading is a single streaming pass over the main document part that builds
// a [model.Document]. Writing produces a minimal package with the required
// parts only.
package docx

import "encoding/xml"

// XML namespaces used in DOCX files
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsMC  = "http://schemas.openxmlformats.org/markup-compatibility/2006"

	nsPackageRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types
const (
	relOfficeDocument = nsR + "/officeDocument"
	relImage          = nsR + "/image"
)

// Well-known part names
const (
	partContentTypes = "[Content_Types].xml"
	partPackageRels  = "_rels/.rels"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
)

// strictNamespaces maps ISO strict namespaces onto their transitional
// equivalents so both spellings share one vocabulary.
var strictNamespaces = map[string]string{
	"http://purl.oclc.org/ooxml/wordprocessingml/main":           nsW,
	"http://purl.oclc.org/ooxml/officeDocument/relationships":    nsR,
	"http://purl.oclc.org/ooxml/drawingml/wordprocessingDrawing": nsWP,
	"http://purl.oclc.org/ooxml/drawingml/main":                  nsA,
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

// valXML represents an element whose only payload is a w:val attribute.
type valXML struct {
	Val string `xml:"val,attr"`
}

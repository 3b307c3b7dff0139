package model

// ElementKind identifies the concrete type of a document element.
type ElementKind int

const (
	ElementKindParagraph ElementKind = iota
	ElementKindTable
)

func (k ElementKind) String() string {
	switch k {
	case ElementKindParagraph:
		return "Paragraph"
	case ElementKindTable:
		return "Table"
	default:
		return "Unknown"
	}
}

// Element is implemented by the block-level content types. The set is closed:
// *Paragraph and *Table.
type Element interface {
	Kind() ElementKind
	// PlainText returns the element's text without formatting.
	PlainText() string
}

// Document is an ordered sequence of block elements.
type Document struct {
	Elements []Element
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{Elements: make([]Element, 0)}
}

// Append adds elements to the end of the document
func (d *Document) Append(elems ...Element) {
	d.Elements = append(d.Elements, elems...)
}

// Len returns the number of top-level elements
func (d *Document) Len() int {
	return len(d.Elements)
}

// Paragraphs returns the top-level paragraphs in document order
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, e := range d.Elements {
		if p, ok := e.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the top-level tables in document order
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, e := range d.Elements {
		if t, ok := e.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// PlainText returns all element text separated by newlines
func (d *Document) PlainText() string {
	var text string
	for i, e := range d.Elements {
		if i > 0 {
			text += "\n"
		}
		text += e.PlainText()
	}
	return text
}

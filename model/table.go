package model

import "strings"

// TableCell holds the paragraphs of one cell. ColumnSpan is at least 1.
type TableCell struct {
	Paragraphs []*Paragraph
	ColumnSpan int
}

// Span returns the cell's column span, treating values below 1 as 1
func (c TableCell) Span() int {
	if c.ColumnSpan < 1 {
		return 1
	}
	return c.ColumnSpan
}

// PlainText returns the cell text with paragraphs separated by newlines
func (c TableCell) PlainText() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.PlainText()
	}
	return strings.Join(parts, "\n")
}

// TableRow is an ordered list of cells. Rows of one table may have different
// total spans.
type TableRow struct {
	Cells []TableCell
}

// Span returns the sum of the cell spans in the row
func (r TableRow) Span() int {
	total := 0
	for _, c := range r.Cells {
		total += c.Span()
	}
	return total
}

// Table represents a table. The first row is treated as the header row
// during layout.
type Table struct {
	Rows            []TableRow
	PageBreakBefore bool
}

// Kind implements Element
func (t *Table) Kind() ElementKind {
	return ElementKindTable
}

// ColumnCount returns the maximum total span across rows
func (t *Table) ColumnCount() int {
	cols := 0
	for _, r := range t.Rows {
		if s := r.Span(); s > cols {
			cols = s
		}
	}
	return cols
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// PlainText returns rows separated by newlines and cells by tabs
func (t *Table) PlainText() string {
	var sb strings.Builder
	for i, r := range t.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, c := range r.Cells {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(c.PlainText())
		}
	}
	return sb.String()
}

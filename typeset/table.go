package typeset

import "github.com/tsawler/docflip/model"

// Table geometry, in points.
const (
	cellPadding = 4.0
	borderWidth = 0.5
)

// cellLayout is a laid-out table cell.
type cellLayout struct {
	x, width float64 // offset from the content left edge
	rows     []row
}

// rowLayout is a laid-out table row. Rows are atomic: they move to the next
// page whole and are never split.
type rowLayout struct {
	cells  []cellLayout
	height float64
}

// table lays out a table with equal column widths. The first row of a table
// with more than one row is its header: it is set in bold, kept with the
// first data row and redrawn at the top of every page the table continues
// onto.
func (p *pass) table(t *model.Table) {
	p.breakBefore(t.PageBreakBefore)

	cols := t.ColumnCount()
	if cols == 0 {
		p.plan.Placements = append(p.plan.Placements, p.placement(p.cursor.Page))
		return
	}
	colWidth := p.contentWidth() / float64(cols)
	hasHeader := len(t.Rows) > 1

	rows := make([]rowLayout, len(t.Rows))
	for i, tr := range t.Rows {
		rows[i] = p.layoutRow(tr, colWidth, hasHeader && i == 0)
	}

	start := -1
	var top float64
	mark := func() {
		if start < 0 {
			start, top = p.cursor.Page, p.cursor.Y
		}
	}

	for i, r := range rows {
		if r.height > p.contentHeight() {
			p.warn("a table row taller than a page was allowed to overflow it")
		}

		switch {
		case hasHeader && i == 0:
			need := r.height + rows[1].height
			if need > p.contentHeight() {
				need = r.height
			}
			p.cursor.Reserve(need)
			mark()
			p.drawTableRow(r)
			continue
		case !p.cursor.Fits(r.height) && !p.cursor.AtTop():
			p.cursor.NextPage()
			if hasHeader {
				if rows[0].height+r.height <= p.contentHeight() {
					p.drawTableRow(rows[0])
				} else {
					p.warn("a table header was not repeated above a row too tall to share a page with it")
				}
			}
		}
		mark()
		p.drawTableRow(r)
	}

	p.plan.Placements = append(p.plan.Placements, Placement{StartPage: start, EndPage: p.cursor.Page, Top: top})
	p.cursor.Advance(tableGap)
}

// layoutRow measures every cell of a row. The row is as tall as its tallest
// cell.
func (p *pass) layoutRow(tr model.TableRow, colWidth float64, header bool) rowLayout {
	var out rowLayout
	minHeight := LineHeight(Style{Size: model.DefaultFontSize}) + 2*cellPadding

	x := 0.0
	for _, cell := range tr.Cells {
		width := colWidth * float64(cell.Span())
		inner := max(width-2*cellPadding, 1)

		var rows []row
		for _, para := range cell.Paragraphs {
			rows = append(rows, p.paragraphRows(para, inner, header)...)
		}

		out.cells = append(out.cells, cellLayout{x: x, width: width, rows: rows})
		out.height = max(out.height, totalHeight(rows)+2*cellPadding)
		x += width
	}
	out.height = max(out.height, minHeight)
	return out
}

// drawTableRow draws the borders and contents of a row at the cursor and
// moves the cursor below it.
func (p *pass) drawTableRow(r rowLayout) {
	top := p.cursor.Y
	left := p.cursor.ContentRect.Left()

	for _, c := range r.cells {
		if p.drawing() {
			p.err = p.canvas.DrawRect(left+c.x, top, c.width, r.height, borderWidth)
		}
		p.cursor.Y = top + cellPadding
		p.drawRows(c.rows, left+c.x+cellPadding, c.width-2*cellPadding)
	}
	p.cursor.Y = top + r.height
}

package typeset

import (
	"fmt"
	"strings"

	"github.com/tsawler/docflip/model"
)

// ListIndent is the indentation per list level, in points.
const ListIndent = 18.0

// Underline geometry as fractions of the font size.
const (
	underlineOffset = 0.12
	underlineWidth  = 0.06
)

// row is one vertical slice of a laid-out paragraph: a line of text or an
// image.
type row struct {
	line   *line
	image  *imageBox
	height float64
	indent float64
	align  model.Alignment
}

func totalHeight(rows []row) float64 {
	h := 0.0
	for _, r := range rows {
		h += r.height
	}
	return h
}

// paragraph lays out a top-level paragraph. A paragraph that fits on a page
// is moved to the next page whole; a taller one continues line by line.
func (p *pass) paragraph(para *model.Paragraph) {
	p.breakBefore(para.PageBreakBefore)

	level := InferHeadingLevel(para)
	before, after := para.SpacingBefore, para.SpacingAfter
	if before == 0 && after == 0 {
		after = defaultParagraphGap
		if level > 0 {
			before = model.HeadingFontSize(level) * headingGapFactor
		}
	}
	if !p.cursor.AtTop() {
		p.cursor.Advance(before)
	}

	rows := p.paragraphRows(para, p.contentWidth(), false)
	height := totalHeight(rows)

	var start int
	var top float64
	if height <= p.contentHeight() {
		p.cursor.Reserve(height)
		start, top = p.cursor.Page, p.cursor.Y
		p.heading(para, level)
		p.drawRows(rows, p.cursor.ContentRect.Left(), p.contentWidth())
	} else {
		for i := range rows {
			p.cursor.Reserve(rows[i].height)
			if i == 0 {
				start, top = p.cursor.Page, p.cursor.Y
				p.heading(para, level)
			}
			p.drawRows(rows[i:i+1], p.cursor.ContentRect.Left(), p.contentWidth())
		}
	}

	p.plan.Placements = append(p.plan.Placements, Placement{StartPage: start, EndPage: p.cursor.Page, Top: top})
	p.cursor.Advance(after)
}

// heading records a heading at the cursor and adds its bookmark.
func (p *pass) heading(para *model.Paragraph, level int) {
	if level <= 0 {
		return
	}
	title := strings.Join(strings.Fields(para.PlainText()), " ")
	if title == "" {
		return
	}
	p.plan.Headings = append(p.plan.Headings, Heading{Level: level, Title: title, Page: p.cursor.Page, Y: p.cursor.Y})
	if p.drawing() {
		p.err = p.canvas.Bookmark(title, level, p.cursor.Y)
	}
}

// paragraphRows breaks a paragraph into rows no wider than width. Text runs
// accumulate until an image run, which flushes the pending text and takes a
// row of its own; text flow resumes below it.
func (p *pass) paragraphRows(para *model.Paragraph, width float64, bold bool) []row {
	indent := 0.0
	var marker string
	if para.IsListItem() {
		indent = ListIndent * float64(max(para.ListLevel, 1))
		if para.ListKind == model.ListNumbered {
			marker = fmt.Sprintf("%d. ", max(para.NumberingIndex, 1))
		} else {
			marker = "• "
		}
	}
	avail := max(width-indent, 1)

	var (
		rows    []row
		spans   []span
		style   = Style{Size: model.DefaultFontSize, Bold: bold}
		pending bool
	)
	flush := func() {
		if !pending {
			return
		}
		for _, l := range breakLines(p.measurer, spans, avail, style) {
			rows = append(rows, row{line: &l, height: l.height, indent: indent, align: para.Alignment})
		}
		spans = nil
		pending = false
	}

	for _, r := range para.Runs {
		if r.IsImage() {
			flush()
			img := p.image(r.Image, avail)
			rows = append(rows, row{image: img, height: img.height, indent: indent, align: para.Alignment})
			continue
		}
		style = runStyle(para, r, bold)
		if marker != "" {
			ms := style
			ms.Underline = false
			spans = append(spans, span{text: marker, style: ms})
			marker = ""
		}
		spans = append(spans, span{text: r.Text, style: style})
		pending = true
	}
	if marker != "" {
		spans = append(spans, span{text: marker, style: style})
		pending = true
	}
	if len(rows) == 0 {
		pending = true
	}
	flush()
	return rows
}

// runStyle returns the style a run is set in. Heading runs without an
// explicit size take the heading size and are bold.
func runStyle(para *model.Paragraph, r model.Run, bold bool) Style {
	s := StyleOf(r)
	if para.HeadingLevel > 0 && r.FontSize <= 0 {
		s.Size = model.HeadingFontSize(para.HeadingLevel)
		s.Bold = true
	}
	if bold {
		s.Bold = true
	}
	return s
}

// drawRows draws rows from the cursor down, advancing the cursor past each.
// x and width describe the horizontal box the rows are aligned in.
func (p *pass) drawRows(rows []row, x, width float64) {
	for _, r := range rows {
		if p.drawing() {
			if r.image != nil {
				p.drawImage(r, x, width)
			} else {
				p.drawLine(r, x, width)
			}
		}
		p.cursor.Advance(r.height)
	}
}

func (p *pass) drawLine(r row, x, width float64) {
	l := r.line
	avail := width - r.indent
	left := x + r.indent

	extra := 0.0
	switch r.align {
	case model.AlignCenter:
		left += (avail - l.width) / 2
	case model.AlignRight:
		left += avail - l.width
	case model.AlignJustify:
		if n := l.spaces(); n > 0 && !l.last {
			extra = (avail - l.width) / float64(n)
		}
	}

	top := p.cursor.Y
	baseline := top + (l.height-(l.ascent+l.descent))/2 + l.ascent

	cx := left
	var chunk strings.Builder
	var chunkStyle Style
	chunkX, chunkW := 0.0, 0.0
	emit := func() {
		if chunk.Len() == 0 || p.err != nil {
			chunk.Reset()
			return
		}
		p.err = p.canvas.DrawText(chunkX, baseline, chunk.String(), chunkStyle)
		if p.err == nil && chunkStyle.Underline {
			uy := baseline + chunkStyle.Size*underlineOffset
			p.err = p.canvas.DrawLine(chunkX, uy, chunkX+chunkW, uy, chunkStyle.Size*underlineWidth, chunkStyle.Color)
		}
		chunk.Reset()
	}

	for _, f := range l.frags {
		switch {
		case f.tab:
			emit()
			cx += f.width
			continue
		case f.space && extra > 0:
			emit()
			cx += f.width + extra
			continue
		}
		if chunk.Len() > 0 && (f.style != chunkStyle || extra > 0) {
			emit()
		}
		if chunk.Len() == 0 {
			chunkX, chunkW, chunkStyle = cx, 0, f.style
		}
		chunk.WriteString(f.text)
		chunkW += f.width
		cx += f.width
	}
	emit()
}

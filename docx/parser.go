package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/docflip/model"
	"golang.org/x/net/html/charset"
)

// emuPerInch is the number of English Metric Units in one inch.
const emuPerInch = 914400

// tag is the closed set of elements the parser understands. Everything else
// is tagUnknown and is walked through transparently.
type tag int

const (
	tagUnknown tag = iota
	tagParagraph
	tagParagraphProps
	tagParagraphStyle
	tagJustification
	tagListLevel
	tagNumberingID
	tagSpacing
	tagOutlineLevel
	tagPageBreakBefore
	tagRun
	tagRunProps
	tagBold
	tagItalic
	tagUnderline
	tagFontSize
	tagFonts
	tagColor
	tagText
	tagTab
	tagBreak
	tagCarriageReturn
	tagDrawing
	tagInline
	tagAnchor
	tagExtent
	tagDocProps
	tagBlip
	tagTable
	tagTableRow
	tagTableCell
	tagGridSpan

	// swallowed with a warning
	tagDeletion
	tagFootnoteRef
	tagEndnoteRef
	tagCommentRef
	tagHeaderRef
	tagFooterRef
	tagAlternateContent
	tagPicture
	tagObject

	// swallowed silently
	tagInstrText
	tagContentControlProps
)

var vocabulary = map[xml.Name]tag{
	{Space: nsW, Local: "p"}:                 tagParagraph,
	{Space: nsW, Local: "pPr"}:               tagParagraphProps,
	{Space: nsW, Local: "pStyle"}:            tagParagraphStyle,
	{Space: nsW, Local: "jc"}:                tagJustification,
	{Space: nsW, Local: "ilvl"}:              tagListLevel,
	{Space: nsW, Local: "numId"}:             tagNumberingID,
	{Space: nsW, Local: "spacing"}:           tagSpacing,
	{Space: nsW, Local: "outlineLvl"}:        tagOutlineLevel,
	{Space: nsW, Local: "pageBreakBefore"}:   tagPageBreakBefore,
	{Space: nsW, Local: "r"}:                 tagRun,
	{Space: nsW, Local: "rPr"}:               tagRunProps,
	{Space: nsW, Local: "b"}:                 tagBold,
	{Space: nsW, Local: "i"}:                 tagItalic,
	{Space: nsW, Local: "u"}:                 tagUnderline,
	{Space: nsW, Local: "sz"}:                tagFontSize,
	{Space: nsW, Local: "rFonts"}:            tagFonts,
	{Space: nsW, Local: "color"}:             tagColor,
	{Space: nsW, Local: "t"}:                 tagText,
	{Space: nsW, Local: "tab"}:               tagTab,
	{Space: nsW, Local: "br"}:                tagBreak,
	{Space: nsW, Local: "cr"}:                tagCarriageReturn,
	{Space: nsW, Local: "drawing"}:           tagDrawing,
	{Space: nsWP, Local: "inline"}:           tagInline,
	{Space: nsWP, Local: "anchor"}:           tagAnchor,
	{Space: nsWP, Local: "extent"}:           tagExtent,
	{Space: nsWP, Local: "docPr"}:            tagDocProps,
	{Space: nsA, Local: "blip"}:              tagBlip,
	{Space: nsW, Local: "tbl"}:               tagTable,
	{Space: nsW, Local: "tr"}:                tagTableRow,
	{Space: nsW, Local: "tc"}:                tagTableCell,
	{Space: nsW, Local: "gridSpan"}:          tagGridSpan,
	{Space: nsW, Local: "del"}:               tagDeletion,
	{Space: nsW, Local: "moveFrom"}:          tagDeletion,
	{Space: nsW, Local: "footnoteReference"}: tagFootnoteRef,
	{Space: nsW, Local: "endnoteReference"}:  tagEndnoteRef,
	{Space: nsW, Local: "commentReference"}:  tagCommentRef,
	{Space: nsW, Local: "headerReference"}:   tagHeaderRef,
	{Space: nsW, Local: "footerReference"}:   tagFooterRef,
	{Space: nsMC, Local: "AlternateContent"}: tagAlternateContent,
	{Space: nsW, Local: "pict"}:              tagPicture,
	{Space: nsW, Local: "object"}:            tagObject,
	{Space: nsW, Local: "instrText"}:         tagInstrText,
	{Space: nsW, Local: "sdtPr"}:             tagContentControlProps,
}

// unsupported lists the constructs that are skipped with a warning. Each
// warning is reported once per document.
var unsupported = map[tag]string{
	tagDeletion:         "tracked deletions were skipped",
	tagFootnoteRef:      "footnotes are not rendered",
	tagEndnoteRef:       "endnotes are not rendered",
	tagCommentRef:       "comments are not rendered",
	tagHeaderRef:        "headers are not rendered",
	tagFooterRef:        "footers are not rendered",
	tagAlternateContent: "alternate content (shapes, SmartArt, charts) was skipped",
	tagPicture:          "legacy VML graphics were skipped",
	tagObject:           "embedded objects were skipped",
}

// lookup maps an element name to its tag
func lookup(name xml.Name) tag {
	if ns, ok := strictNamespaces[name.Space]; ok {
		name.Space = ns
	}
	return vocabulary[name]
}

// ParseOption configures a Parse call.
type ParseOption func(*parser)

// WithNumbering resolves list items against numbering definitions.
func WithNumbering(n *Numbering) ParseOption {
	return func(p *parser) { p.numbering = n }
}

// WithStyles resolves heading levels of custom paragraph styles.
func WithStyles(s *StyleSheet) ParseOption {
	return func(p *parser) { p.styles = s }
}

// Parse builds a document from the main document part in a single streaming
// pass. rels resolves image references and may be nil.
//
// Unsupported constructs never fail the parse; they are returned as
// deduplicated warnings. Malformed XML fails with ErrParse.
func Parse(r io.Reader, rels *Relationships, opts ...ParseOption) (*model.Document, []string, error) {
	p := &parser{
		rels:     rels,
		doc:      model.NewDocument(),
		counters: make(listCounters),
		warned:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.dec = xml.NewDecoder(r)
	p.dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.warnings, fmt.Errorf("%w: %v", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.start(t); err != nil {
				return nil, p.warnings, fmt.Errorf("%w: %v", ErrParse, err)
			}
		case xml.EndElement:
			p.end()
		case xml.CharData:
			p.chars(t)
		}
	}

	if len(p.stack) != 0 {
		return nil, p.warnings, fmt.Errorf("%w: unexpected end of document", ErrParse)
	}

	return p.doc, p.warnings, nil
}

// parser holds the mutable state of one Parse call.
type parser struct {
	rels      *Relationships
	numbering *Numbering
	styles    *StyleSheet

	dec   *xml.Decoder
	stack []tag
	doc   *model.Document

	// current paragraph
	para      *model.Paragraph
	sized     []bool // per run: font size set explicitly
	paraStyle string
	numID     string
	ilvl      int
	outline   string
	breakHere bool

	// current run
	run      *model.Run
	runSized bool
	image    *model.InlineImage

	// current table; nested tables only raise depth
	table      *model.Table
	row        *model.TableRow
	cell       *model.TableCell
	tableDepth int

	pendingBreak bool
	counters     listCounters

	warnings []string
	warned   map[string]bool
}

// warn records a warning once
func (p *parser) warn(msg string) {
	if p.warned[msg] {
		return
	}
	p.warned[msg] = true
	p.warnings = append(p.warnings, msg)
}

// top returns the innermost open element
func (p *parser) top() tag {
	if len(p.stack) == 0 {
		return tagUnknown
	}
	return p.stack[len(p.stack)-1]
}

// inside reports whether an element with the given tag is open
func (p *parser) inside(t tag) bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i] == t {
			return true
		}
	}
	return false
}

func (p *parser) start(se xml.StartElement) error {
	t := lookup(se.Name)
	parent := p.top()

	if msg, ok := unsupported[t]; ok {
		p.warn(msg)
		return p.dec.Skip()
	}
	switch t {
	case tagInstrText, tagContentControlProps:
		return p.dec.Skip()
	case tagRunProps:
		// paragraph mark formatting
		if parent == tagParagraphProps {
			return p.dec.Skip()
		}
	case tagParagraph, tagTable:
		if p.inside(tagDrawing) {
			p.warn("text boxes were skipped")
			return p.dec.Skip()
		}
	}

	p.stack = append(p.stack, t)

	switch t {
	case tagParagraph:
		p.beginParagraph()
	case tagParagraphStyle:
		p.paraStyle = attr(se, "val")
	case tagJustification:
		if parent == tagParagraphProps && p.para != nil {
			p.para.Alignment = model.ParseAlignment(attr(se, "val"))
		}
	case tagListLevel:
		if n, err := strconv.Atoi(attr(se, "val")); err == nil && n >= 0 && n < maxListLevel {
			p.ilvl = n
		}
	case tagNumberingID:
		p.numID = attr(se, "val")
	case tagSpacing:
		if parent == tagParagraphProps && p.para != nil {
			p.para.SpacingBefore = twipsToPoints(attr(se, "before"))
			p.para.SpacingAfter = twipsToPoints(attr(se, "after"))
		}
	case tagOutlineLevel:
		p.outline = attr(se, "val")
	case tagPageBreakBefore:
		if p.para != nil && onOff(se) {
			p.para.PageBreakBefore = true
		}
	case tagRun:
		if p.para != nil {
			p.run = &model.Run{}
			p.runSized = false
		}
	case tagBold, tagItalic, tagUnderline, tagFontSize, tagFonts, tagColor:
		if parent == tagRunProps && p.run != nil {
			p.runProperty(t, se)
		}
	case tagTab:
		if p.run != nil && parent == tagRun {
			p.run.Text += "\t"
		}
	case tagBreak:
		p.lineBreak(se)
	case tagCarriageReturn:
		if p.run != nil {
			p.run.Text += "\n"
		}
	case tagDrawing:
		if p.run != nil {
			p.image = &model.InlineImage{}
		}
	case tagAnchor:
		p.warn("floating images were placed inline")
	case tagExtent:
		if p.image != nil {
			p.image.WidthPt = emuToPoints(attr(se, "cx"))
			p.image.HeightPt = emuToPoints(attr(se, "cy"))
		}
	case tagDocProps:
		if p.image != nil {
			p.image.AltText = attr(se, "descr")
		}
	case tagBlip:
		if p.image != nil {
			p.image.RelationshipID = attr(se, "embed")
			if p.image.RelationshipID == "" && attr(se, "link") != "" {
				p.warn("linked images were skipped")
			}
		}
	case tagTable:
		p.beginTable()
	case tagTableRow:
		if p.tableDepth == 1 && p.table != nil {
			p.row = &model.TableRow{}
		}
	case tagTableCell:
		if p.tableDepth == 1 && p.row != nil {
			p.cell = &model.TableCell{ColumnSpan: 1}
		}
	case tagGridSpan:
		if p.tableDepth == 1 && p.cell != nil {
			if n, err := strconv.Atoi(attr(se, "val")); err == nil && n > 1 {
				p.cell.ColumnSpan = n
			}
		}
	}

	return nil
}

func (p *parser) end() {
	if len(p.stack) == 0 {
		return
	}
	t := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	switch t {
	case tagParagraph:
		p.endParagraph()
	case tagRun:
		p.endRun()
	case tagDrawing:
		p.endDrawing()
	case tagTableCell:
		if p.tableDepth == 1 && p.cell != nil && p.row != nil {
			p.row.Cells = append(p.row.Cells, *p.cell)
			p.cell = nil
		}
	case tagTableRow:
		if p.tableDepth == 1 && p.row != nil && p.table != nil {
			p.table.Rows = append(p.table.Rows, *p.row)
			p.row = nil
		}
	case tagTable:
		p.endTable()
	}
}

func (p *parser) chars(data xml.CharData) {
	if p.top() == tagText && p.run != nil {
		p.run.Text += string(data)
	}
}

func (p *parser) runProperty(t tag, se xml.StartElement) {
	switch t {
	case tagBold:
		p.run.Bold = onOff(se)
	case tagItalic:
		p.run.Italic = onOff(se)
	case tagUnderline:
		val := attr(se, "val")
		p.run.Underline = val != "none" && val != "0" && val != "false"
	case tagFontSize:
		if size := halfPointsToPoints(attr(se, "val")); size > 0 {
			p.run.FontSize = size
			p.runSized = true
		}
	case tagFonts:
		for _, name := range []string{"ascii", "hAnsi", "cs"} {
			if v := attr(se, name); v != "" {
				p.run.FontFamily = v
				break
			}
		}
	case tagColor:
		if v := attr(se, "val"); v != "" && !strings.EqualFold(v, "auto") {
			p.run.Color = strings.ToUpper(v)
		}
	}
}

func (p *parser) lineBreak(se xml.StartElement) {
	switch attr(se, "type") {
	case "page":
		p.pendingBreak = true
		p.breakHere = true
	case "column":
		// single-column output
	default:
		if p.run != nil {
			p.run.Text += "\n"
		}
	}
}

func (p *parser) beginParagraph() {
	p.para = &model.Paragraph{PageBreakBefore: p.pendingBreak}
	p.pendingBreak = false
	p.sized = p.sized[:0]
	p.paraStyle = ""
	p.numID = ""
	p.ilvl = 0
	p.outline = ""
	p.breakHere = false
}

func (p *parser) endParagraph() {
	para := p.para
	p.para = nil
	if para == nil {
		return
	}

	// A paragraph that only carries a page break is a break marker.
	if len(para.Runs) == 0 && p.breakHere {
		p.pendingBreak = p.pendingBreak || para.PageBreakBefore
		return
	}

	p.applyHeading(para)
	p.applyList(para)

	if p.cell != nil {
		p.cell.Paragraphs = append(p.cell.Paragraphs, para)
		return
	}
	p.doc.Append(para)
}

// applyHeading sets the heading level. Runs without an explicit size take
// the heading size and become bold.
func (p *parser) applyHeading(para *model.Paragraph) {
	level := p.styles.HeadingLevel(p.paraStyle)
	if level == 0 {
		level = outlineHeadingLevel(p.outline)
	}
	if level == 0 {
		return
	}

	para.HeadingLevel = level
	size := model.HeadingFontSize(level)
	for i := range para.Runs {
		if para.Runs[i].Image != nil || p.sized[i] {
			continue
		}
		para.Runs[i].FontSize = size
		para.Runs[i].Bold = true
	}
}

func (p *parser) applyList(para *model.Paragraph) {
	if p.numID != "" && p.numID != "0" {
		kind, start := p.numbering.Resolve(p.numID, p.ilvl)
		para.ListKind = kind
		para.ListLevel = p.ilvl + 1
		if kind == model.ListNumbered {
			para.NumberingIndex = p.counters.next(p.numID, p.ilvl, start)
		}
		return
	}

	style := strings.ToLower(p.paraStyle)
	switch {
	case strings.HasPrefix(style, "listnumber"):
		para.ListKind = model.ListNumbered
		para.ListLevel = 1
		para.NumberingIndex = p.counters.next("style:"+style, 0, 1)
	case strings.HasPrefix(style, "listbullet"):
		para.ListKind = model.ListBullet
		para.ListLevel = 1
	}
}

func (p *parser) endRun() {
	if p.run != nil && p.para != nil && p.run.Text != "" {
		p.appendRun(*p.run, p.runSized)
	}
	p.run = nil
}

func (p *parser) appendRun(r model.Run, sized bool) {
	p.para.Runs = append(p.para.Runs, r)
	p.sized = append(p.sized, sized)
}

// endDrawing flushes the text collected so far in the run, then appends the
// image as its own run.
func (p *parser) endDrawing() {
	img := p.image
	p.image = nil
	if img == nil || p.run == nil || p.para == nil {
		return
	}
	if img.RelationshipID == "" {
		p.warn("images without an embedded part were skipped")
		return
	}
	if p.rels != nil {
		if _, ok := p.rels.Get(img.RelationshipID); !ok {
			p.warn(fmt.Sprintf("image relationship %s not found", img.RelationshipID))
		}
	}

	if p.run.Text != "" {
		p.appendRun(*p.run, p.runSized)
		p.run.Text = ""
	}
	p.appendRun(model.Run{Image: img}, true)
}

func (p *parser) beginTable() {
	p.tableDepth++
	if p.tableDepth > 1 {
		p.warn("nested tables were flattened into their enclosing cell")
		return
	}
	p.table = &model.Table{PageBreakBefore: p.pendingBreak}
	p.pendingBreak = false
}

func (p *parser) endTable() {
	if p.tableDepth == 1 && p.table != nil {
		if len(p.table.Rows) > 0 {
			p.doc.Append(p.table)
		}
		p.table = nil
		p.row = nil
		p.cell = nil
	}
	p.tableDepth--
}

// attr returns an attribute value by local name
func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// onOff interprets a toggle property such as <w:b/> or <w:b w:val="0"/>.
func onOff(se xml.StartElement) bool {
	switch attr(se, "val") {
	case "0", "false", "off", "none":
		return false
	default:
		return true
	}
}

// halfPointsToPoints converts a w:sz value to points
func halfPointsToPoints(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v / 2
}

// twipsToPoints converts twentieths of a point to points
func twipsToPoints(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v / 20
}

// emuToPoints converts English Metric Units to points
func emuToPoints(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v / emuPerInch * 72
}

package typeset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/docflip/model"
)

type mediaMap map[string][]byte

func (m mediaMap) Media(relID string) ([]byte, error) {
	data, ok := m[relID]
	if !ok {
		return nil, fmt.Errorf("media %s not found", relID)
	}
	return data, nil
}

func newTestEngine(size PageSize, opts ...Option) *Engine {
	return NewEngine(size, append([]Option{WithMeasurer(fixedMeasurer{})}, opts...)...)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func heading(text string, level int) *model.Paragraph {
	p := model.NewParagraph(text)
	p.HeadingLevel = level
	return p
}

func simpleTable(rows, cols int, header ...string) *model.Table {
	t := &model.Table{}
	for r := 0; r < rows; r++ {
		var row model.TableRow
		for c := 0; c < cols; c++ {
			text := fmt.Sprintf("r%dc%d", r, c)
			if r == 0 && c < len(header) {
				text = header[c]
			}
			row.Cells = append(row.Cells, model.TableCell{Paragraphs: []*model.Paragraph{model.NewParagraph(text)}})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func texts(r *Recorder, want string) []Op {
	var out []Op
	for _, op := range r.Texts() {
		if op.Text == want {
			out = append(out, op)
		}
	}
	return out
}

func TestEmptyDocumentHasOnePage(t *testing.T) {
	e := newTestEngine(A4)

	plan, err := e.Measure(model.NewDocument())
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if plan.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", plan.PageCount)
	}

	rec := &Recorder{}
	if _, err := e.Draw(nil, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if rec.PageCount() != 1 {
		t.Errorf("canvas pages = %d, want 1", rec.PageCount())
	}
}

func TestSmallDocumentFitsOnOnePage(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(heading("Title", 1))
	doc.Append(model.NewParagraph("First body paragraph."))
	doc.Append(model.NewParagraph("Second body paragraph."))
	doc.Append(simpleTable(2, 2, "A", "B"))

	rec := &Recorder{}
	plan, err := NewEngine(A4).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if plan.PageCount != 1 || rec.PageCount() != 1 {
		t.Errorf("pages = %d (canvas %d), want 1", plan.PageCount, rec.PageCount())
	}
	if len(plan.Placements) != 4 {
		t.Fatalf("placements = %d, want 4", len(plan.Placements))
	}
	if len(plan.Headings) != 1 || plan.Headings[0].Title != "Title" || plan.Headings[0].Level != 1 {
		t.Errorf("headings = %+v", plan.Headings)
	}

	title := texts(rec, "Title")
	if len(title) != 1 {
		t.Fatalf("Title drawn %d times", len(title))
	}
	if title[0].Style.Size != 24 || !title[0].Style.Bold {
		t.Errorf("title style = %+v, want 24pt bold", title[0].Style)
	}
}

func TestFiftyParagraphsOverflowLetter(t *testing.T) {
	doc := model.NewDocument()
	for i := 0; i < 50; i++ {
		doc.Append(model.NewParagraph(fmt.Sprintf("Body paragraph number %d.", i+1)))
	}

	rec := &Recorder{}
	plan, err := NewEngine(Letter).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if plan.PageCount <= 1 {
		t.Errorf("PageCount = %d, want more than 1", plan.PageCount)
	}
	if rec.PageCount() != plan.PageCount {
		t.Errorf("canvas pages = %d, plan pages = %d", rec.PageCount(), plan.PageCount)
	}

	bottom := Letter.Height - DefaultMargin
	for _, op := range rec.Texts() {
		if op.Y > bottom {
			t.Errorf("text %q drawn below the content area at y=%v", op.Text, op.Y)
		}
	}
}

func TestMeasureAndDrawAgree(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(heading("Report", 1))
	for i := 0; i < 30; i++ {
		doc.Append(model.NewParagraph(strings.Repeat("lorem ipsum dolor ", 10+i%7)))
	}
	doc.Append(simpleTable(40, 3, "Name", "Kind", "Value"))
	broken := model.NewParagraph("After a break")
	broken.PageBreakBefore = true
	doc.Append(broken)
	doc.Append(&model.Paragraph{Runs: []model.Run{{Image: &model.InlineImage{RelationshipID: "rId404"}}}})
	doc.Append(model.NewParagraph(strings.Repeat("word ", 4000)))

	for _, size := range []PageSize{Letter, Legal, A4} {
		t.Run(size.Name, func(t *testing.T) {
			e := NewEngine(size)
			measured, err := e.Measure(doc)
			if err != nil {
				t.Fatalf("Measure: %v", err)
			}
			rec := &Recorder{}
			drawn, err := e.Draw(doc, rec)
			if err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if !reflect.DeepEqual(measured, drawn) {
				t.Errorf("plans differ:\nmeasure %+v\ndraw    %+v", measured, drawn)
			}
			if rec.PageCount() != drawn.PageCount {
				t.Errorf("canvas pages = %d, plan pages = %d", rec.PageCount(), drawn.PageCount)
			}
		})
	}
}

func TestInferHeadingLevel(t *testing.T) {
	tests := []struct {
		name string
		para *model.Paragraph
		want int
	}{
		{"24pt run", &model.Paragraph{Runs: []model.Run{{Text: "Big", FontSize: 24}}}, 1},
		{"16pt run", &model.Paragraph{Runs: []model.Run{{Text: "Medium", FontSize: 16}}}, 2},
		{"body", model.NewParagraph("Body"), 0},
		{"explicit", heading("Explicit", 3), 3},
		{"list item", &model.Paragraph{Runs: []model.Run{{Text: "Item", FontSize: 24}}, ListKind: model.ListBullet, ListLevel: 1}, 0},
		{"blank", &model.Paragraph{Runs: []model.Run{{Text: "  ", FontSize: 24}}}, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferHeadingLevel(tt.para); got != tt.want {
				t.Errorf("InferHeadingLevel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInferredHeadingBecomesBookmark(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: []model.Run{{Text: "Large Text", FontSize: 24}}})

	rec := &Recorder{}
	plan, err := newTestEngine(A4).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(plan.Headings) != 1 || plan.Headings[0].Level != 1 {
		t.Fatalf("headings = %+v, want one level 1 heading", plan.Headings)
	}

	var marks []Op
	for _, op := range rec.Ops {
		if op.Kind == OpBookmark {
			marks = append(marks, op)
		}
	}
	if len(marks) != 1 || marks[0].Text != "Large Text" || marks[0].Level != 1 {
		t.Errorf("bookmarks = %+v", marks)
	}
}

func TestPageBreakBefore(t *testing.T) {
	first := model.NewParagraph("first")
	first.PageBreakBefore = true
	second := model.NewParagraph("second")
	second.PageBreakBefore = true

	doc := model.NewDocument()
	doc.Append(first)
	doc.Append(second)

	plan, err := newTestEngine(A4).Measure(doc)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if plan.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", plan.PageCount)
	}
	if plan.Placements[0].StartPage != 0 {
		t.Errorf("a break before the first element must not add a page")
	}
	if plan.Placements[1].StartPage != 1 {
		t.Errorf("second paragraph on page %d, want 1", plan.Placements[1].StartPage)
	}
}

func TestLongParagraphContinuesAcrossPages(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(model.NewParagraph("intro"))
	doc.Append(model.NewParagraph(strings.Repeat("word ", 5000)))

	rec := &Recorder{}
	plan, err := newTestEngine(Letter).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	long := plan.Placements[1]
	if long.StartPage != 0 {
		t.Errorf("long paragraph starts on page %d, want 0", long.StartPage)
	}
	if long.EndPage < 2 {
		t.Errorf("long paragraph ends on page %d, want at least 2", long.EndPage)
	}

	perPage := make(map[int]int)
	for _, op := range rec.Texts() {
		perPage[op.Page]++
	}
	for page := 0; page < plan.PageCount; page++ {
		if perPage[page] == 0 {
			t.Errorf("page %d has no text", page)
		}
	}
}

func TestListMarkers(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: []model.Run{{Text: "Item"}}, ListKind: model.ListNumbered, ListLevel: 1, NumberingIndex: 3})
	doc.Append(&model.Paragraph{Runs: []model.Run{{Text: "Sub"}}, ListKind: model.ListBullet, ListLevel: 2})

	rec := &Recorder{}
	if _, err := newTestEngine(Letter).Draw(doc, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	ops := rec.Texts()
	if len(ops) != 2 {
		t.Fatalf("got %d text ops, want 2: %+v", len(ops), ops)
	}
	if ops[0].Text != "3. Item" || ops[0].X != DefaultMargin+ListIndent {
		t.Errorf("numbered item = %q at x=%v", ops[0].Text, ops[0].X)
	}
	if ops[1].Text != "• Sub" || ops[1].X != DefaultMargin+2*ListIndent {
		t.Errorf("bullet item = %q at x=%v", ops[1].Text, ops[1].X)
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		align model.Alignment
		wantX float64
	}{
		{model.AlignLeft, 56},
		{model.AlignCenter, 56 + (500-24)/2.0},
		{model.AlignRight, 56 + 500 - 24},
		{model.AlignJustify, 56},
	}

	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			doc := model.NewDocument()
			doc.Append(&model.Paragraph{Runs: []model.Run{{Text: "abcd"}}, Alignment: tt.align})

			rec := &Recorder{}
			if _, err := newTestEngine(Letter).Draw(doc, rec); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if got := rec.Texts()[0].X; got != tt.wantX {
				t.Errorf("x = %v, want %v", got, tt.wantX)
			}
		})
	}
}

func TestJustifySpreadsAllButLastLine(t *testing.T) {
	words := strings.TrimSpace(strings.Repeat("aaaa ", 20))
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: []model.Run{{Text: words}}, Alignment: model.AlignJustify})

	rec := &Recorder{}
	if _, err := newTestEngine(Letter).Draw(doc, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	ops := rec.Texts()
	// 16 words fit the first line and are drawn one by one; the last line is
	// drawn as a single left-aligned run.
	if len(ops) != 17 {
		t.Fatalf("got %d text ops, want 17", len(ops))
	}
	if right := ops[15].X + 24; math.Abs(right-556) > 1e-9 {
		t.Errorf("first line ends at %v, want 556", right)
	}
	if ops[16].Text != "aaaa aaaa aaaa aaaa" || ops[16].X != 56 {
		t.Errorf("last line = %q at x=%v", ops[16].Text, ops[16].X)
	}
}

func TestUnderlineDrawsRule(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: []model.Run{{Text: "under", Underline: true}}})

	rec := &Recorder{}
	if _, err := newTestEngine(A4).Draw(doc, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	var rules []Op
	for _, op := range rec.Ops {
		if op.Kind == OpLine {
			rules = append(rules, op)
		}
	}
	if len(rules) != 1 || rules[0].W != 30 {
		t.Errorf("underline rules = %+v, want one 30pt rule", rules)
	}
}

func TestImageScaledToContentWidth(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: []model.Run{{Image: &model.InlineImage{RelationshipID: "rId1"}}}})

	rec := &Recorder{}
	plan, err := newTestEngine(Letter, WithImages(mediaMap{"rId1": encodePNG(t, 2000, 100)})).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(plan.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", plan.Warnings)
	}

	var img *Op
	for i := range rec.Ops {
		if rec.Ops[i].Kind == OpImage {
			img = &rec.Ops[i]
		}
	}
	if img == nil {
		t.Fatal("no image drawn")
	}
	if img.W != 500 || math.Abs(img.H-25) > 1e-9 {
		t.Errorf("image size = %vx%v, want 500x25", img.W, img.H)
	}
}

func TestImageFlushesPendingText(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{
		Alignment: model.AlignCenter,
		Runs: []model.Run{
			{Text: "before"},
			{Image: &model.InlineImage{RelationshipID: "rId1", WidthPt: 100, HeightPt: 50}},
			{Text: "after"},
		},
	})

	rec := &Recorder{}
	if _, err := newTestEngine(Letter, WithImages(mediaMap{"rId1": encodePNG(t, 10, 10)})).Draw(doc, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	var before, after, img Op
	for _, op := range rec.Ops {
		switch {
		case op.Kind == OpImage:
			img = op
		case op.Kind == OpText && op.Text == "before":
			before = op
		case op.Kind == OpText && op.Text == "after":
			after = op
		}
	}
	if img.W != 100 || img.H != 50 {
		t.Fatalf("image size = %vx%v, want the declared 100x50", img.W, img.H)
	}
	if img.X != 56+(500-100)/2.0 {
		t.Errorf("centered image x = %v", img.X)
	}
	if !(before.Y < img.Y && after.Y > img.Y+img.H) {
		t.Errorf("order broken: before y=%v, image y=%v..%v, after y=%v", before.Y, img.Y, img.Y+img.H, after.Y)
	}
}

func TestMissingImageDrawsPlaceholder(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(&model.Paragraph{Runs: []model.Run{{Image: &model.InlineImage{RelationshipID: "rId7", WidthPt: 80, HeightPt: 40}}}})
	doc.Append(&model.Paragraph{Runs: []model.Run{{Image: &model.InlineImage{RelationshipID: "rId7"}}}})

	rec := &Recorder{}
	plan, err := newTestEngine(A4).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "rId7") {
		t.Errorf("warnings = %v, want one about rId7", plan.Warnings)
	}

	var rects []Op
	for _, op := range rec.Ops {
		if op.Kind == OpRect {
			rects = append(rects, op)
		}
		if op.Kind == OpImage {
			t.Error("a missing image must not be drawn")
		}
	}
	if len(rects) != 2 {
		t.Fatalf("placeholders = %d, want 2", len(rects))
	}
	if rects[0].W != 80 || rects[0].H != 40 {
		t.Errorf("placeholder with extent = %vx%v, want 80x40", rects[0].W, rects[0].H)
	}
	if rects[1].W != placeholderWidth || rects[1].H != placeholderHeight {
		t.Errorf("placeholder without extent = %vx%v", rects[1].W, rects[1].H)
	}
}

func TestTableHeaderRepeatsOnEveryPage(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(simpleTable(81, 2, "Name", "Value"))

	rec := &Recorder{}
	plan, err := newTestEngine(Letter).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if plan.PageCount < 2 {
		t.Fatalf("PageCount = %d, want the table to span pages", plan.PageCount)
	}

	headers := texts(rec, "Name")
	if len(headers) != plan.PageCount {
		t.Fatalf("header drawn %d times over %d pages", len(headers), plan.PageCount)
	}
	for i, op := range headers {
		if op.Page != i {
			t.Errorf("header %d on page %d", i, op.Page)
		}
		if op.Y > DefaultMargin+30 {
			t.Errorf("header on page %d at y=%v, want top of page", op.Page, op.Y)
		}
		if !op.Style.Bold {
			t.Errorf("header on page %d not bold", op.Page)
		}
	}

	// Rows are atomic: every data row is drawn exactly once.
	for r := 1; r < 81; r++ {
		if n := len(texts(rec, fmt.Sprintf("r%dc0", r))); n != 1 {
			t.Errorf("row %d drawn %d times", r, n)
		}
	}
}

// cellOf returns a one-cell row holding one paragraph per line.
func cellOf(lines ...string) model.TableRow {
	var cell model.TableCell
	for _, l := range lines {
		cell.Paragraphs = append(cell.Paragraphs, model.NewParagraph(l))
	}
	return model.TableRow{Cells: []model.TableCell{cell}}
}

// rowHeight draws a single-row table and reports the height of its cell.
func rowHeight(t *testing.T, row model.TableRow) float64 {
	t.Helper()
	doc := model.NewDocument()
	doc.Append(&model.Table{Rows: []model.TableRow{row}})
	rec := &Recorder{}
	if _, err := newTestEngine(Letter).Draw(doc, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for _, op := range rec.Ops {
		if op.Kind == OpRect {
			return op.H
		}
	}
	t.Fatal("no cell drawn")
	return 0
}

func TestTableHeaderSkippedAboveNearlyFullPageRow(t *testing.T) {
	content := Letter.ContentRect(UniformMargins(DefaultMargin))
	header := cellOf("Name", "(units)")

	// The tallest row that still fits a page on its own.
	var tall model.TableRow
	var lines []string
	for i := 0; ; i++ {
		next := cellOf(append(lines, fmt.Sprintf("line %d", i))...)
		if rowHeight(t, next) > content.Height {
			break
		}
		lines = append(lines, fmt.Sprintf("line %d", i))
		tall = next
	}
	if len(lines) == 0 {
		t.Fatal("no row fits a page")
	}
	if rowHeight(t, header)+rowHeight(t, tall) <= content.Height {
		t.Fatal("header and tall row fit together; the layout under test is not reached")
	}

	doc := model.NewDocument()
	doc.Append(&model.Table{Rows: []model.TableRow{header, cellOf("first"), tall}})
	rec := &Recorder{}
	plan, err := newTestEngine(Letter).Draw(doc, rec)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if plan.PageCount != 2 {
		t.Fatalf("PageCount = %d, want 2", plan.PageCount)
	}
	for _, op := range rec.Ops {
		if op.Kind == OpRect && op.Y+op.H > content.Bottom()+1e-6 {
			t.Errorf("cell on page %d ends at %v, below the content bottom %v", op.Page, op.Y+op.H, content.Bottom())
		}
	}
	if n := len(texts(rec, "Name")); n != 1 {
		t.Errorf("header drawn %d times, want once", n)
	}
	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "header was not repeated") {
		t.Errorf("warnings = %q", plan.Warnings)
	}
}

func TestTableColumnSpan(t *testing.T) {
	table := &model.Table{Rows: []model.TableRow{
		{Cells: []model.TableCell{{Paragraphs: []*model.Paragraph{model.NewParagraph("wide")}, ColumnSpan: 2}}},
		{Cells: []model.TableCell{
			{Paragraphs: []*model.Paragraph{model.NewParagraph("a")}},
			{Paragraphs: []*model.Paragraph{model.NewParagraph("b")}},
		}},
	}}
	doc := model.NewDocument()
	doc.Append(table)

	rec := &Recorder{}
	if _, err := newTestEngine(Letter).Draw(doc, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	var widths []float64
	for _, op := range rec.Ops {
		if op.Kind == OpRect {
			widths = append(widths, op.W)
		}
	}
	if !reflect.DeepEqual(widths, []float64{500, 250, 250}) {
		t.Errorf("cell widths = %v, want [500 250 250]", widths)
	}
	if b := texts(rec, "b"); len(b) != 1 || b[0].X != 56+250+cellPadding {
		t.Errorf("second column text = %+v", b)
	}
}

type failingCanvas struct {
	Recorder
}

func (f *failingCanvas) DrawText(x, y float64, text string, style Style) error {
	return errors.New("disk full")
}

func TestDrawWrapsCanvasErrors(t *testing.T) {
	doc := model.NewDocument()
	doc.Append(model.NewParagraph("hello"))

	_, err := newTestEngine(A4).Draw(doc, &failingCanvas{})
	if !errors.Is(err, ErrRender) {
		t.Fatalf("err = %v, want ErrRender", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want the canvas message", err)
	}

	if _, err := newTestEngine(A4).Draw(doc, nil); !errors.Is(err, ErrRender) {
		t.Errorf("nil canvas err = %v, want ErrRender", err)
	}
}

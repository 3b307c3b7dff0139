package typeset

import "github.com/tsawler/docflip/model"

// Cursor is the mutable position of one layout run: the current page and
// the vertical offset of the next element on it.
type Cursor struct {
	// Page is the 0-based index of the current page.
	Page int
	// Y is the offset from the top of the page where the next element
	// starts.
	Y float64

	PageRect    model.BBox
	ContentRect model.BBox
}

// NewCursor returns a cursor at the top of the first page.
func NewCursor(size PageSize, m Margins) *Cursor {
	content := size.ContentRect(m)
	return &Cursor{
		Y:           content.Top(),
		PageRect:    model.NewBBox(0, 0, size.Width, size.Height),
		ContentRect: content,
	}
}

// Top returns the first usable offset on a page
func (c *Cursor) Top() float64 {
	return c.ContentRect.Top()
}

// Bottom returns the last usable offset on a page
func (c *Cursor) Bottom() float64 {
	return c.ContentRect.Bottom()
}

// Remaining returns the vertical space left on the current page
func (c *Cursor) Remaining() float64 {
	return c.Bottom() - c.Y
}

// AtTop reports whether nothing has been placed on the current page yet
func (c *Cursor) AtTop() bool {
	return c.Y <= c.Top()
}

// Fits reports whether a block of height h fits below the cursor
func (c *Cursor) Fits(h float64) bool {
	return c.Y+h <= c.Bottom()
}

// NextPage moves to the top of the following page.
func (c *Cursor) NextPage() {
	c.Page++
	c.Y = c.Top()
}

// Reserve makes room for a block of height h, moving to the next page when
// it does not fit. A block that does not fit on an empty page stays where it
// is. Reserve reports whether a new page was started.
func (c *Cursor) Reserve(h float64) bool {
	if c.Fits(h) || c.AtTop() {
		return false
	}
	c.NextPage()
	return true
}

// Advance moves the cursor down by h on the current page.
func (c *Cursor) Advance(h float64) {
	c.Y += h
}

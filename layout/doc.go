// Package layout reconstructs document structure from positioned text.
//
// It works on [model.PositionedTextBlock] values in normalized page
// coordinates, as produced by the extract package.
//
// # Paragraph Grouping
//
// The [ParagraphGrouper] clusters blocks into line bands and line bands
// into paragraphs:
//
//	grouper := layout.NewParagraphGrouper()
//	groups := grouper.Group(page.Blocks)
//	paragraphs := grouper.Paragraphs(groups)
//
// Blocks whose vertical centers differ by less than half the taller block's
// height share a line band. A new paragraph starts when the vertical gap
// between bands exceeds 1.5 times the taller height, or when the font size
// changes noticeably.
//
// Paragraphs get a heading level from their average font size, an
// alignment from their lines' positions on the page, and a list kind when
// they start with a bullet or number marker.
//
// # Header/Footer Filtering
//
// For multi-page documents, lines repeated in the top or bottom inch of the
// pages can be removed before grouping:
//
//	removed := layout.NewHeaderFooterDetector().Filter(pages)
package layout

// Package model provides the in-memory representation shared by both
// conversion directions.
//
// # Document Structure
//
// A [Document] is an ordered sequence of [Element] values. The concrete
// element types are:
//
//   - [Paragraph] - a run sequence with alignment, heading and list hints
//   - [Table] - rows of [TableCell] values, each holding paragraphs
//
// Element order is significant and preserved from parsing through layout.
//
//	doc := model.NewDocument()
//	doc.Append(model.NewParagraph("Hello"))
//
// # Runs
//
// A [Run] carries either text with its formatting, or an [InlineImage]
// reference resolved through the package relationships.
//
// # Positioned Text
//
// The reverse direction works on [PageContent] values: each page's
// [PositionedTextBlock] values carry normalized coordinates in the unit square
// with a top-left origin, so blocks from native text layers and from OCR can
// be grouped by the same code.
//
// # Geometry
//
// [BBox] is an axis-aligned rectangle with a top-left origin, used for
// normalized block boxes and for layout rectangles in points.
package model

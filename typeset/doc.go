// Package typeset lays a [model.Document] out onto fixed-size pages.
//
// Layout is a single routine run in two modes. [Engine.Measure] runs it
// without a canvas to predict page breaks and the page count;
// [Engine.Draw] runs the same routine against a [Canvas] to place ink.
// Because both modes share every measurement, a document always lands on
// the same pages in both.
//
// # Coordinates
//
// All positions are in points with a top-left origin. The [Cursor] tracks
// the current page and the vertical offset of the next element.
//
// # Pagination
//
// An element that does not fit in the space left on a page moves to the
// next page whole. Paragraphs taller than a full page continue line by
// line. Table rows are atomic, and the first row of a table is repeated
// at the top of every page the table continues onto.
//
// # Fonts
//
// Widths come from a [Measurer]. [GoFontMeasurer] measures with the Go
// font family, which a canvas can embed (see [Face.TTF]) so drawn glyphs
// match the measured ones.
package typeset

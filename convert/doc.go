// Package convert composes the container, docx, typeset, render, extract and
// layout packages into the two conversion directions.
//
// DOCX to PDF:
//
//	out, err := convert.NewDocxToPDF().Convert(data, typeset.Letter)
//
// PDF to DOCX, from pages supplied by a backend such as pdfsource:
//
//	doc, err := pdfsource.Open(data)
//	pages, err := doc.Pages()
//	out, err := convert.NewPDFToDocx().Convert(ctx, pages, convert.ModeAuto, "auto")
//
// Fatal failures are returned as *Error values carrying a stable Code.
// Degraded input produces warnings alongside a successful result.
package convert

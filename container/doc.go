// Package container reads and writes ZIP archives, the packaging format used
// by DOCX files.
//
// The reader locates the End Of Central Directory record by scanning backward
// from the end of the buffer, walks the central directory, and re-reads each
// entry's local file header to find the true payload start:
//
//	r, err := container.Open(data)
//	if err != nil {
//	    // container.ErrNotZip, container.ErrCorrupt
//	}
//	xml, err := r.Read("word/document.xml")
//
// Entries stored (method 0) are returned verbatim and deflated entries
// (method 8) are inflated. Any other method yields ErrUnsupportedMethod, which
// callers may treat as a missing entry.
//
// The writer always stores entries uncompressed:
//
//	w := container.NewWriter()
//	w.AddEntry("mimetype", []byte("..."))
//	data, err := w.Finish()
//
// The package has no document semantics. ZIP64, encryption and multi-disk
// archives are not supported.
package container

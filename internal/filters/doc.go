// Package filters provides the decompression filters used by the ZIP
// container reader.
//
// ZIP entries stored with method 8 carry a raw DEFLATE stream (RFC 1951)
// without the zlib header and trailer that PDF streams use.
//
// # Supported Filters
//
// Raw DEFLATE:
//
//	decoded, err := filters.RawInflate(data, sizeHint)
//
// The size hint is the uncompressed size recorded in the archive's central
// directory. It preallocates the output buffer and bounds the amount of data
// the decoder is allowed to produce, so a corrupt or hostile entry cannot
// expand without limit.
package filters

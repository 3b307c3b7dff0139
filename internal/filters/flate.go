package filters

import (
	"bytes"
	"compress/flate"
	"errors"
	"fmt"
	"io"
)

// ErrSizeMismatch is returned when an inflated stream does not produce exactly
// the number of bytes the caller expected.
var ErrSizeMismatch = errors.New("inflated size does not match expected size")

const (
	// maxSlack is how far past the size hint the decoder may read before the
	// stream is rejected as oversized.
	maxSlack = 1

	// maxRatio bounds what DEFLATE can expand to: a stream of n bytes never
	// inflates past roughly 1032n bytes.
	maxRatio = 1032

	// maxPrealloc caps the buffer reserved up front from the size hint.
	maxPrealloc = 1 << 20
)

// RawInflate decompresses a raw (headerless) DEFLATE stream.
// If sizeHint is negative the output size is unchecked.
func RawInflate(data []byte, sizeHint int64) ([]byte, error) {
	if sizeHint > int64(len(data))*maxRatio+maxSlack {
		return nil, fmt.Errorf("%w: %d compressed bytes cannot hold %d", ErrSizeMismatch, len(data), sizeHint)
	}

	reader := flate.NewReader(bytes.NewReader(data))
	defer reader.Close()

	var buf bytes.Buffer
	var src io.Reader = reader
	if sizeHint >= 0 {
		buf.Grow(int(min(sizeHint, maxPrealloc)))
		src = io.LimitReader(reader, sizeHint+maxSlack)
	}

	if _, err := io.Copy(&buf, src); err != nil {
		return nil, fmt.Errorf("raw inflate failed: %w", err)
	}

	if sizeHint >= 0 && int64(buf.Len()) != sizeHint {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, buf.Len(), sizeHint)
	}

	return buf.Bytes(), nil
}

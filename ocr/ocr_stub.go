//go:build !ocr

package ocr

import "context"

// Client stands in for the Tesseract client in builds without the ocr tag.
// Every operation fails with ErrOCRNotEnabled, so callers degrade to
// text-layer extraction.
type Client struct{}

// New always fails; rebuild with -tags ocr to link Tesseract.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close does nothing. A nil *Client is fine.
func (c *Client) Close() error { return nil }

// Recognize implements Recognizer.
func (c *Client) Recognize(ctx context.Context, img []byte, language string) ([]Line, error) {
	return nil, ErrOCRNotEnabled
}

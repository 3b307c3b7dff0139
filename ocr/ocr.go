//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations. A Client may be shared; calls
// are serialized because the underlying Tesseract handle is not safe for
// concurrent use.
type Client struct {
	client *gosseract.Client
	// sem holds one token; whoever holds it owns client.
	sem chan struct{}
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	c := &Client{client: gosseract.NewClient(), sem: make(chan struct{}, 1)}
	c.sem <- struct{}{}
	return c, nil
}

// Close releases OCR resources. It waits for a recognition in flight and is
// safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	<-c.sem
	defer func() { c.sem <- struct{}{} }()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Recognize implements Recognizer. It returns one Line per text line
// Tesseract finds. If ctx ends first, Recognize returns ctx.Err(); the
// recognition in flight still completes before the client is used again.
func (c *Client) Recognize(ctx context.Context, img []byte, language string) ([]Line, error) {
	select {
	case <-c.sem:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	type result struct {
		lines []Line
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() { c.sem <- struct{}{} }()
		lines, err := c.recognize(img, language)
		done <- result{lines, err}
	}()

	select {
	case r := <-done:
		return r.lines, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recognize runs Tesseract. The caller holds the semaphore.
func (c *Client) recognize(img []byte, language string) ([]Line, error) {
	if c.client == nil {
		return nil, fmt.Errorf("OCR client closed")
	}
	if err := c.client.SetLanguage(Languages(language)...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := c.client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	lines := make([]Line, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		lines = append(lines, Line{Text: text, Box: b.Box, Confidence: b.Confidence / 100})
	}
	return lines, nil
}

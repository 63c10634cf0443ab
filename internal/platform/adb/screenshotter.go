package adb

import (
	"bytes"
	"context"
	"fmt"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Capture grabs the display as PNG through screencap.
func (c *Client) Capture(ctx context.Context) ([]byte, error) {
	out, err := c.execOut(ctx, "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("screencap: %w", err)
	}
	if !bytes.HasPrefix(out, pngMagic) {
		return nil, fmt.Errorf("screencap: output is not a PNG image")
	}
	return out, nil
}

package adb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	keyMoveEnd = "123"
	keyDel     = "67"
)

// Tap taps at screen coordinates.
func (c *Client) Tap(ctx context.Context, x, y int) error {
	if _, err := c.shell(ctx, "input", "tap", strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return fmt.Errorf("tap (%d,%d): %w", x, y, err)
	}
	return nil
}

// LongPress holds a touch at the coordinates for d.
func (c *Client) LongPress(ctx context.Context, x, y int, d time.Duration) error {
	xs, ys := strconv.Itoa(x), strconv.Itoa(y)
	ms := strconv.FormatInt(d.Milliseconds(), 10)
	if _, err := c.shell(ctx, "input", "swipe", xs, ys, xs, ys, ms); err != nil {
		return fmt.Errorf("long press (%d,%d): %w", x, y, err)
	}
	return nil
}

// TypeText types into the focused field. Text must pass CheckInputText.
func (c *Client) TypeText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if err := CheckInputText(text); err != nil {
		return err
	}
	if _, err := c.shell(ctx, "input", "text", EscapeInputText(text)); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

// DeleteBackward moves the cursor to the end of the focused field and
// deletes n characters.
func (c *Client) DeleteBackward(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	args := []string{"input", "keyevent", keyMoveEnd}
	for i := 0; i < n; i++ {
		args = append(args, keyDel)
	}
	if _, err := c.shell(ctx, args...); err != nil {
		return fmt.Errorf("delete text: %w", err)
	}
	return nil
}

const shellSpecial = "\\()<>|;&*~\"'`$!?#[]{}"

// ErrUnsupportedText is returned for text `input text` cannot type.
var ErrUnsupportedText = errors.New("text not supported by adb input")

// CheckInputText reports whether `input text` can type text. It only
// injects printable ASCII, and it always decodes "%s" as a space, so a
// literal percent sign followed by "s" cannot be entered.
func CheckInputText(text string) error {
	for i, r := range text {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("%w: character %q at offset %d", ErrUnsupportedText, r, i)
		}
	}
	if i := strings.Index(text, "%s"); i >= 0 {
		return fmt.Errorf("%w: %q at offset %d would be typed as a space", ErrUnsupportedText, "%s", i)
	}
	return nil
}

// EscapeInputText escapes text for `input text` through the device shell.
// Spaces become %s, which input decodes back into spaces. The result is
// only meaningful for text accepted by CheckInputText.
func EscapeInputText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == ' ':
			b.WriteString("%s")
		case r == '%':
			b.WriteString(`\%`)
		case strings.ContainsRune(shellSpecial, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

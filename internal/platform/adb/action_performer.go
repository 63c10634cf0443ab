package adb

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/platform"
)

const longPressDuration = 600 * time.Millisecond

// ActionPerformer maps accessibility actions onto input events at the
// element's center, since adb cannot address nodes directly.
type ActionPerformer struct {
	c *Client
}

// NewActionPerformer creates an ActionPerformer backed by c.
func NewActionPerformer(c *Client) *ActionPerformer {
	return &ActionPerformer{c: c}
}

// PerformAction executes opts.Action on el.
func (p *ActionPerformer) PerformAction(ctx context.Context, el model.ScreenElement, opts platform.ActionOptions) error {
	if el.Bounds[2] <= 0 || el.Bounds[3] <= 0 {
		return fmt.Errorf("%s: element %d has empty bounds", opts.Action, el.ID)
	}
	x, y := el.Center()
	switch opts.Action {
	case platform.ActionClick, platform.ActionFocus:
		return p.c.Tap(ctx, x, y)
	case platform.ActionLongClick:
		return p.c.LongPress(ctx, x, y, longPressDuration)
	case platform.ActionSetText:
		if err := CheckInputText(opts.Text); err != nil {
			return err
		}
		if !el.Focused {
			if err := p.c.Tap(ctx, x, y); err != nil {
				return err
			}
		}
		if err := p.c.DeleteBackward(ctx, utf8.RuneCountInString(el.Text)); err != nil {
			return err
		}
		return p.c.TypeText(ctx, opts.Text)
	default:
		return fmt.Errorf("unsupported action: %s", opts.Action)
	}
}

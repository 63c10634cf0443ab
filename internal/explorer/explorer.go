// Package explorer locates and acts on elements of the device's live UI
// tree. Every query re-reads the tree, and every action blocks for a settle
// delay so the caller's next query sees the updated screen.
package explorer

import (
	"context"
	"time"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/platform"
	"go.uber.org/zap"
)

// DefaultSettle is the pause after each primitive action.
const DefaultSettle = 300 * time.Millisecond

// Explorer wraps the platform capabilities used for UI automation.
type Explorer struct {
	p      *platform.Provider
	settle time.Duration
	sleep  func(context.Context, time.Duration)
	log    *zap.Logger
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithSettle overrides the settle delay.
func WithSettle(d time.Duration) Option {
	return func(e *Explorer) { e.settle = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Explorer) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSleep replaces the wait function, letting tests skip real delays.
func WithSleep(fn func(context.Context, time.Duration)) Option {
	return func(e *Explorer) { e.sleep = fn }
}

// New creates an Explorer over p.
func New(p *platform.Provider, opts ...Option) *Explorer {
	e := &Explorer{
		p:      p,
		settle: DefaultSettle,
		sleep:  sleepCtx,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Wait blocks for d or until ctx is done.
func (e *Explorer) Wait(ctx context.Context, d time.Duration) {
	e.sleep(ctx, d)
}

// Read takes a fresh snapshot of the screen. It returns nil when no reader
// is available or the tree cannot be read.
func (e *Explorer) Read(ctx context.Context) *Screen {
	if e.p == nil || e.p.Reader == nil {
		return nil
	}
	elements, err := e.p.Reader.ReadScreen(ctx)
	if err != nil {
		e.log.Debug("read screen failed", zap.Error(err))
		return nil
	}
	if len(elements) == 0 {
		return nil
	}
	// Without a size the snapshot is still usable, but geometric regions
	// match nothing.
	size, err := e.p.Reader.ScreenSize(ctx)
	if err != nil {
		e.log.Warn("read screen size failed", zap.Error(err))
		size = model.ScreenSize{}
	}
	return &Screen{Elements: elements, Size: size}
}

// FindByText returns the first element whose text contains needle.
func (e *Explorer) FindByText(ctx context.Context, needle string) *model.ScreenElement {
	if s := e.Read(ctx); s != nil {
		return s.FindByText(needle)
	}
	return nil
}

// FindByDescription returns the first element whose description contains needle.
func (e *Explorer) FindByDescription(ctx context.Context, needle string) *model.ScreenElement {
	if s := e.Read(ctx); s != nil {
		return s.FindByDescription(needle)
	}
	return nil
}

// FindAllClickable returns every clickable element on screen in pre-order.
func (e *Explorer) FindAllClickable(ctx context.Context) []model.ScreenElement {
	if s := e.Read(ctx); s != nil {
		return s.Clickables()
	}
	return nil
}

// FindEditable returns the focused editable element, else the first one.
func (e *Explorer) FindEditable(ctx context.Context) *model.ScreenElement {
	if s := e.Read(ctx); s != nil {
		return s.Editable()
	}
	return nil
}

// Search reads the screen once and tries locators in order. The first hit
// wins; its locator name is returned alongside it.
func (e *Explorer) Search(ctx context.Context, locators ...Locator) (*model.ScreenElement, string) {
	s := e.Read(ctx)
	if s == nil {
		return nil, ""
	}
	for _, l := range locators {
		if el := l.Find(s); el != nil {
			e.log.Debug("element located", zap.String("locator", l.Name), zap.Int("id", el.ID))
			return el, l.Name
		}
	}
	return nil, ""
}

// Perform applies a single accessibility action to el and waits for the UI
// to settle. It reports false when the device rejects the action.
func (e *Explorer) Perform(ctx context.Context, el *model.ScreenElement, opts platform.ActionOptions) bool {
	return e.perform(ctx, el, opts)
}

// Click clicks el and waits for the UI to settle.
func (e *Explorer) Click(ctx context.Context, el *model.ScreenElement) bool {
	return e.perform(ctx, el, platform.ActionOptions{Action: platform.ActionClick})
}

// SetText focuses el, then replaces its contents with text.
func (e *Explorer) SetText(ctx context.Context, el *model.ScreenElement, text string) bool {
	if !e.perform(ctx, el, platform.ActionOptions{Action: platform.ActionFocus}) {
		return false
	}
	return e.perform(ctx, el, platform.ActionOptions{Action: platform.ActionSetText, Text: text})
}

// ClearText empties el: focus, long-press to select, then set empty text.
func (e *Explorer) ClearText(ctx context.Context, el *model.ScreenElement) bool {
	if !e.perform(ctx, el, platform.ActionOptions{Action: platform.ActionFocus}) {
		return false
	}
	// Selection is best-effort; some fields ignore long-press.
	e.perform(ctx, el, platform.ActionOptions{Action: platform.ActionLongClick})
	return e.perform(ctx, el, platform.ActionOptions{Action: platform.ActionSetText})
}

// TapAt synthesizes a tap at raw coordinates.
func (e *Explorer) TapAt(ctx context.Context, x, y int) bool {
	if e.p == nil || e.p.Gesturer == nil {
		return false
	}
	if err := e.p.Gesturer.Tap(ctx, x, y); err != nil {
		e.log.Debug("tap rejected", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return false
	}
	e.sleep(ctx, e.settle)
	return true
}

func (e *Explorer) perform(ctx context.Context, el *model.ScreenElement, opts platform.ActionOptions) bool {
	if el == nil || e.p == nil || e.p.ActionPerformer == nil {
		return false
	}
	if err := e.p.ActionPerformer.PerformAction(ctx, *el, opts); err != nil {
		e.log.Debug("action rejected", zap.Stringer("action", opts.Action), zap.Int("id", el.ID), zap.Error(err))
		return false
	}
	e.sleep(ctx, e.settle)
	return true
}

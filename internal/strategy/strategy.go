// Package strategy holds the per-app procedures that send messages by
// driving another application's UI. Each procedure is a chain of ranked
// element searches; a step that exhausts its chain aborts the send.
package strategy

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mj1618/devicepilot/internal/executor"
	"github.com/mj1618/devicepilot/internal/explorer"
	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/status"
	"go.uber.org/zap"
)

// Messenger sends a text message to a recipient through one application.
// Send reports true once the final send action was accepted; delivery is
// not verified.
type Messenger interface {
	Name() string
	Send(ctx context.Context, recipient, message string) bool
}

// Timing holds the fixed waits inserted after screen transitions.
type Timing struct {
	Launch     time.Duration // after starting an app
	SlowLaunch time.Duration // after starting an app with a splash screen
	Transition time.Duration // after opening a new screen
	Results    time.Duration // before rescanning search results
	Field      time.Duration // between field focus, clear, and type
	Typing     time.Duration // after typing or sending
}

// DefaultTiming matches the pacing real messaging apps need on mid-range
// devices.
func DefaultTiming() Timing {
	return Timing{
		Launch:     2000 * time.Millisecond,
		SlowLaunch: 3000 * time.Millisecond,
		Transition: 1500 * time.Millisecond,
		Results:    1000 * time.Millisecond,
		Field:      800 * time.Millisecond,
		Typing:     500 * time.Millisecond,
	}
}

// Deps are the collaborators shared by every messenger.
type Deps struct {
	Explorer *explorer.Explorer
	Executor *executor.Executor
	Status   status.Reporter
	Log      *zap.Logger
	Timing   Timing
	// CountryCode is prefixed to bare ten-digit numbers in deep links.
	CountryCode string
}

func (d Deps) withDefaults() Deps {
	if d.Status == nil {
		d.Status = status.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Timing == (Timing{}) {
		d.Timing = DefaultTiming()
	}
	if d.CountryCode == "" {
		d.CountryCode = "91"
	}
	return d
}

var phonePattern = regexp.MustCompile(`^(?:[0-9]{10}|\+[0-9]{12,13})$`)

// IsPhoneNumber reports whether recipient is ten bare digits or a plus sign
// followed by twelve or thirteen digits. Whitespace is ignored.
func IsPhoneNumber(recipient string) bool {
	return phonePattern.MatchString(stripSpace(recipient))
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// flow is one run of a messenger procedure.
type flow struct {
	Deps
	op  string
	log *zap.Logger
}

func newFlow(d Deps, app, recipient string) *flow {
	op := app + " Message"
	d.Status.Update(op, "To: "+recipient)
	return &flow{Deps: d, op: op, log: d.Log.With(zap.String("app", app))}
}

func (f *flow) step(detail string) {
	f.Status.Update(f.op, detail)
}

func (f *flow) wait(ctx context.Context, d time.Duration) {
	f.Explorer.Wait(ctx, d)
}

// find runs one ranked search. A cancelled context finds nothing.
func (f *flow) find(ctx context.Context, what string, locators ...explorer.Locator) *model.ScreenElement {
	if ctx.Err() != nil {
		return nil
	}
	el, via := f.Explorer.Search(ctx, locators...)
	if el == nil {
		f.log.Info("element not found", zap.String("element", what))
		return nil
	}
	f.log.Debug("element found", zap.String("element", what), zap.String("via", via))
	return el
}

// tap finds an element, clicks it and waits.
func (f *flow) tap(ctx context.Context, what string, wait time.Duration, locators ...explorer.Locator) bool {
	el := f.find(ctx, what, locators...)
	if el == nil {
		return false
	}
	if !f.Explorer.Click(ctx, el) {
		f.log.Warn("click rejected", zap.String("element", what))
		return false
	}
	f.wait(ctx, wait)
	return true
}

// fill finds a field, clicks it and types text. With clear set the field is
// emptied first so stale input is not concatenated. Clicking a field often
// opens the keyboard and moves it, so the field is looked up again before
// each later action.
func (f *flow) fill(ctx context.Context, what, text string, clear bool, pause, after time.Duration, locators ...explorer.Locator) *model.ScreenElement {
	el := f.find(ctx, what, locators...)
	if el == nil {
		return nil
	}
	if !f.Explorer.Click(ctx, el) {
		f.log.Warn("click rejected", zap.String("element", what))
		return nil
	}
	f.wait(ctx, pause)
	if clear {
		if el = f.find(ctx, what, locators...); el == nil {
			return nil
		}
		f.Explorer.ClearText(ctx, el)
		f.wait(ctx, pause)
	}
	if el = f.find(ctx, what, locators...); el == nil {
		return nil
	}
	if !f.Explorer.SetText(ctx, el, text) {
		f.log.Warn("set text rejected", zap.String("element", what))
		return nil
	}
	f.wait(ctx, after)
	return el
}

// pickContact resolves the recipient among search results. Exact and token
// matches are tried first; list and position fallbacks get a second look
// after a short wait for slow result lists.
func (f *flow) pickContact(ctx context.Context, name string) bool {
	f.step("Selecting " + name)
	tokens := strings.Fields(name)
	primary := []explorer.Locator{explorer.ByResultText(name)}
	for _, t := range tokens {
		if len([]rune(t)) > 2 {
			primary = append(primary, explorer.ByResultText(t))
		}
	}
	if f.tapNow(ctx, primary...) {
		return true
	}
	f.wait(ctx, f.Timing.Results)
	return f.tapNow(ctx,
		explorer.FirstChildOfClass(model.ListClasses...),
		explorer.ClickableWhere("middle band match", explorer.MiddleBand(), explorer.AnyToken(tokens, 2)),
		explorer.ClickableIn("middle band", explorer.MiddleBand()),
	)
}

func (f *flow) tapNow(ctx context.Context, locators ...explorer.Locator) bool {
	el := f.find(ctx, "contact", locators...)
	return el != nil && f.Explorer.Click(ctx, el)
}

// verify looks for a word of the sent message on screen. The outcome is
// only logged: message lists render differently across app versions, so a
// miss does not mean the send failed.
func (f *flow) verify(ctx context.Context, message string) {
	s := f.Explorer.Read(ctx)
	if s == nil {
		return
	}
	for _, w := range strings.Fields(message) {
		if len([]rune(w)) > 3 && s.ContainsText(w) {
			f.log.Debug("sent message visible", zap.String("word", w))
			return
		}
	}
	f.log.Debug("sent message not visible; assuming sent")
}

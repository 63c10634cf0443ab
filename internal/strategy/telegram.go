package strategy

import (
	"context"
	"strings"

	"github.com/mj1618/devicepilot/internal/explorer"
	"github.com/mj1618/devicepilot/internal/model"
	"go.uber.org/zap"
)

// TelegramPackages are tried in order; the first that launches is used.
var TelegramPackages = []string{
	"org.telegram.messenger",
	"org.telegram.messenger.web",
	"org.telegram.plus",
}

// Telegram sends through Telegram's global search. Telegram has no
// click-to-chat link by number, so every recipient takes the UI path.
type Telegram struct {
	d Deps
}

// NewTelegram creates the Telegram messenger.
func NewTelegram(d Deps) *Telegram {
	return &Telegram{d: d.withDefaults()}
}

func (t *Telegram) Name() string { return "Telegram" }

// Send finds recipient through search and sends message.
func (t *Telegram) Send(ctx context.Context, recipient, message string) bool {
	tm := t.d.Timing
	f := newFlow(t.d, t.Name(), recipient)
	f.wait(ctx, tm.Typing)

	f.step("Opening Telegram")
	launched := false
	for _, pkg := range TelegramPackages {
		if t.d.Executor.LaunchApp(ctx, pkg) {
			launched = true
			break
		}
	}
	if !launched {
		f.log.Warn("telegram not installed")
		return false
	}
	f.wait(ctx, tm.SlowLaunch)

	if !f.tap(ctx, "search button", tm.Transition,
		explorer.ByDescription("Search"),
		explorer.ByText("Search"),
		explorer.ClickableWhere("top right search", explorer.TopRight(0.15, 0.7), mentionsSearch),
	) {
		return false
	}

	f.step("Searching " + recipient)
	if f.fill(ctx, "search field", recipient, true, tm.Field, 2*tm.Results, explorer.FirstEditable()) == nil {
		return false
	}

	// Some builds drop the first characters typed into a fresh search box.
	if field := f.find(ctx, "search field", explorer.FirstEditable()); field != nil &&
		!strings.Contains(strings.ToLower(field.Text), strings.ToLower(recipient)) {
		f.log.Info("search text mismatch, retyping", zap.String("found", field.Text))
		t.retype(ctx, f, recipient)
		f.wait(ctx, tm.Transition)
	}

	if !f.pickContact(ctx, recipient) {
		f.log.Warn("contact not found", zap.String("recipient", recipient))
		return false
	}
	f.wait(ctx, tm.Transition)

	f.step("Typing message")
	if f.fill(ctx, "message field", message, true, tm.Field, tm.Field,
		explorer.ByDescription("Message"),
		explorer.FirstEditable(),
		explorer.ByText("Message"),
		explorer.ByText("Write a message"),
		explorer.ByText("Type a message"),
		explorer.EditableIn("bottom", explorer.BottomBand(0.7)),
	) == nil {
		return false
	}

	f.step("Sending")
	if !f.tap(ctx, "send button", tm.Field,
		explorer.ByDescription("Send"),
		explorer.ByDescription("Send message"),
		explorer.ByText("Send"),
		explorer.ClickableIn("bottom right", explorer.BottomRight()),
	) {
		return false
	}
	f.verify(ctx, message)
	return true
}

// retype clears the search field and types text again, looking the field up
// before every action since each one may move it. A rejected action does
// not stop the rest; a vanished field does.
func (t *Telegram) retype(ctx context.Context, f *flow, text string) {
	steps := []func(el *model.ScreenElement) bool{
		func(el *model.ScreenElement) bool { return t.d.Explorer.ClearText(ctx, el) },
		func(el *model.ScreenElement) bool { return t.d.Explorer.Click(ctx, el) },
		func(el *model.ScreenElement) bool { return t.d.Explorer.SetText(ctx, el, text) },
	}
	for _, step := range steps {
		field := f.find(ctx, "search field", explorer.FirstEditable())
		if field == nil {
			f.log.Info("search field gone, retype abandoned")
			return
		}
		if !step(field) {
			f.log.Debug("retype step rejected")
		}
	}
}

func mentionsSearch(el *model.ScreenElement) bool {
	return strings.Contains(strings.ToLower(el.Text+" "+el.Description), "search")
}

package strategy

import (
	"context"

	"github.com/mj1618/devicepilot/internal/explorer"
	"github.com/mj1618/devicepilot/internal/platform"
	"go.uber.org/zap"
)

// SMS sends through the default messaging app: a native compose intent for
// phone numbers, the new-conversation flow for contact names.
type SMS struct {
	d Deps
}

// NewSMS creates the SMS messenger.
func NewSMS(d Deps) *SMS {
	return &SMS{d: d.withDefaults()}
}

func (m *SMS) Name() string { return "SMS" }

// Send composes message to recipient and sends it.
func (m *SMS) Send(ctx context.Context, recipient, message string) bool {
	f := newFlow(m.d, m.Name(), recipient)
	if IsPhoneNumber(recipient) {
		f.step("Opening composer")
		return m.d.Executor.StartIntent(ctx, SMSIntent(recipient, message))
	}

	f.step("Opening messages")
	if !m.d.Executor.StartIntent(ctx, platform.Intent{Action: platform.IntentMain, Category: platform.CategoryMessaging}) {
		f.log.Warn("no messaging app")
		return false
	}
	f.wait(ctx, m.d.Timing.Launch)

	if !f.tap(ctx, "new message", m.d.Timing.Transition,
		explorer.ByDescription("New message"),
		explorer.ByDescription("New conversation"),
		explorer.ClickableIn("bottom right", explorer.BottomRight()),
		explorer.ByText("New"),
		explorer.ByText("+"),
	) {
		return false
	}

	f.step("Searching " + recipient)
	if f.fill(ctx, "recipient field", recipient, true, m.d.Timing.Typing, m.d.Timing.Transition,
		explorer.ByDescription("To"),
		explorer.ByText("To"),
		explorer.FirstEditable(),
		explorer.EditableIn("top", explorer.TopBand(0.2)),
	) == nil {
		return false
	}

	if !f.pickContact(ctx, recipient) {
		f.log.Warn("contact not found", zap.String("recipient", recipient))
		return false
	}
	f.wait(ctx, m.d.Timing.Results)

	f.step("Typing message")
	if f.fill(ctx, "message field", message, false, m.d.Timing.Typing, m.d.Timing.Typing,
		explorer.ByDescription("Text message"),
		explorer.ByText("Text message"),
		explorer.FirstEditable(),
	) == nil {
		return false
	}

	f.step("Sending")
	if !f.tap(ctx, "send button", m.d.Timing.Typing,
		explorer.ByDescription("Send"),
		explorer.ByText("Send"),
		explorer.ClickableIn("bottom right", explorer.BottomRight()),
	) {
		return false
	}
	f.verify(ctx, message)
	return true
}

// SMSIntent builds the native compose intent for a phone number.
func SMSIntent(phone, message string) platform.Intent {
	return platform.Intent{
		Action: platform.IntentSendTo,
		Data:   "sms:" + stripSpace(phone),
		Extras: map[string]string{"sms_body": message},
	}
}

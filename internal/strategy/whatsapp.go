package strategy

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/mj1618/devicepilot/internal/explorer"
	"go.uber.org/zap"
)

const whatsAppPackage = "com.whatsapp"

var tenDigits = regexp.MustCompile(`^[0-9]{10}$`)

// WhatsApp sends through WhatsApp: a deep link for phone numbers, the New
// chat search for contact names.
type WhatsApp struct {
	d Deps
}

// NewWhatsApp creates the WhatsApp messenger.
func NewWhatsApp(d Deps) *WhatsApp {
	return &WhatsApp{d: d.withDefaults()}
}

func (w *WhatsApp) Name() string { return "WhatsApp" }

// Send opens a chat with recipient and sends message.
func (w *WhatsApp) Send(ctx context.Context, recipient, message string) bool {
	f := newFlow(w.d, w.Name(), recipient)
	if IsPhoneNumber(recipient) {
		f.step("Opening chat link")
		link := WhatsAppLink(recipient, message, w.d.CountryCode)
		f.log.Debug("opening deep link", zap.String("url", link))
		return w.d.Executor.OpenURL(ctx, link)
	}

	f.step("Opening WhatsApp")
	if !w.d.Executor.LaunchApp(ctx, whatsAppPackage) {
		f.log.Warn("whatsapp not installed")
		return false
	}
	f.wait(ctx, w.d.Timing.Launch)

	// The search screen may already be open; carry on without New chat.
	if !f.tap(ctx, "new chat", w.d.Timing.Transition,
		explorer.ByDescription("New chat"),
		explorer.ClickableIn("bottom right", explorer.BottomRight()),
		explorer.ByText("New chat"),
	) {
		f.log.Info("new chat button missing, trying search directly")
	}
	f.wait(ctx, w.d.Timing.Results)

	f.step("Searching " + recipient)
	if f.fill(ctx, "search field", recipient, true, w.d.Timing.Typing, w.d.Timing.Transition,
		explorer.ByDescription("Search..."),
		explorer.ByText("Search..."),
		explorer.FirstEditable(),
		explorer.EditableIn("top", explorer.TopBand(0.2)),
	) == nil {
		return false
	}

	if !f.pickContact(ctx, recipient) {
		f.log.Warn("contact not found", zap.String("recipient", recipient))
		return false
	}
	f.wait(ctx, w.d.Timing.Transition)

	f.step("Typing message")
	if f.fill(ctx, "message field", message, false, w.d.Timing.Typing, w.d.Timing.Typing,
		explorer.ByDescription("Type a message"),
		explorer.ByText("Type a message"),
		explorer.FirstEditable(),
	) == nil {
		return false
	}

	f.step("Sending")
	if !f.tap(ctx, "send button", w.d.Timing.Typing,
		explorer.ByDescription("Send"),
		explorer.ClickableIn("bottom right", explorer.BottomRight()),
	) {
		return false
	}
	f.verify(ctx, message)
	return true
}

// WhatsAppLink builds the click-to-chat URL. Ten-digit numbers get the
// country code prefixed; the link takes digits only.
func WhatsAppLink(phone, message, countryCode string) string {
	n := strings.TrimPrefix(stripSpace(phone), "+")
	if tenDigits.MatchString(n) {
		n = countryCode + n
	}
	return "https://api.whatsapp.com/send?phone=" + n + "&text=" + encodeComponent(message)
}

// encodeComponent percent-encodes s with spaces as %20, which messaging
// apps decode more reliably than '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

package strategy

import (
	"sort"
	"strings"
)

// Platform keys.
const (
	PlatformWhatsApp = "whatsapp"
	PlatformSMS      = "sms"
	PlatformTelegram = "telegram"
)

// DefaultPlatform is used when a command names no messaging app.
const DefaultPlatform = PlatformWhatsApp

// NormalizePlatform maps user and classifier spellings onto a platform key.
// Unrecognized values fall back to DefaultPlatform.
func NormalizePlatform(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sms", "text", "message", "messages", "messaging":
		return PlatformSMS
	case "telegram", "tg":
		return PlatformTelegram
	default:
		return DefaultPlatform
	}
}

// Registry maps platform keys to messengers.
type Registry struct {
	byKey map[string]Messenger
}

// NewRegistry creates a Registry from keyed messengers.
func NewRegistry(messengers map[string]Messenger) *Registry {
	r := &Registry{byKey: make(map[string]Messenger, len(messengers))}
	for k, m := range messengers {
		r.byKey[strings.ToLower(k)] = m
	}
	return r
}

// DefaultRegistry wires the WhatsApp, SMS and Telegram messengers.
func DefaultRegistry(d Deps) *Registry {
	return NewRegistry(map[string]Messenger{
		PlatformWhatsApp: NewWhatsApp(d),
		PlatformSMS:      NewSMS(d),
		PlatformTelegram: NewTelegram(d),
	})
}

// Get returns the messenger for a normalized platform key.
func (r *Registry) Get(platform string) (Messenger, bool) {
	m, ok := r.byKey[NormalizePlatform(platform)]
	return m, ok
}

// Platforms lists registered keys in sorted order.
func (r *Registry) Platforms() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

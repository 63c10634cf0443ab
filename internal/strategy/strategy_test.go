package strategy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/devicepilot/internal/executor"
	"github.com/mj1618/devicepilot/internal/explorer"
	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/platform"
	fd "github.com/mj1618/devicepilot/internal/platform/fakedevice"
	"github.com/mj1618/devicepilot/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleeps struct {
	mu sync.Mutex
	d  []time.Duration
}

func (s *sleeps) sleep(_ context.Context, d time.Duration) {
	s.mu.Lock()
	s.d = append(s.d, d)
	s.mu.Unlock()
}

func newDeps(dev *fd.Device) (Deps, *sleeps, *status.Tracker) {
	rec := &sleeps{}
	tracker := status.NewTracker(nil)
	p := dev.Provider()
	return Deps{
		Explorer: explorer.New(p, explorer.WithSleep(rec.sleep)),
		Executor: executor.New(p, nil, nil),
		Status:   tracker,
	}, rec, tracker
}

// onClick swaps screens when an element with the given label is clicked.
func onClick(screens map[string][]model.ScreenElement) func(*fd.Device, fd.Event) {
	return func(d *fd.Device, ev fd.Event) {
		if ev.Kind != "action" || ev.Action != platform.ActionClick {
			return
		}
		if next, ok := screens[ev.Element.Label()]; ok {
			d.SetScreen(next...)
		}
	}
}

func clicked(dev *fd.Device) []string {
	var out []string
	for _, ev := range dev.EventsOf("action") {
		if ev.Action == platform.ActionClick {
			out = append(out, ev.Element.Label())
		}
	}
	return out
}

func typed(dev *fd.Device) []string {
	var out []string
	for _, ev := range dev.EventsOf("action") {
		if ev.Action == platform.ActionSetText && ev.Text != "" {
			out = append(out, ev.Text)
		}
	}
	return out
}

func whatsAppHome() []model.ScreenElement {
	return []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Text("WhatsApp", 40, 80, 400, 100),
		fd.Button("", "New chat", 880, 2100, 160, 160),
	)}
}

func whatsAppSearch(results ...model.ScreenElement) []model.ScreenElement {
	return []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Field("", "Search...", 100, 100, 880, 100),
		fd.Group("androidx.recyclerview.widget.RecyclerView", results...),
	)}
}

func chatScreen(title, fieldDesc string) []model.ScreenElement {
	return []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Text(title, 40, 80, 600, 100),
		fd.Field("", fieldDesc, 40, 2200, 800, 120),
		fd.Button("", "Send", 900, 2200, 140, 120),
	)}
}

func TestIsPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"9876543210", true},
		{"+919876543210", true},
		{"+4915112345678", true},
		{" 98765 43210 ", true},
		{"987654321", false},
		{"98765432101", false},
		{"+91987654321", false},
		{"+91987654321012", false},
		{"Alice", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPhoneNumber(tt.in); got != tt.want {
			t.Errorf("IsPhoneNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		phone, msg, want string
	}{
		{"9876543210", "running late", "https://api.whatsapp.com/send?phone=919876543210&text=running%20late"},
		{"+919876543210", "a&b", "https://api.whatsapp.com/send?phone=919876543210&text=a%26b"},
		{"98765 43210", "", "https://api.whatsapp.com/send?phone=919876543210&text="},
	}
	for _, tt := range tests {
		if got := WhatsAppLink(tt.phone, tt.msg, "91"); got != tt.want {
			t.Errorf("WhatsAppLink(%q, %q) = %q, want %q", tt.phone, tt.msg, got, tt.want)
		}
	}
}

func TestPhoneRecipientsSkipTreeSearch(t *testing.T) {
	phones := []string{"9876543210", "+919876543210", "+4915112345678"}
	for _, phone := range phones {
		for _, name := range []string{PlatformWhatsApp, PlatformSMS} {
			t.Run(name+"/"+phone, func(t *testing.T) {
				dev := fd.New(whatsAppHome()...)
				d, _, _ := newDeps(dev)
				m, ok := DefaultRegistry(d).Get(name)
				require.True(t, ok)

				assert.True(t, m.Send(context.Background(), phone, "hello"))
				assert.Zero(t, dev.ReadCount(), "deep link must not read the tree")
				assert.Empty(t, dev.EventsOf("action"))
				assert.Empty(t, dev.EventsOf("launch"))
				require.Len(t, dev.EventsOf("intent"), 1)
			})
		}
	}
}

func TestSMSIntent(t *testing.T) {
	got := SMSIntent("98765 43210", "running late")
	assert.Equal(t, platform.IntentSendTo, got.Action)
	assert.Equal(t, "sms:9876543210", got.Data)
	assert.Equal(t, "running late", got.Extras["sms_body"])
}

func TestWhatsApp_ContactFlow(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"New chat": whatsAppSearch(
			fd.Button("Alice Smith", "", 0, 600, 1080, 150),
			fd.Button("Bob", "", 0, 750, 1080, 150),
		),
		"Alice Smith": chatScreen("Alice Smith", "Type a message"),
	})
	d, rec, tracker := newDeps(dev)

	ok := NewWhatsApp(d).Send(context.Background(), "Alice Smith", "see you tonight")
	require.True(t, ok)

	launches := dev.EventsOf("launch")
	require.Len(t, launches, 1)
	assert.Equal(t, "com.whatsapp", launches[0].Package)
	assert.Equal(t, []string{"New chat", "Search...", "Alice Smith", "Type a message", "Send"}, clicked(dev))
	assert.Equal(t, []string{"Alice Smith", "see you tonight"}, typed(dev))
	assert.Contains(t, rec.d, DefaultTiming().Launch)

	ev, ok := tracker.Latest()
	require.True(t, ok)
	assert.Equal(t, "WhatsApp Message", ev.Operation)
	assert.Equal(t, "Sending", ev.Detail)
}

func TestWhatsApp_PartialTokenMatch(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"New chat": whatsAppSearch(fd.Button("Alice S.", "", 0, 600, 1080, 150)),
		"Alice S.": chatScreen("Alice S.", "Type a message"),
	})
	d, _, _ := newDeps(dev)

	require.True(t, NewWhatsApp(d).Send(context.Background(), "Alice Smith", "hi"))
	assert.Contains(t, clicked(dev), "Alice S.")
}

func TestWhatsApp_FirstListRowFallback(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"New chat": whatsAppSearch(fd.Button("Mum", "", 0, 600, 1080, 150)),
		"Mum":      chatScreen("Mum", "Type a message"),
	})
	d, rec, _ := newDeps(dev)

	require.True(t, NewWhatsApp(d).Send(context.Background(), "mother", "hi"))
	assert.Contains(t, clicked(dev), "Mum")

	waits := 0
	for _, w := range rec.d {
		if w == DefaultTiming().Results {
			waits++
		}
	}
	assert.Equal(t, 2, waits, "fallbacks wait again for slow result lists")
}

func TestWhatsApp_ContactMissingAborts(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"New chat": whatsAppSearch(),
	})
	d, _, _ := newDeps(dev)

	assert.False(t, NewWhatsApp(d).Send(context.Background(), "Zed", "hi"))
	assert.NotContains(t, clicked(dev), "Send")
	assert.Equal(t, []string{"Zed"}, typed(dev))
}

func TestWhatsApp_NoSearchFieldAborts(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	d, _, _ := newDeps(dev)
	assert.False(t, NewWhatsApp(d).Send(context.Background(), "Alice", "hi"))
	assert.Empty(t, typed(dev))
}

func TestWhatsApp_NotInstalled(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.Packages = map[string]bool{}
	d, _, _ := newDeps(dev)
	assert.False(t, NewWhatsApp(d).Send(context.Background(), "Alice", "hi"))
	assert.Zero(t, dev.ReadCount())
}

func TestWhatsApp_SendSucceedsWithoutVerification(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"New chat":    whatsAppSearch(fd.Button("Alice Smith", "", 0, 600, 1080, 150)),
		"Alice Smith": chatScreen("Alice Smith", "Type a message"),
		"Send":        {fd.Text("unrelated", 0, 0, 100, 100)},
	})
	d, _, _ := newDeps(dev)
	assert.True(t, NewWhatsApp(d).Send(context.Background(), "Alice Smith", "unseen words here"))
}

func TestSMS_ContactFlow(t *testing.T) {
	home := []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Button("Start chat", "New conversation", 700, 2150, 340, 140),
	)}
	compose := []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Field("", "To", 0, 100, 1080, 120),
		fd.Group("android.widget.ListView", fd.Button("Dave Jones", "", 0, 700, 1080, 150)),
	)}
	dev := fd.New(home...)
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"Start chat": compose,
		"Dave Jones": chatScreen("Dave Jones", "Text message"),
	})
	d, _, _ := newDeps(dev)

	require.True(t, NewSMS(d).Send(context.Background(), "Dave", "on my way"))
	intents := dev.EventsOf("intent")
	require.Len(t, intents, 1)
	assert.Equal(t, platform.IntentMain, intents[0].Intent.Action)
	assert.Equal(t, platform.CategoryMessaging, intents[0].Intent.Category)
	assert.Equal(t, []string{"Start chat", "To", "Dave Jones", "Text message", "Send"}, clicked(dev))
	assert.Equal(t, []string{"Dave", "on my way"}, typed(dev))
}

func TestTelegram_Flow(t *testing.T) {
	home := []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Text("Telegram", 40, 80, 400, 100),
		fd.Button("", "Search", 900, 60, 150, 120),
	)}
	search := []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Field("", "Search", 0, 60, 1080, 120),
		fd.Group("androidx.recyclerview.widget.RecyclerView", fd.Button("Carol", "", 0, 700, 1080, 150)),
	)}
	dev := fd.New(home...)
	dev.Packages = map[string]bool{"org.telegram.messenger.web": true}
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"Search": search,
		"Carol":  chatScreen("Carol", "Message"),
	})
	d, rec, _ := newDeps(dev)

	require.True(t, NewTelegram(d).Send(context.Background(), "Carol", "meeting moved"))

	var pkgs []string
	for _, ev := range dev.EventsOf("launch") {
		pkgs = append(pkgs, ev.Package)
	}
	assert.Equal(t, []string{"org.telegram.messenger", "org.telegram.messenger.web"}, pkgs)
	assert.Contains(t, rec.d, DefaultTiming().SlowLaunch)
	assert.Contains(t, typed(dev), "Carol")
	assert.Equal(t, "meeting moved", typed(dev)[len(typed(dev))-1])
	assert.Equal(t, "Send", clicked(dev)[len(clicked(dev))-1])
}

func TestTelegram_PhoneStillUsesUI(t *testing.T) {
	dev := fd.New()
	d, _, _ := newDeps(dev)
	assert.False(t, NewTelegram(d).Send(context.Background(), "9876543210", "hi"))
	assert.NotEmpty(t, dev.EventsOf("launch"))
	assert.Empty(t, dev.EventsOf("intent"))
}

func TestCancelledContextFindsNothing(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	d, _, _ := newDeps(dev)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, NewWhatsApp(d).Send(ctx, "Alice", "hi"))
	assert.Zero(t, dev.ReadCount())
}

func TestNormalizePlatform(t *testing.T) {
	tests := map[string]string{
		"":         PlatformWhatsApp,
		"WhatsApp": PlatformWhatsApp,
		"sms":      PlatformSMS,
		"text":     PlatformSMS,
		"Telegram": PlatformTelegram,
		"tg":       PlatformTelegram,
		"signal":   PlatformWhatsApp,
	}
	for in, want := range tests {
		if got := NormalizePlatform(in); got != want {
			t.Errorf("NormalizePlatform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	d, _, _ := newDeps(fd.New())
	r := DefaultRegistry(d)
	assert.Equal(t, []string{"sms", "telegram", "whatsapp"}, r.Platforms())

	m, ok := r.Get("TG")
	require.True(t, ok)
	assert.Equal(t, "Telegram", m.Name())

	m, ok = r.Get("")
	require.True(t, ok)
	assert.Equal(t, "WhatsApp", m.Name())

	_, ok = NewRegistry(nil).Get("sms")
	assert.False(t, ok)
}

// fieldActions returns the non-click actions performed on the element with
// the given label, in order.
func fieldActions(dev *fd.Device, label string) []fd.Event {
	var out []fd.Event
	for _, ev := range dev.EventsOf("action") {
		if ev.Action != platform.ActionClick && ev.Element.Label() == label {
			out = append(out, ev)
		}
	}
	return out
}

func TestWhatsApp_MessageFieldMovedByKeyboard(t *testing.T) {
	withKeyboard := []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Text("Alice Smith", 40, 80, 600, 100),
		fd.Field("", "Type a message", 40, 1200, 800, 120),
		fd.Button("", "Send", 900, 1200, 140, 120),
	)}
	screens := map[string][]model.ScreenElement{
		"New chat":    whatsAppSearch(fd.Button("Alice Smith", "", 0, 600, 1080, 150)),
		"Alice Smith": chatScreen("Alice Smith", "Type a message"),
	}
	dev := fd.New(whatsAppHome()...)
	dev.OnEvent = func(d *fd.Device, ev fd.Event) {
		if ev.Kind == "action" && ev.Action == platform.ActionClick &&
			ev.Element.Label() == "Type a message" && ev.Element.Bounds[1] == 2200 {
			d.SetScreen(withKeyboard...)
			return
		}
		onClick(screens)(d, ev)
	}
	d, _, _ := newDeps(dev)

	require.True(t, NewWhatsApp(d).Send(context.Background(), "Alice Smith", "running late"))

	actions := fieldActions(dev, "Type a message")
	require.NotEmpty(t, actions)
	for _, ev := range actions {
		assert.Equal(t, 1200, ev.Element.Bounds[1], "%s went to the field's old position", ev.Action)
	}
	assert.Equal(t, []string{"Alice Smith", "running late"}, typed(dev))
}

func TestTelegram_SearchFieldMovedAfterClick(t *testing.T) {
	home := []model.ScreenElement{fd.Group("android.widget.FrameLayout",
		fd.Button("", "Search", 900, 60, 150, 120),
	)}
	search := func(y int) []model.ScreenElement {
		return []model.ScreenElement{fd.Group("android.widget.FrameLayout",
			fd.Field("", "Search chats", 0, y, 1080, 120),
			fd.Group("androidx.recyclerview.widget.RecyclerView", fd.Button("Carol", "", 0, 700, 1080, 150)),
		)}
	}
	dev := fd.New(home...)
	dev.OnEvent = func(d *fd.Device, ev fd.Event) {
		if ev.Kind != "action" || ev.Action != platform.ActionClick {
			return
		}
		switch {
		case ev.Element.Editable && ev.Element.Bounds[1] == 60:
			d.SetScreen(search(160)...)
		case ev.Element.Label() == "Search":
			d.SetScreen(search(60)...)
		case ev.Element.Label() == "Carol":
			d.SetScreen(chatScreen("Carol", "Message")...)
		}
	}
	d, _, _ := newDeps(dev)

	require.True(t, NewTelegram(d).Send(context.Background(), "Carol", "meeting moved"))

	// The fake never echoes typed text, so the retype path runs as well.
	actions := fieldActions(dev, "Search chats")
	require.NotEmpty(t, actions)
	for _, ev := range actions {
		assert.Equal(t, 160, ev.Element.Bounds[1], "%s went to the field's old position", ev.Action)
	}
}

func TestWhatsApp_UnknownScreenSizeDoesNotGuessSend(t *testing.T) {
	dev := fd.New(whatsAppHome()...)
	dev.Size = model.ScreenSize{}
	dev.OnEvent = onClick(map[string][]model.ScreenElement{
		"New chat": whatsAppSearch(fd.Button("Alice", "", 0, 600, 1080, 150)),
		"Alice": {fd.Group("android.widget.FrameLayout",
			fd.Button("", "Back", 0, 80, 120, 120),
			fd.Field("", "Type a message", 40, 2200, 800, 120),
		)},
	})
	d, _, _ := newDeps(dev)

	assert.False(t, NewWhatsApp(d).Send(context.Background(), "Alice", "running late"))
	assert.NotContains(t, clicked(dev), "Back")
}

// Package executor performs device actions that need no UI tree search:
// launching apps, firing navigation intents and toggling radios.
package executor

import (
	"context"
	"net/url"
	"strings"

	"github.com/mj1618/devicepilot/internal/platform"
	"go.uber.org/zap"
)

// SDK levels from which Android forbids apps from switching radios.
const (
	sdkWifiPanelOnly      = 29
	sdkBluetoothPanelOnly = 31
)

// Search engines understood by OpenSearch.
const (
	EngineGoogle  = "google"
	EngineYouTube = "youtube"
)

// RadioOutcome reports how far a radio toggle got.
type RadioOutcome int

const (
	RadioFailed RadioOutcome = iota
	// RadioToggled means the state was changed directly.
	RadioToggled
	// RadioSettingsOpened means the OS forbids direct control and the
	// settings surface was opened instead. The radio state is unchanged.
	RadioSettingsOpened
)

// OK reports whether the platform accepted the request at any level.
func (o RadioOutcome) OK() bool { return o != RadioFailed }

// Executor performs package-level actions. Every method reports success as
// "request accepted by the platform" and never returns an error.
type Executor struct {
	p   *platform.Provider
	dir *Directory
	log *zap.Logger
}

// New creates an Executor.
func New(p *platform.Provider, dir *Directory, log *zap.Logger) *Executor {
	if dir == nil {
		dir = NewDirectory(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{p: p, dir: dir, log: log}
}

// ResolveAppIdentity maps a common app name to a package.
func (x *Executor) ResolveAppIdentity(ctx context.Context, name string) (string, bool) {
	var launcher platform.Launcher
	if x.p != nil {
		launcher = x.p.Launcher
	}
	return x.dir.Resolve(ctx, name, launcher)
}

// LaunchApp starts the launcher entry point of pkg.
func (x *Executor) LaunchApp(ctx context.Context, pkg string) bool {
	if pkg == "" || x.p == nil || x.p.Launcher == nil {
		return false
	}
	if err := x.p.Launcher.Launch(ctx, pkg); err != nil {
		x.log.Warn("launch failed", zap.String("package", pkg), zap.Error(err))
		return false
	}
	x.log.Debug("launched app", zap.String("package", pkg))
	return true
}

// OpenApp resolves name and launches it.
func (x *Executor) OpenApp(ctx context.Context, name string) bool {
	pkg, ok := x.ResolveAppIdentity(ctx, name)
	if !ok {
		x.log.Debug("no package for app", zap.String("app", name))
		return false
	}
	return x.LaunchApp(ctx, pkg)
}

// OpenURL opens a web address, adding https:// when no scheme is given.
func (x *Executor) OpenURL(ctx context.Context, raw string) bool {
	u := strings.TrimSpace(raw)
	if u == "" {
		return false
	}
	return x.view(ctx, NormalizeURL(u))
}

// NormalizeURL prefixes https:// unless the URL already has an http scheme.
func NormalizeURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

// OpenSearch opens a search on google or youtube. Unknown engines use google.
func (x *Executor) OpenSearch(ctx context.Context, engine, query string) bool {
	return x.view(ctx, SearchURL(engine, query))
}

// SearchURL builds the results URL for engine.
func SearchURL(engine, query string) string {
	if strings.EqualFold(engine, EngineYouTube) {
		return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// OpenMapsQuery opens the maps app on a location search.
func (x *Executor) OpenMapsQuery(ctx context.Context, location string) bool {
	return x.view(ctx, "geo:0,0?q="+url.QueryEscape(location))
}

// DialNumber opens the dialer with number pre-filled.
func (x *Executor) DialNumber(ctx context.Context, number string) bool {
	if strings.TrimSpace(number) == "" {
		return false
	}
	return x.start(ctx, platform.Intent{Action: platform.IntentDial, Data: "tel:" + strings.TrimSpace(number)})
}

// ComposeEmail opens the mail composer.
func (x *Executor) ComposeEmail(ctx context.Context, address, subject, body string) bool {
	return x.start(ctx, platform.Intent{
		Action: platform.IntentSendTo,
		Data:   "mailto:" + address,
		Extras: map[string]string{
			"android.intent.extra.SUBJECT": subject,
			"android.intent.extra.TEXT":    body,
		},
	})
}

// OpenAccessibilitySettings opens the screen where automation is enabled.
func (x *Executor) OpenAccessibilitySettings(ctx context.Context) bool {
	return x.start(ctx, platform.Intent{Action: platform.SettingsAccess})
}

// ToggleWifi switches Wi-Fi directly below Android 10, otherwise opens the
// Wi-Fi panel.
func (x *Executor) ToggleWifi(ctx context.Context, enable bool) RadioOutcome {
	return x.toggle(ctx, "wifi", enable, sdkWifiPanelOnly, platform.SettingsWifi,
		func(r platform.RadioController) error { return r.SetWifi(ctx, enable) })
}

// ToggleBluetooth switches Bluetooth directly below Android 12, otherwise
// opens Bluetooth settings.
func (x *Executor) ToggleBluetooth(ctx context.Context, enable bool) RadioOutcome {
	return x.toggle(ctx, "bluetooth", enable, sdkBluetoothPanelOnly, platform.SettingsBT,
		func(r platform.RadioController) error { return r.SetBluetooth(ctx, enable) })
}

func (x *Executor) toggle(ctx context.Context, radio string, enable bool, panelFrom int, settings string, set func(platform.RadioController) error) RadioOutcome {
	if x.p == nil || x.p.Radio == nil {
		return RadioFailed
	}
	sdk, err := x.p.Radio.SDKLevel(ctx)
	if err != nil {
		x.log.Warn("sdk level unavailable", zap.String("radio", radio), zap.Error(err))
		return RadioFailed
	}
	if sdk < panelFrom {
		if err := set(x.p.Radio); err != nil {
			x.log.Warn("radio toggle rejected", zap.String("radio", radio), zap.Bool("enable", enable), zap.Error(err))
			return RadioFailed
		}
		return RadioToggled
	}
	if !x.start(ctx, platform.Intent{Action: settings}) {
		return RadioFailed
	}
	return RadioSettingsOpened
}

func (x *Executor) view(ctx context.Context, uri string) bool {
	return x.start(ctx, platform.Intent{Action: platform.IntentView, Data: uri})
}

// StartIntent hands an arbitrary intent to the platform.
func (x *Executor) StartIntent(ctx context.Context, intent platform.Intent) bool {
	return x.start(ctx, intent)
}

func (x *Executor) start(ctx context.Context, intent platform.Intent) bool {
	if x.p == nil || x.p.Navigator == nil {
		return false
	}
	if err := x.p.Navigator.StartIntent(ctx, intent); err != nil {
		x.log.Warn("intent rejected", zap.String("action", intent.Action), zap.String("data", intent.Data), zap.Error(err))
		return false
	}
	x.log.Debug("intent started", zap.String("action", intent.Action), zap.String("data", intent.Data))
	return true
}

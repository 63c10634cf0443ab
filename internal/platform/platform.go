package platform

import (
	"context"
	"time"

	"github.com/mj1618/devicepilot/internal/model"
)

// Reader reads the live UI element tree from the device accessibility layer.
// Every call returns a fresh snapshot.
type Reader interface {
	// ReadScreen returns the element tree of the foreground window.
	ReadScreen(ctx context.Context) ([]model.ScreenElement, error)

	// ScreenSize returns the display size in pixels.
	ScreenSize(ctx context.Context) (model.ScreenSize, error)
}

// ActionPerformer performs accessibility actions directly on UI elements.
type ActionPerformer interface {
	PerformAction(ctx context.Context, el model.ScreenElement, opts ActionOptions) error
}

// Gesturer synthesizes touch input at raw screen coordinates.
type Gesturer interface {
	Tap(ctx context.Context, x, y int) error
	LongPress(ctx context.Context, x, y int, d time.Duration) error
}

// Launcher starts applications and lists the installed ones.
type Launcher interface {
	// Launch starts the launcher activity of the given package.
	Launch(ctx context.Context, pkg string) error

	// InstalledApps returns the launchable applications on the device.
	InstalledApps(ctx context.Context) ([]AppInfo, error)
}

// Navigator hands navigation intents to the platform. Success means the
// platform accepted the request, not that the destination handled it.
type Navigator interface {
	StartIntent(ctx context.Context, intent Intent) error
}

// RadioController toggles system radios where the OS allows it.
type RadioController interface {
	SDKLevel(ctx context.Context) (int, error)
	SetWifi(ctx context.Context, enable bool) error
	SetBluetooth(ctx context.Context, enable bool) error
}

// Screenshotter captures screenshots.
type Screenshotter interface {
	// Capture returns a PNG encoded screenshot of the whole display.
	Capture(ctx context.Context) ([]byte, error)
}

// AutomationChecker reports whether an automation agent is attached and able
// to drive other applications' UI.
type AutomationChecker interface {
	AutomationAvailable(ctx context.Context) bool
}

// Describer reports static facts about the attached device.
type Describer interface {
	DeviceInfo(ctx context.Context) (DeviceInfo, error)
}

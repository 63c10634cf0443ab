// Package fakedevice is an in-memory device backend for tests. Screens are
// plain element trees; hooks let a test swap the screen after an action the
// way a real app transitions.
package fakedevice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/platform"
)

// Event records one call into the device.
type Event struct {
	Kind    string // action, tap, longpress, launch, intent, wifi, bluetooth
	Element model.ScreenElement
	Action  platform.Action
	Text    string
	X, Y    int
	Package string
	Intent  platform.Intent
	Enable  bool
}

// Device implements every platform capability in memory.
type Device struct {
	mu sync.Mutex

	Screen     []model.ScreenElement
	Size       model.ScreenSize
	Automation bool
	SDK        int
	Apps       []platform.AppInfo
	Packages   map[string]bool // launchable packages; nil means any
	// Image is returned by Capture; nil makes Capture fail.
	Image []byte

	// Fail makes the named event kind return an error.
	Fail map[string]bool
	// OnEvent runs after each recorded event with the lock released.
	OnEvent func(d *Device, ev Event)

	Events []Event
	Reads  int
}

// New returns a device with a 1080x2400 screen and automation attached.
func New(screen ...model.ScreenElement) *Device {
	d := &Device{
		Size:       model.ScreenSize{Width: 1080, Height: 2400},
		Automation: true,
		SDK:        34,
	}
	d.SetScreen(screen...)
	return d
}

// Provider exposes d as a platform.Provider.
func (d *Device) Provider() *platform.Provider {
	return &platform.Provider{
		Reader:          d,
		ActionPerformer: d,
		Gesturer:        d,
		Launcher:        d,
		Navigator:       d,
		Radio:           d,
		Screenshotter:   d,
		Automation:      d,
		Describer:       d,
	}
}

// SetScreen replaces the current screen and renumbers it.
func (d *Device) SetScreen(screen ...model.ScreenElement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Screen = screen
	model.AssignIDs(d.Screen)
}

// EventsOf returns recorded events of one kind.
func (d *Device) EventsOf(kind string) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Event
	for _, ev := range d.Events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// ReadCount returns how many times the tree was read.
func (d *Device) ReadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Reads
}

var errInjected = errors.New("fakedevice: injected failure")

func (d *Device) record(ev Event) error {
	d.mu.Lock()
	d.Events = append(d.Events, ev)
	fail := d.Fail[ev.Kind]
	hook := d.OnEvent
	d.mu.Unlock()
	if fail {
		return errInjected
	}
	if hook != nil {
		hook(d, ev)
	}
	return nil
}

func (d *Device) ReadScreen(context.Context) ([]model.ScreenElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Reads++
	if d.Fail["read"] {
		return nil, errInjected
	}
	return cloneTree(d.Screen), nil
}

func (d *Device) ScreenSize(context.Context) (model.ScreenSize, error) {
	return d.Size, nil
}

func (d *Device) PerformAction(_ context.Context, el model.ScreenElement, opts platform.ActionOptions) error {
	return d.record(Event{Kind: "action", Element: el, Action: opts.Action, Text: opts.Text})
}

func (d *Device) Tap(_ context.Context, x, y int) error {
	return d.record(Event{Kind: "tap", X: x, Y: y})
}

func (d *Device) LongPress(_ context.Context, x, y int, _ time.Duration) error {
	return d.record(Event{Kind: "longpress", X: x, Y: y})
}

func (d *Device) Launch(_ context.Context, pkg string) error {
	d.mu.Lock()
	known := d.Packages == nil || d.Packages[pkg]
	d.mu.Unlock()
	if err := d.record(Event{Kind: "launch", Package: pkg}); err != nil {
		return err
	}
	if !known {
		return errors.New("fakedevice: package not installed")
	}
	return nil
}

func (d *Device) InstalledApps(context.Context) ([]platform.AppInfo, error) {
	return d.Apps, nil
}

func (d *Device) StartIntent(_ context.Context, intent platform.Intent) error {
	return d.record(Event{Kind: "intent", Intent: intent})
}

func (d *Device) SDKLevel(context.Context) (int, error) {
	return d.SDK, nil
}

func (d *Device) SetWifi(_ context.Context, enable bool) error {
	return d.record(Event{Kind: "wifi", Enable: enable})
}

func (d *Device) SetBluetooth(_ context.Context, enable bool) error {
	return d.record(Event{Kind: "bluetooth", Enable: enable})
}

func (d *Device) Capture(context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Image == nil {
		return nil, errors.New("fakedevice: no screenshot image set")
	}
	return d.Image, nil
}

func (d *Device) AutomationAvailable(context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Automation
}

func (d *Device) DeviceInfo(context.Context) (platform.DeviceInfo, error) {
	return platform.DeviceInfo{Model: "fake", SDK: d.SDK, Width: d.Size.Width, Height: d.Size.Height, Attached: d.Automation}, nil
}

func cloneTree(elements []model.ScreenElement) []model.ScreenElement {
	if elements == nil {
		return nil
	}
	out := make([]model.ScreenElement, len(elements))
	for i, el := range elements {
		out[i] = el
		out[i].Children = cloneTree(el.Children)
	}
	return out
}

// Node builders keep test screens readable.

// Text returns a non-interactive text node.
func Text(text string, x, y, w, h int) model.ScreenElement {
	return model.ScreenElement{Role: "txt", Class: "android.widget.TextView", Text: text, Bounds: [4]int{x, y, w, h}}
}

// Button returns a clickable node with text and description.
func Button(text, desc string, x, y, w, h int) model.ScreenElement {
	return model.ScreenElement{Role: "btn", Class: "android.widget.Button", Text: text, Description: desc, Bounds: [4]int{x, y, w, h}, Clickable: true}
}

// Field returns an editable node.
func Field(text, desc string, x, y, w, h int) model.ScreenElement {
	return model.ScreenElement{Role: "input", Class: "android.widget.EditText", Text: text, Description: desc, Bounds: [4]int{x, y, w, h}, Clickable: true, Editable: true}
}

// Group returns a layout container.
func Group(class string, children ...model.ScreenElement) model.ScreenElement {
	return model.ScreenElement{Role: model.MapRole(class), Class: class, Bounds: [4]int{0, 0, 1080, 2400}, Children: children}
}

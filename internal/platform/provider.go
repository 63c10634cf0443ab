package platform

import (
	"errors"
	"fmt"
)

// Provider bundles all device backends.
type Provider struct {
	Reader          Reader
	ActionPerformer ActionPerformer
	Gesturer        Gesturer
	Launcher        Launcher
	Navigator       Navigator
	Radio           RadioController
	Screenshotter   Screenshotter
	Automation      AutomationChecker
	Describer       Describer
}

// ErrUnsupported is returned when no device backend has been registered.
var ErrUnsupported = errors.New("devicepilot: no device backend registered")

// ErrNoDevice is returned by backends when no device is attached.
var ErrNoDevice = errors.New("devicepilot: no device attached")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/adb/init.go for the Android registration.
var NewProviderFunc func(opts Options) (*Provider, error)

// NewProvider returns a Provider for the configured device backend.
func NewProvider(opts Options) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	p, err := NewProviderFunc(opts)
	if err != nil {
		return nil, fmt.Errorf("create device provider: %w", err)
	}
	return p, nil
}

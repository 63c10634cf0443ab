package adb

import (
	"fmt"
	"os/exec"

	"github.com/mj1618/devicepilot/internal/platform"
)

func init() {
	platform.NewProviderFunc = func(opts platform.Options) (*platform.Provider, error) {
		path := opts.ADBPath
		if path == "" {
			found, err := exec.LookPath("adb")
			if err != nil {
				return nil, fmt.Errorf("adb not found in PATH: %w", err)
			}
			path = found
		}
		c := NewClient(path, opts.Serial)
		return NewProvider(c), nil
	}
}

// NewProvider builds a Provider whose every capability is backed by c.
func NewProvider(c *Client) *platform.Provider {
	reader := NewReader(c)
	return &platform.Provider{
		Reader:          reader,
		ActionPerformer: NewActionPerformer(c),
		Gesturer:        c,
		Launcher:        c,
		Navigator:       c,
		Radio:           c,
		Screenshotter:   c,
		Automation:      c,
		Describer:       c,
	}
}

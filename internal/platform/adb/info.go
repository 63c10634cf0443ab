package adb

import (
	"context"

	"github.com/mj1618/devicepilot/internal/platform"
	"golang.org/x/sync/errgroup"
)

// DeviceInfo probes model, release, SDK level and display size in parallel.
func (c *Client) DeviceInfo(ctx context.Context) (platform.DeviceInfo, error) {
	info := platform.DeviceInfo{Serial: c.serial}
	if !c.AutomationAvailable(ctx) {
		return info, platform.ErrNoDevice
	}
	info.Attached = true

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := c.shell(gctx, "getprop", "ro.product.model")
		info.Model = out
		return err
	})
	g.Go(func() error {
		out, err := c.shell(gctx, "getprop", "ro.build.version.release")
		info.Release = out
		return err
	})
	g.Go(func() error {
		sdk, err := c.SDKLevel(gctx)
		info.SDK = sdk
		return err
	})
	g.Go(func() error {
		size, err := NewReader(c).ScreenSize(gctx)
		info.Width, info.Height = size.Width, size.Height
		return err
	})
	if err := g.Wait(); err != nil {
		return info, err
	}
	return info, nil
}

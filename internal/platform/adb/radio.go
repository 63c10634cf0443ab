package adb

import (
	"context"
	"fmt"
	"strconv"
)

// SDKLevel returns ro.build.version.sdk.
func (c *Client) SDKLevel(ctx context.Context) (int, error) {
	out, err := c.shell(ctx, "getprop", "ro.build.version.sdk")
	if err != nil {
		return 0, fmt.Errorf("read sdk level: %w", err)
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("read sdk level: unexpected %q", out)
	}
	return n, nil
}

// SetWifi switches Wi-Fi through svc.
func (c *Client) SetWifi(ctx context.Context, enable bool) error {
	if _, err := c.shell(ctx, "svc", "wifi", enableArg(enable)); err != nil {
		return fmt.Errorf("svc wifi: %w", err)
	}
	return nil
}

// SetBluetooth switches Bluetooth through svc.
func (c *Client) SetBluetooth(ctx context.Context, enable bool) error {
	if _, err := c.shell(ctx, "svc", "bluetooth", enableArg(enable)); err != nil {
		return fmt.Errorf("svc bluetooth: %w", err)
	}
	return nil
}

func enableArg(enable bool) string {
	if enable {
		return "enable"
	}
	return "disable"
}

package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mj1618/devicepilot/internal/platform"
)

// Runner executes one adb invocation and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Client issues adb commands against one device.
type Client struct {
	path   string
	serial string
	run    Runner
}

// NewClient returns a Client that invokes the adb binary at path.
func NewClient(path, serial string) *Client {
	c := &Client{path: path, serial: serial}
	c.run = c.execRun
	return c
}

// NewClientWithRunner returns a Client that sends every invocation to run.
func NewClientWithRunner(serial string, run Runner) *Client {
	return &Client{serial: serial, run: run}
}

func (c *Client) execRun(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "no devices") || strings.Contains(msg, "not found") {
			return nil, fmt.Errorf("%w: %s", platform.ErrNoDevice, msg)
		}
		if msg != "" {
			return nil, fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// adb runs an adb subcommand, prefixed with -s when a serial is set.
func (c *Client) adb(ctx context.Context, args ...string) ([]byte, error) {
	if c.serial != "" {
		args = append([]string{"-s", c.serial}, args...)
	}
	return c.run(ctx, args...)
}

// shell runs a command in the device shell and returns trimmed stdout.
func (c *Client) shell(ctx context.Context, args ...string) (string, error) {
	out, err := c.adb(ctx, append([]string{"shell"}, args...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// execOut runs a command with binary-safe stdout.
func (c *Client) execOut(ctx context.Context, args ...string) ([]byte, error) {
	return c.adb(ctx, append([]string{"exec-out"}, args...)...)
}

// AutomationAvailable reports whether a device is attached and online.
func (c *Client) AutomationAvailable(ctx context.Context) bool {
	out, err := c.adb(ctx, "get-state")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "device"
}

package adb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/devicepilot/internal/platform"
)

// StartIntent sends the intent through `am start`.
func (c *Client) StartIntent(ctx context.Context, intent platform.Intent) error {
	args := intentArgs(intent)
	out, err := c.shell(ctx, args...)
	if err != nil {
		return fmt.Errorf("start intent %s: %w", intent.Action, err)
	}
	if strings.Contains(out, "Error:") {
		return fmt.Errorf("start intent %s: %s", intent.Action, out)
	}
	return nil
}

func intentArgs(intent platform.Intent) []string {
	args := []string{"am", "start"}
	if intent.Action != "" {
		args = append(args, "-a", intent.Action)
	}
	if intent.Data != "" {
		args = append(args, "-d", shellQuote(intent.Data))
	}
	if intent.Category != "" {
		args = append(args, "-c", intent.Category)
	}
	keys := make([]string, 0, len(intent.Extras))
	for k := range intent.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--es", k, shellQuote(intent.Extras[k]))
	}
	if intent.Package != "" {
		args = append(args, intent.Package)
	}
	return args
}

// shellQuote wraps s in single quotes for the device shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

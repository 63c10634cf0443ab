package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mj1618/devicepilot/internal/chat"
	"github.com/mj1618/devicepilot/internal/config"
	"github.com/mj1618/devicepilot/internal/output"
	"github.com/mj1618/devicepilot/internal/platform"
	fd "github.com/mj1618/devicepilot/internal/platform/fakedevice"
)

// resetFlags restores every flag in the tree to its default so rootCmd can
// be executed more than once per process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// stubGenerator answers every prompt with reply and records the prompts.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

// cli is one isolated command-line environment: a temp config and chat
// database, and an optional fake device.
type cli struct {
	t       *testing.T
	dir     string
	cfgPath string
	dev     *fd.Device
}

// newCLI points the command tree at dev (nil means no device attached).
// The classifier endpoint is unroutable so nothing leaves the machine.
func newCLI(t *testing.T, dev *fd.Device) *cli {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DEVICEPILOT_DB", "")
	t.Setenv("DEVICEPILOT_LOG_LEVEL", "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`gemini:
  base_url: http://127.0.0.1:1
  timeout: 2s
automation:
  settle_ms: 0
chat:
  db_path: %s
log:
  level: error
`, filepath.Join(dir, "chats.db"))
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	origProvider, origGenerator := newProvider, newGenerator
	newProvider = func(platform.Options) (*platform.Provider, error) {
		if dev == nil {
			return nil, platform.ErrNoDevice
		}
		return dev.Provider(), nil
	}
	t.Cleanup(func() {
		newProvider, newGenerator = origProvider, origGenerator
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		cfg, logger = nil, zap.NewNop()
		output.OutputFormat, output.PrettyOutput = output.FormatYAML, false
	})
	return &cli{t: t, dir: dir, cfgPath: cfgPath, dev: dev}
}

// withGenerator enables chat with gen standing in for the remote model.
func (c *cli) withGenerator(gen chat.Generator) *cli {
	c.t.Setenv("GEMINI_API_KEY", "test-key")
	newGenerator = func(context.Context, *config.Config) (chat.Generator, error) {
		return gen, nil
	}
	return c
}

// run executes the root command with args and returns stdout.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", c.cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("devicepilot %v: %v\noutput:\n%s", args, err, out)
	}
	return out
}

// homeScreen is a messaging app's chat list.
func homeScreen() *fd.Device {
	return fd.New(fd.Group("android.widget.FrameLayout",
		fd.Text("Chats", 0, 100, 1080, 80),
		fd.Group("android.widget.LinearLayout"),
		fd.Button("", "New chat", 900, 2200, 120, 120),
		fd.Field("", "Search...", 0, 200, 1080, 100),
	))
}

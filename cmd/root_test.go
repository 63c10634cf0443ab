package cmd

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mj1618/devicepilot/internal/config"
	"github.com/mj1618/devicepilot/internal/strategy"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "classify", "read", "find", "tap", "type", "open", "list", "wait", "screenshot", "status", "serve", "chat", "config"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestChatCommand_HasSubcommands(t *testing.T) {
	expected := []string{"send", "repl", "summarize", "list", "show", "delete", "search", "categories", "export", "import"}
	found := make(map[string]bool)
	for _, c := range chatCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected chat subcommand %q not found", name)
		}
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	tests := []struct {
		name     string
		flagType string
	}{
		{"format", "string"},
		{"pretty", "bool"},
		{"config", "string"},
		{"serial", "string"},
		{"log-level", "string"},
		{"verbose", "bool"},
	}
	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		if f == nil {
			t.Errorf("expected persistent flag %q not found", tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("flag %q: expected type %q, got %q", tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
	if !strings.Contains(rootCmd.Version, "commit:") {
		t.Errorf("version %q should include the commit", rootCmd.Version)
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	c := newCLI(t, homeScreen())
	if _, err := c.run("--format", "xml", "status"); err == nil {
		t.Error("expected an error for --format xml")
	}
}

func TestRootCommand_JSONFormat(t *testing.T) {
	c := newCLI(t, homeScreen())
	out := c.mustRun("--format", "json", "list", "--platforms")
	if strings.TrimSpace(out) != `["sms","telegram","whatsapp"]` {
		t.Errorf("unexpected JSON output: %q", out)
	}
}

func TestTimingFromConfig(t *testing.T) {
	got := timingFromConfig(config.AutomationConfig{LaunchMs: 1000, TypingMs: 100})
	if got.Launch != time.Second || got.SlowLaunch != 2*time.Second {
		t.Errorf("launch timing = %v/%v, want 1s/2s", got.Launch, got.SlowLaunch)
	}
	if got.Typing != 100*time.Millisecond {
		t.Errorf("typing = %v, want 100ms", got.Typing)
	}
	if def := strategy.DefaultTiming(); got.Transition != def.Transition {
		t.Errorf("zero transition should keep the default %v, got %v", def.Transition, got.Transition)
	}
}

// countingSyncer counts Sync calls on a log sink.
type countingSyncer struct {
	bytes.Buffer
	syncs atomic.Int32
}

func (s *countingSyncer) Sync() error {
	s.syncs.Add(1)
	return nil
}

func TestExecute_SyncsLoggerOnFailure(t *testing.T) {
	newCLI(t, nil)
	sink := &countingSyncer{}
	logger = zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		zapcore.DebugLevel,
	))
	rootCmd.SetArgs([]string{"--no-such-flag"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	if err := execute(context.Background()); err == nil {
		t.Fatal("expected an unknown flag error")
	}
	if got := sink.syncs.Load(); got != 1 {
		t.Errorf("got %d syncs, want 1", got)
	}
}

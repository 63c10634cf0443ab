package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/devicepilot/internal/chat"
	"github.com/mj1618/devicepilot/internal/classifier"
	"github.com/mj1618/devicepilot/internal/config"
	"github.com/mj1618/devicepilot/internal/dispatcher"
	"github.com/mj1618/devicepilot/internal/executor"
	"github.com/mj1618/devicepilot/internal/explorer"
	"github.com/mj1618/devicepilot/internal/intent"
	"github.com/mj1618/devicepilot/internal/platform"
	"github.com/mj1618/devicepilot/internal/status"
	"github.com/mj1618/devicepilot/internal/strategy"
)

// newProvider and newGenerator are swapped out by tests.
var (
	newProvider  = platform.NewProvider
	newGenerator = func(ctx context.Context, c *config.Config) (chat.Generator, error) {
		return chat.NewGeminiClient(ctx, chat.GeminiConfig{
			APIKey:  c.Gemini.APIKey,
			Model:   c.Gemini.Model,
			Timeout: c.GeminiTimeout(),
		}, logger)
	}
)

// components is the object graph behind every device command.
type components struct {
	provider   *platform.Provider
	tracker    *status.Tracker
	explorer   *explorer.Explorer
	executor   *executor.Executor
	registry   *strategy.Registry
	classifier *classifier.Classifier
	dispatcher *dispatcher.Dispatcher
}

// loadedConfig returns the config parsed by the root command, or defaults
// when a command runs without it (as in unit tests).
func loadedConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

func openProvider() (*platform.Provider, error) {
	c := loadedConfig()
	return newProvider(platform.Options{ADBPath: c.Device.ADBPath, Serial: c.Device.Serial})
}

// buildComponents wires the device stack. With offline set the remote
// classifier is left out and every utterance goes through local extraction.
func buildComponents(offline bool) (*components, error) {
	c := loadedConfig()
	provider, err := openProvider()
	if err != nil {
		return nil, err
	}

	tracker := status.NewTracker(logger)
	exp := explorer.New(provider,
		explorer.WithSettle(time.Duration(c.Automation.SettleMs)*time.Millisecond),
		explorer.WithLogger(logger),
	)
	exe := executor.New(provider, executor.NewDirectory(c.Automation.Aliases), logger)
	registry := strategy.DefaultRegistry(strategy.Deps{
		Explorer:    exp,
		Executor:    exe,
		Status:      tracker,
		Log:         logger,
		Timing:      timingFromConfig(c.Automation),
		CountryCode: c.Automation.CountryCode,
	})

	comp := &components{
		provider: provider,
		tracker:  tracker,
		explorer: exp,
		executor: exe,
		registry: registry,
	}

	opts := dispatcher.Options{
		Fallback:   intent.Fallback,
		Actions:    exe,
		Messengers: registry,
		Automation: provider.Automation,
		Status:     tracker,
		Log:        logger,
	}
	if !offline {
		cl := classifier.New(classifier.Config{
			APIKey:  c.Gemini.APIKey,
			BaseURL: c.Gemini.BaseURL,
			Model:   c.Gemini.Model,
			Timeout: c.GeminiTimeout(),
		}, logger)
		if cl.Available() {
			comp.classifier = cl
			opts.Classifier = cl
		}
	}
	comp.dispatcher = dispatcher.New(opts)
	return comp, nil
}

// timingFromConfig overlays the configured delays on the defaults. A zero
// value keeps the default.
func timingFromConfig(a config.AutomationConfig) strategy.Timing {
	t := strategy.DefaultTiming()
	if a.LaunchMs > 0 {
		t.Launch = time.Duration(a.LaunchMs) * time.Millisecond
		t.SlowLaunch = t.Launch + time.Second
	}
	if a.TransitionMs > 0 {
		t.Transition = time.Duration(a.TransitionMs) * time.Millisecond
	}
	if a.TypingMs > 0 {
		t.Typing = time.Duration(a.TypingMs) * time.Millisecond
	}
	return t
}

func openChatStore() (*chat.Store, error) {
	return chat.Open(loadedConfig().Chat.DBPath, logger)
}

var errNoAPIKey = errors.New("GEMINI_API_KEY is not set; add it to the environment, .env, or the config file")

func openGenerator(ctx context.Context) (chat.Generator, error) {
	c := loadedConfig()
	if c.Gemini.APIKey == "" {
		return nil, errNoAPIKey
	}
	gen, err := newGenerator(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	return gen, nil
}

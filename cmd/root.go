package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/devicepilot/internal/config"
	"github.com/mj1618/devicepilot/internal/logging"
	"github.com/mj1618/devicepilot/internal/output"
	"github.com/mj1618/devicepilot/internal/version"
)

var (
	// cfg and logger are set by the root PersistentPreRunE.
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "devicepilot",
	Short: "Drive an Android device with natural-language commands",
	Long: `devicepilot turns utterances like "open youtube" or "send running late to Alice
on whatsapp" into actions on an Android device attached over adb, and hosts a
Gemini-backed chat assistant with local history.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context so
// long automation flows and the MCP server stop cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and flushes the logger on every path,
// including failures, since os.Exit skips deferred calls.
func execute(ctx context.Context) error {
	defer syncLogger()
	return rootCmd.ExecuteContext(ctx)
}

func syncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().String("serial", "", "Device serial (overrides config and ANDROID_SERIAL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print automation progress to stderr")
	rootCmd.PersistentPreRunE = setup
}

func setup(cmd *cobra.Command, args []string) error {
	flags := rootCmd.PersistentFlags()

	path, _ := flags.GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if serial, _ := flags.GetString("serial"); serial != "" {
		loaded.Device.Serial = serial
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		loaded.Log.Level = level
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Development)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l

	format, _ := flags.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.PrettyOutput, _ = flags.GetBool("pretty")
	return nil
}

// printResult writes v to the command's stdout in the selected format.
func printResult(cmd *cobra.Command, v interface{}) error {
	return output.Fprint(cmd.OutOrStdout(), v)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// WaitResult is the output of a wait command.
type WaitResult struct {
	OK       bool   `yaml:"ok"                  json:"ok"`
	Action   string `yaml:"action"              json:"action"`
	Elapsed  string `yaml:"elapsed"             json:"elapsed"`
	Match    string `yaml:"match,omitempty"     json:"match,omitempty"`
	TimedOut bool   `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for text to appear on (or leave) the screen",
	Long:  "Poll the screen until an element's text or description contains the given text, or with --gone until none does, or the timeout is reached.",
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("text", "", "Text to wait for (case-insensitive substring of text or description)")
	waitCmd.Flags().Bool("gone", false, "Invert: wait until the text is no longer on screen")
	waitCmd.Flags().Int("timeout", 30, "Max seconds to wait")
	waitCmd.Flags().Int("interval", 500, "Polling interval in milliseconds")
}

func runWait(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	gone, _ := cmd.Flags().GetBool("gone")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	intervalMs, _ := cmd.Flags().GetInt("interval")

	if text == "" {
		return fmt.Errorf("--text is required")
	}

	provider, err := openProvider()
	if err != nil {
		return err
	}
	exp := newExplorer(provider)
	ctx := cmd.Context()

	timeout := time.Duration(timeoutSec) * time.Second
	interval := time.Duration(intervalMs) * time.Millisecond
	start := time.Now()
	deadline := start.Add(timeout)
	desc := describeWait(text, gone)

	for {
		// An unreadable screen counts as "text absent".
		present := false
		if screen := exp.Read(ctx); screen != nil {
			present = screen.ContainsText(text)
		}
		if present != gone {
			return printResult(cmd, WaitResult{
				OK:      true,
				Action:  "wait",
				Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
				Match:   desc,
			})
		}

		if time.Now().After(deadline) || ctx.Err() != nil {
			// Print the result, then return an error for non-zero exit code
			_ = printResult(cmd, WaitResult{
				OK:       false,
				Action:   "wait",
				Elapsed:  fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
				Match:    desc,
				TimedOut: true,
			})
			return fmt.Errorf("timed out waiting for %s", desc)
		}
		exp.Wait(ctx, interval)
	}
}

func describeWait(text string, gone bool) string {
	desc := fmt.Sprintf("text=%q", text)
	if gone {
		desc += " (gone)"
	}
	return desc
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/status"
)

var runCmd = &cobra.Command{
	Use:   "run <command...>",
	Short: "Run a natural-language command on the device",
	Long: `Classify a free-text command and execute it on the attached device.

The remote classifier is used when GEMINI_API_KEY is set; otherwise, or with
--offline, the local keyword extractor resolves the command.

Examples:
  devicepilot run open youtube
  devicepilot run "send running late to Alice on whatsapp"
  devicepilot run --offline turn off wifi`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("offline", false, "Skip the remote classifier and use local extraction only")
}

func runRun(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	utterance := strings.Join(args, " ")

	comp, err := buildComponents(offline)
	if err != nil {
		return err
	}
	if verbose {
		stop := streamStatus(cmd.ErrOrStderr(), comp.tracker)
		defer stop()
	}

	res := comp.dispatcher.Dispatch(cmd.Context(), utterance)
	if err := printResult(cmd, res); err != nil {
		return err
	}
	if !res.Executed {
		return fmt.Errorf("command not executed: %s", res.Message)
	}
	return nil
}

// streamStatus prints tracker events to w until the returned func is called.
func streamStatus(w io.Writer, t *status.Tracker) func() {
	events, cancel := t.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			fmt.Fprintf(w, "[%s] %s\n", ev.Operation, ev.Detail)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

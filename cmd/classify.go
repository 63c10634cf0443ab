package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/classifier"
	"github.com/mj1618/devicepilot/internal/intent"
)

// ClassifyResult is the output of the classify command.
type ClassifyResult struct {
	Utterance string        `yaml:"utterance" json:"utterance"`
	Source    string        `yaml:"source"    json:"source"`
	Command   bool          `yaml:"command"   json:"command"`
	Intent    intent.Intent `yaml:"intent"    json:"intent"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify <command...>",
	Short: "Show the intent a command resolves to without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Bool("offline", false, "Use local extraction only")
}

func runClassify(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	utterance := strings.Join(args, " ")

	result := ClassifyResult{
		Utterance: utterance,
		Source:    "fallback",
		Command:   intent.IsLikelyCommand(utterance),
	}

	if !offline {
		c := loadedConfig()
		cl := classifier.New(classifier.Config{
			APIKey:  c.Gemini.APIKey,
			BaseURL: c.Gemini.BaseURL,
			Model:   c.Gemini.Model,
			Timeout: c.GeminiTimeout(),
		}, logger)
		if cl.Available() {
			if in := cl.Classify(cmd.Context(), utterance); in != nil {
				result.Source = "classifier"
				result.Intent = *in
				return printResult(cmd, result)
			}
		}
	}

	result.Intent = intent.Fallback(utterance)
	return printResult(cmd, result)
}

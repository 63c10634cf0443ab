package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/platform"
	"github.com/mj1618/devicepilot/internal/version"
)

// StatusResult is the output of the status command.
type StatusResult struct {
	Version    string               `yaml:"version"                json:"version"`
	Device     *platform.DeviceInfo `yaml:"device,omitempty"       json:"device,omitempty"`
	DeviceErr  string               `yaml:"device_error,omitempty" json:"device_error,omitempty"`
	Automation bool                 `yaml:"automation"             json:"automation"`
	Classifier bool                 `yaml:"classifier"             json:"classifier"`
	Model      string               `yaml:"model"                  json:"model"`
	ChatDB     string               `yaml:"chat_db"                json:"chat_db"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device, automation, and configuration status",
	Long:  "Report the attached device, whether an automation agent is available to drive other apps, whether the remote classifier is configured, and where chats are stored.",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := loadedConfig()
	res := StatusResult{
		Version:    version.Version,
		Classifier: c.Gemini.APIKey != "",
		Model:      c.Gemini.Model,
		ChatDB:     c.Chat.DBPath,
	}

	// Device problems are reported, not returned: status is how users find
	// out why a device is unreachable.
	provider, err := openProvider()
	if err != nil {
		res.DeviceErr = err.Error()
		return printResult(cmd, res)
	}
	ctx := cmd.Context()
	if provider.Describer != nil {
		info, err := provider.Describer.DeviceInfo(ctx)
		if err != nil {
			res.DeviceErr = err.Error()
		} else {
			res.Device = &info
		}
	}
	if provider.Automation != nil {
		res.Automation = provider.Automation.AutomationAvailable(ctx)
	}
	return printResult(cmd, res)
}

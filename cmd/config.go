package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *loadedConfig()
	if shown.Gemini.APIKey != "" {
		shown.Gemini.APIKey = "<redacted>"
	}
	return printResult(cmd, shown)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path, _ := rootCmd.PersistentFlags().GetString("config")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	return printResult(cmd, map[string]interface{}{"ok": true, "path": path})
}

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/executor"
	"github.com/mj1618/devicepilot/internal/platform"
	"github.com/mj1618/devicepilot/internal/strategy"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed apps, app aliases, or messaging platforms",
	Long:  "List the launchable apps installed on the device (default), the app name aliases used to resolve \"open <app>\", or the messaging platforms \"send\" commands support.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("apps", false, "List installed launchable apps (default)")
	listCmd.Flags().Bool("aliases", false, "List app name aliases, configured ones first")
	listCmd.Flags().Bool("platforms", false, "List supported messaging platforms")
	listCmd.Flags().String("filter", "", "Only list entries whose name or package contains this")
}

// aliasEntry is one row of --aliases output.
type aliasEntry struct {
	Name    string `yaml:"name"    json:"name"`
	Package string `yaml:"package" json:"package"`
}

func runList(cmd *cobra.Command, args []string) error {
	aliases, _ := cmd.Flags().GetBool("aliases")
	platforms, _ := cmd.Flags().GetBool("platforms")
	filter, _ := cmd.Flags().GetString("filter")

	switch {
	case aliases:
		return printResult(cmd, filterAliases(aliasTable(loadedConfig().Automation.Aliases), filter))
	case platforms:
		return printResult(cmd, strategy.DefaultRegistry(strategy.Deps{Log: logger}).Platforms())
	}

	provider, err := openProvider()
	if err != nil {
		return err
	}
	if provider.Launcher == nil {
		return fmt.Errorf("app listing not available")
	}
	apps, err := provider.Launcher.InstalledApps(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list apps: %w", err)
	}
	return printResult(cmd, filterApps(apps, filter))
}

// aliasTable resolves every alias name through the same Directory "open"
// uses, so a configured alias shadowing a built-in one shows its override.
func aliasTable(extra map[string]string) []aliasEntry {
	dir := executor.NewDirectory(extra)
	var custom []string
	for name := range extra {
		custom = append(custom, strings.ToLower(strings.TrimSpace(name)))
	}
	sort.Strings(custom)

	var entries []aliasEntry
	for _, name := range append(custom, executor.AppNames()...) {
		if pkg, ok := dir.Lookup(name); ok {
			entries = append(entries, aliasEntry{Name: name, Package: pkg})
		}
	}
	return entries
}

func filterAliases(entries []aliasEntry, filter string) []aliasEntry {
	out := []aliasEntry{}
	for _, e := range entries {
		if matchesFilter(filter, e.Name, e.Package) {
			out = append(out, e)
		}
	}
	return out
}

func filterApps(apps []platform.AppInfo, filter string) []platform.AppInfo {
	out := []platform.AppInfo{}
	for _, a := range apps {
		if matchesFilter(filter, a.Label, a.Package) {
			out = append(out, a)
		}
	}
	return out
}

func matchesFilter(filter string, fields ...string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}

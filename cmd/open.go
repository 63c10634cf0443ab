package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/executor"
	"github.com/mj1618/devicepilot/internal/output"
)

var openCmd = &cobra.Command{
	Use:   "open [app name or url]",
	Short: "Open an app, a website, or a system screen",
	Long: `Open an installed app by name, a website, a maps search, the dialer, the
mail composer, or the accessibility settings.

A positional argument that looks like a web address opens in the browser;
anything else is resolved as an app name.

Examples:
  devicepilot open youtube
  devicepilot open github.com
  devicepilot open --maps "coffee near me"
  devicepilot open --dial 9876543210
  devicepilot open --email a@example.com --subject Hi --body "See you soon"
  devicepilot open --accessibility`,
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().String("url", "", "Open this web address")
	openCmd.Flags().String("app", "", "Open this app by name or package")
	openCmd.Flags().String("maps", "", "Open the maps app on this location search")
	openCmd.Flags().String("dial", "", "Open the dialer with this number")
	openCmd.Flags().String("email", "", "Open the mail composer to this address")
	openCmd.Flags().String("subject", "", "Email subject (with --email)")
	openCmd.Flags().String("body", "", "Email body (with --email)")
	openCmd.Flags().Bool("accessibility", false, "Open the accessibility settings screen")
}

// looksLikeURL reports whether s should be opened as a web address rather
// than resolved as an app name.
func looksLikeURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		return true
	}
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	dot := strings.LastIndex(s, ".")
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	// A package name like com.whatsapp is an app, not a host.
	return !strings.HasPrefix(s, "com.") && !strings.HasPrefix(s, "org.")
}

func runOpen(cmd *cobra.Command, args []string) error {
	urlStr, _ := cmd.Flags().GetString("url")
	appName, _ := cmd.Flags().GetString("app")
	maps, _ := cmd.Flags().GetString("maps")
	dial, _ := cmd.Flags().GetString("dial")
	email, _ := cmd.Flags().GetString("email")
	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("body")
	accessibility, _ := cmd.Flags().GetBool("accessibility")

	if len(args) > 0 {
		target := strings.Join(args, " ")
		if looksLikeURL(target) {
			urlStr = target
		} else {
			appName = target
		}
	}
	if urlStr == "" && appName == "" && maps == "" && dial == "" && email == "" && !accessibility {
		return fmt.Errorf("specify an app name, a URL, or one of --maps, --dial, --email, --accessibility")
	}

	provider, err := openProvider()
	if err != nil {
		return err
	}
	x := executor.New(provider, executor.NewDirectory(loadedConfig().Automation.Aliases), logger)
	ctx := cmd.Context()

	var action, target string
	var ok bool
	switch {
	case urlStr != "":
		action, target = "open-url", executor.NormalizeURL(urlStr)
		ok = x.OpenURL(ctx, urlStr)
	case appName != "":
		action, target = "open-app", appName
		ok = x.OpenApp(ctx, appName)
	case maps != "":
		action, target = "open-maps", maps
		ok = x.OpenMapsQuery(ctx, maps)
	case dial != "":
		action, target = "dial", dial
		ok = x.DialNumber(ctx, dial)
	case email != "":
		action, target = "email", email
		ok = x.ComposeEmail(ctx, email, subject, body)
	default:
		action = "open-accessibility-settings"
		ok = x.OpenAccessibilitySettings(ctx)
	}

	if !ok {
		if action == "open-app" {
			return fmt.Errorf("could not open %q: app not found or not launchable", target)
		}
		return fmt.Errorf("%s failed", action)
	}
	return printResult(cmd, output.ActionResult{OK: true, Action: action, Target: target})
}

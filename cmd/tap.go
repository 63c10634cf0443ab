package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/explorer"
	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/output"
	"github.com/mj1618/devicepilot/internal/platform"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap an element or a screen coordinate",
	Long: `Tap an element located by text, description, or ID, or tap raw screen coordinates.

Elements are clicked through the accessibility layer; when the element rejects
the click, a touch tap is sent to its center instead.`,
	RunE: runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	tapCmd.Flags().String("text", "", "Tap the first element whose text contains this")
	tapCmd.Flags().String("description", "", "Tap the first element whose content description contains this")
	tapCmd.Flags().Int("id", 0, "Tap the element with this ID from a fresh read")
	tapCmd.Flags().Bool("exact", false, "Require an exact text or description match")
	tapCmd.Flags().Int("x", -1, "Tap at this X coordinate")
	tapCmd.Flags().Int("y", -1, "Tap at this Y coordinate")
	tapCmd.Flags().String("action", "click", "Element action: click, long-click, or focus")
}

func newExplorer(provider *platform.Provider) *explorer.Explorer {
	return explorer.New(provider,
		explorer.WithSettle(time.Duration(loadedConfig().Automation.SettleMs)*time.Millisecond),
		explorer.WithLogger(logger),
	)
}

func runTap(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	desc, _ := cmd.Flags().GetString("description")
	id, _ := cmd.Flags().GetInt("id")
	exact, _ := cmd.Flags().GetBool("exact")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	actionName, _ := cmd.Flags().GetString("action")

	action, err := platform.ParseAction(actionName)
	if err != nil {
		return err
	}
	if action == platform.ActionSetText {
		return fmt.Errorf("use the type command to enter text")
	}

	byCoords := x >= 0 || y >= 0
	if byCoords && (x < 0 || y < 0) {
		return fmt.Errorf("--x and --y must be given together")
	}
	if !byCoords && text == "" && desc == "" && id == 0 {
		return fmt.Errorf("specify --text, --description, --id, or --x and --y")
	}
	if byCoords && action != platform.ActionClick {
		return fmt.Errorf("--action %s needs an element target", action)
	}

	provider, err := openProvider()
	if err != nil {
		return err
	}
	exp := newExplorer(provider)
	ctx := cmd.Context()

	if byCoords {
		target := fmt.Sprintf("(%d,%d)", x, y)
		if !exp.TapAt(ctx, x, y) {
			return fmt.Errorf("tap at %s rejected", target)
		}
		return printResult(cmd, output.ActionResult{OK: true, Action: "tap", Target: target})
	}

	screen := exp.Read(ctx)
	if screen == nil {
		return fmt.Errorf("could not read the screen")
	}
	el, target := locate(screen, text, desc, id, exact)
	if el == nil {
		return fmt.Errorf("no element found matching %s", target)
	}

	if action != platform.ActionClick {
		if !exp.Perform(ctx, el, platform.ActionOptions{Action: action}) {
			return fmt.Errorf("%s on %s rejected", action, target)
		}
		return printResult(cmd, output.ActionResult{OK: true, Action: action.String(), Target: target})
	}
	if !exp.Click(ctx, el) {
		cx, cy := el.Center()
		if !exp.TapAt(ctx, cx, cy) {
			return fmt.Errorf("tap on %s rejected", target)
		}
	}
	return printResult(cmd, output.ActionResult{OK: true, Action: "tap", Target: target})
}

// locate finds one element on screen. ID wins over text, text over
// description. The second return value describes the query for messages.
func locate(screen *explorer.Screen, text, desc string, id int, exact bool) (*model.ScreenElement, string) {
	switch {
	case id > 0:
		return screen.Where(func(el *model.ScreenElement) bool { return el.ID == id }), fmt.Sprintf("id=%d", id)
	case text != "":
		q := fmt.Sprintf("text=%q", text)
		if exact {
			return screen.FindExact(text), q
		}
		return screen.FindByText(text), q
	default:
		q := fmt.Sprintf("description=%q", desc)
		if exact {
			return screen.FindExact(desc), q
		}
		return screen.FindByDescription(desc), q
	}
}

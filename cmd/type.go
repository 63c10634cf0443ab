package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/output"
)

var typeCmd = &cobra.Command{
	Use:   "type <text...>",
	Short: "Type text into an input field",
	Long: `Replace the contents of an input field with text.

Without --into the focused field is used, or the first editable field on screen.
With --into the field is located by its text, hint, or description.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("into", "", "Locate the field by text, hint, or description")
	typeCmd.Flags().Bool("append", false, "Append to the field's current text instead of replacing it")
	typeCmd.Flags().Bool("clear", false, "Clear the field before typing")
}

func runType(cmd *cobra.Command, args []string) error {
	into, _ := cmd.Flags().GetString("into")
	appendText, _ := cmd.Flags().GetBool("append")
	clearFirst, _ := cmd.Flags().GetBool("clear")
	text := strings.Join(args, " ")

	if appendText && clearFirst {
		return fmt.Errorf("--append and --clear cannot be combined")
	}

	provider, err := openProvider()
	if err != nil {
		return err
	}
	exp := newExplorer(provider)
	ctx := cmd.Context()

	screen := exp.Read(ctx)
	if screen == nil {
		return fmt.Errorf("could not read the screen")
	}

	var field *model.ScreenElement
	target := "focused field"
	if into != "" {
		target = fmt.Sprintf("field %q", into)
		field = screen.Where(func(el *model.ScreenElement) bool {
			return el.Editable && (fieldMatches(el.Text, into, false) || fieldMatches(el.Description, into, false))
		})
	} else {
		field = screen.Editable()
	}
	if field == nil {
		return fmt.Errorf("no editable %s on screen", target)
	}

	if clearFirst && !exp.ClearText(ctx, field) {
		return fmt.Errorf("could not clear %s", target)
	}
	value := text
	if appendText {
		value = field.Text + text
	}
	if !exp.SetText(ctx, field, value) {
		return fmt.Errorf("could not type into %s", target)
	}
	return printResult(cmd, output.ActionResult{OK: true, Action: "type", Target: target, Message: value})
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/model"
	"github.com/mj1618/devicepilot/internal/output"
	"github.com/mj1618/devicepilot/internal/platform"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the UI element tree of the foreground screen",
	Long:  "Read the accessibility tree of the device's foreground window and output it as YAML or JSON.",
	RunE:  runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().String("text", "", "Keep only elements whose text or description contains this (case-insensitive)")
	readCmd.Flags().Bool("interactive", false, "Keep only clickable or editable elements")
	readCmd.Flags().Bool("flat", false, "Flatten the tree into a list with role paths")
	readCmd.Flags().Bool("raw", false, "Keep anonymous layout containers")
}

func runRead(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	interactive, _ := cmd.Flags().GetBool("interactive")
	flat, _ := cmd.Flags().GetBool("flat")
	raw, _ := cmd.Flags().GetBool("raw")

	provider, err := openProvider()
	if err != nil {
		return err
	}
	elements, size, err := readScreen(cmd, provider)
	if err != nil {
		return err
	}

	// Flat output keeps containers in each path and drops their rows later.
	if !raw && !flat {
		elements = model.PruneEmptyGroups(elements)
	}
	if interactive {
		elements = model.FilterInteractive(elements)
	}
	elements = model.FilterByText(elements, text)

	device := deviceSerial(cmd, provider)
	ts := time.Now().Unix()
	if flat {
		rows := model.FlattenElements(elements)
		if !raw {
			rows = model.PruneEmptyGroupsFlat(rows)
		}
		if rows == nil {
			rows = []model.FlatElement{}
		}
		return printResult(cmd, output.ReadFlatResult{Device: device, Size: size, TS: ts, Elements: rows})
	}
	if elements == nil {
		elements = []model.ScreenElement{}
	}
	return printResult(cmd, output.ReadResult{Device: device, Size: size, TS: ts, Elements: elements})
}

// readScreen takes one snapshot of the element tree and display size.
func readScreen(cmd *cobra.Command, provider *platform.Provider) ([]model.ScreenElement, model.ScreenSize, error) {
	if provider.Reader == nil {
		return nil, model.ScreenSize{}, fmt.Errorf("screen reader not available")
	}
	elements, err := provider.Reader.ReadScreen(cmd.Context())
	if err != nil {
		return nil, model.ScreenSize{}, fmt.Errorf("failed to read screen: %w", err)
	}
	size, err := provider.Reader.ScreenSize(cmd.Context())
	if err != nil {
		return nil, model.ScreenSize{}, fmt.Errorf("failed to read screen size: %w", err)
	}
	return elements, size, nil
}

// deviceSerial is best-effort; an empty serial is omitted from output.
func deviceSerial(cmd *cobra.Command, provider *platform.Provider) string {
	if provider.Describer == nil {
		return ""
	}
	info, err := provider.Describer.DeviceInfo(cmd.Context())
	if err != nil {
		return ""
	}
	return info.Serial
}

package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/model"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long: `Capture a PNG screenshot of the device display.

With --annotate, element bounding boxes are drawn over the image and labelled
with element IDs (or center coordinates with --coords), matching the IDs from
"devicepilot read".`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().Bool("annotate", false, "Draw element boxes and labels")
	screenshotCmd.Flags().Bool("coords", false, "Label with center coordinates instead of IDs (with --annotate)")
	screenshotCmd.Flags().Bool("all", false, "Annotate every element, not only interactive ones (with --annotate)")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	annotate, _ := cmd.Flags().GetBool("annotate")
	coords, _ := cmd.Flags().GetBool("coords")
	all, _ := cmd.Flags().GetBool("all")

	provider, err := openProvider()
	if err != nil {
		return err
	}
	if provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported by this device backend")
	}

	data, err := provider.Screenshotter.Capture(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	if annotate {
		elements, size, err := readScreen(cmd, provider)
		if err != nil {
			return err
		}
		if !all {
			elements = model.FilterInteractive(elements)
		}
		mode := LabelIDs
		if coords {
			mode = LabelCoords
		}
		if data, err = annotatePNG(data, elements, size, mode); err != nil {
			return err
		}
	}

	if outPath != "" {
		return os.WriteFile(outPath, data, 0644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	w := cmd.OutOrStdout()
	encoder := base64.NewEncoder(base64.StdEncoding, w)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func annotatePNG(data []byte, elements []model.ScreenElement, size model.ScreenSize, mode LabelMode) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Annotate(img, elements, size, mode)); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

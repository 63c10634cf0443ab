package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/devicepilot/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (use yaml or json)", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ReadResult is the top-level output of the `read` command.
type ReadResult struct {
	Device   string                `yaml:"device,omitempty" json:"device,omitempty"`
	Size     model.ScreenSize      `yaml:"size"             json:"size"`
	TS       int64                 `yaml:"ts"               json:"ts"`
	Elements []model.ScreenElement `yaml:"elements"         json:"elements"`
}

// ReadFlatResult is the top-level output when --flat is used.
type ReadFlatResult struct {
	Device   string              `yaml:"device,omitempty" json:"device,omitempty"`
	Size     model.ScreenSize    `yaml:"size"             json:"size"`
	TS       int64               `yaml:"ts"               json:"ts"`
	Elements []model.FlatElement `yaml:"elements"         json:"elements"`
}

// ActionResult reports a single device action.
type ActionResult struct {
	OK      bool   `yaml:"ok"                json:"ok"`
	Action  string `yaml:"action"            json:"action"`
	Target  string `yaml:"target,omitempty"  json:"target,omitempty"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(os.Stdout, v)
}

// Fprint serializes v to w in the current output format.
func Fprint(w io.Writer, v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return writeJSON(w, v, PrettyOutput)
	case FormatYAML:
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	return writeJSON(os.Stdout, v, false)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	return writeJSON(os.Stdout, v, true)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	return writeYAML(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

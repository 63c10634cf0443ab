package platform

import (
	"fmt"
	"strings"
)

// Action is an accessibility action applied to a single element.
type Action int

const (
	ActionClick Action = iota
	ActionLongClick
	ActionFocus
	ActionSetText
)

func (a Action) String() string {
	switch a {
	case ActionClick:
		return "click"
	case ActionLongClick:
		return "long-click"
	case ActionFocus:
		return "focus"
	case ActionSetText:
		return "set-text"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction converts a string flag value to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "click", "press", "":
		return ActionClick, nil
	case "long-click", "longclick", "long-press":
		return ActionLongClick, nil
	case "focus":
		return ActionFocus, nil
	case "set-text", "settext":
		return ActionSetText, nil
	default:
		return ActionClick, fmt.Errorf("unknown action: %q (expected click, long-click, focus, or set-text)", s)
	}
}

// ActionOptions specifies an action and its argument.
type ActionOptions struct {
	Action Action
	Text   string // Replacement text for ActionSetText; empty clears the field
}

// AppInfo describes an installed, launchable application.
type AppInfo struct {
	Package string `yaml:"package" json:"package"`
	Label   string `yaml:"label"   json:"label"`
}

// Intent is a platform navigation request.
type Intent struct {
	Action   string            // e.g. android.intent.action.VIEW
	Data     string            // URI
	Category string            // Optional category, e.g. android.intent.category.APP_MESSAGING
	Package  string            // Optional explicit target package
	Extras   map[string]string // String extras
}

// Common intent and settings actions.
const (
	IntentView        = "android.intent.action.VIEW"
	IntentDial        = "android.intent.action.DIAL"
	IntentSendTo      = "android.intent.action.SENDTO"
	IntentMain        = "android.intent.action.MAIN"
	CategoryMessaging = "android.intent.category.APP_MESSAGING"
	SettingsWifi      = "android.settings.panel.action.WIFI"
	SettingsBT        = "android.settings.BLUETOOTH_SETTINGS"
	SettingsAccess    = "android.settings.ACCESSIBILITY_SETTINGS"
)

// Options configures backend construction.
type Options struct {
	ADBPath string // Path to the adb binary; empty means look it up in PATH
	Serial  string // Device serial; empty means the only attached device
}

// DeviceInfo describes the attached device.
type DeviceInfo struct {
	Serial   string `yaml:"serial,omitempty" json:"serial,omitempty"`
	Model    string `yaml:"model"            json:"model"`
	SDK      int    `yaml:"sdk"              json:"sdk"`
	Release  string `yaml:"release"          json:"release"`
	Width    int    `yaml:"width"            json:"width"`
	Height   int    `yaml:"height"           json:"height"`
	Attached bool   `yaml:"attached"         json:"attached"`
}

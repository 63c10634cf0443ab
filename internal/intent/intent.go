// Package intent defines the structured form of a user command and the
// deterministic keyword extractor used when the remote classifier is
// unavailable.
package intent

import (
	"maps"
	"strings"
)

// Kind is the command type. Values are the wire names used by the
// classifier's JSON.
type Kind string

const (
	OpenApp         Kind = "OPEN_APP"
	OpenWebsite     Kind = "OPEN_WEBSITE"
	Search          Kind = "SEARCH"
	SendMessage     Kind = "SEND_MESSAGE"
	MakeCall        Kind = "MAKE_CALL"
	ToggleWifi      Kind = "TOGGLE_WIFI"
	ToggleBluetooth Kind = "TOGGLE_BLUETOOTH"
	Unknown         Kind = "UNKNOWN"
)

// Kinds lists every kind, Unknown last.
var Kinds = []Kind{OpenApp, OpenWebsite, Search, SendMessage, MakeCall, ToggleWifi, ToggleBluetooth, Unknown}

// ParseKind maps a wire name to a Kind, ignoring case and surrounding
// space. Anything unrecognized is Unknown.
func ParseKind(s string) Kind {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k
		}
	}
	return Unknown
}

// Parameter keys.
const (
	ParamAppName      = "app_name"
	ParamURL          = "url"
	ParamQuery        = "query"
	ParamSearchEngine = "search_engine"
	ParamContactName  = "contact_name"
	ParamPhoneNumber  = "phone_number"
	ParamMessage      = "message"
	ParamPlatform     = "platform"
	ParamEnable       = "enable"
)

// Intent is one resolved command. Treat it as a value: New copies the
// parameter map and nothing in this module mutates it afterwards.
type Intent struct {
	Kind       Kind              `yaml:"kind"                 json:"kind"`
	Parameters map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// New builds an Intent, dropping empty keys.
func New(kind Kind, params map[string]string) Intent {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if k != "" {
			out[k] = v
		}
	}
	return Intent{Kind: kind, Parameters: out}
}

// Param returns a trimmed parameter value, or "".
func (i Intent) Param(key string) string {
	return strings.TrimSpace(i.Parameters[key])
}

// Recipient is the contact name when present, else the phone number.
func (i Intent) Recipient() string {
	if name := i.Param(ParamContactName); name != "" {
		return name
	}
	return i.Param(ParamPhoneNumber)
}

// Enable reads the toggle direction. A missing or unreadable value means
// enable.
func (i Intent) Enable() bool {
	switch strings.ToLower(i.Param(ParamEnable)) {
	case "false", "0", "off", "no", "disable":
		return false
	default:
		return true
	}
}

// Equal reports whether two intents have the same kind and parameters.
func (i Intent) Equal(o Intent) bool {
	return i.Kind == o.Kind && maps.Equal(i.Parameters, o.Parameters)
}

package intent

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"OPEN_APP", OpenApp},
		{" send_message ", SendMessage},
		{"MAKE_CALL", MakeCall},
		{"toggle_bluetooth", ToggleBluetooth},
		{"REBOOT", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewCopiesParameters(t *testing.T) {
	params := map[string]string{ParamAppName: "youtube", "": "dropped"}
	in := New(OpenApp, params)
	params[ParamAppName] = "chrome"

	if got := in.Param(ParamAppName); got != "youtube" {
		t.Errorf("Param = %q, want youtube", got)
	}
	if _, ok := in.Parameters[""]; ok {
		t.Error("empty key kept")
	}
}

func TestRecipient(t *testing.T) {
	tests := []struct {
		params map[string]string
		want   string
	}{
		{map[string]string{ParamContactName: "Alice", ParamPhoneNumber: "9876543210"}, "Alice"},
		{map[string]string{ParamContactName: "  ", ParamPhoneNumber: "9876543210"}, "9876543210"},
		{map[string]string{}, ""},
	}
	for _, tt := range tests {
		if got := New(SendMessage, tt.params).Recipient(); got != tt.want {
			t.Errorf("Recipient(%v) = %q, want %q", tt.params, got, tt.want)
		}
	}
}

func TestEnable(t *testing.T) {
	tests := []struct {
		value string
		set   bool
		want  bool
	}{
		{"", false, true},
		{"true", true, true},
		{"TRUE", true, true},
		{"false", true, false},
		{"off", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		params := map[string]string{}
		if tt.set {
			params[ParamEnable] = tt.value
		}
		if got := New(ToggleWifi, params).Enable(); got != tt.want {
			t.Errorf("Enable(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

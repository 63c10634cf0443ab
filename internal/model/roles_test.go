package model

import "testing"

func TestMapRole_KnownClasses(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"android.widget.Button", "btn"},
		{"android.widget.ImageButton", "btn"},
		{"android.widget.TextView", "txt"},
		{"android.widget.EditText", "input"},
		{"android.widget.ListView", "list"},
		{"androidx.recyclerview.widget.RecyclerView", "list"},
		{"android.widget.FrameLayout", "group"},
		{"android.view.View", "view"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := MapRole(tt.input)
			if got != tt.want {
				t.Errorf("MapRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapRole_UnknownFallback(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"com.whatsapp.conversation.ConversationEntry", "conversationentry"},
		{"Widget", "widget"},
		{"", "other"},
	}
	for _, tt := range tests {
		got := MapRole(tt.input)
		if got != tt.want {
			t.Errorf("MapRole(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

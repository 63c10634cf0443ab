package model

import "strings"

// RoleMap maps Android widget classes to compact role codes.
var RoleMap = map[string]string{
	"android.widget.Button":                       "btn",
	"android.widget.ImageButton":                  "btn",
	"android.widget.TextView":                     "txt",
	"android.widget.ImageView":                    "img",
	"android.widget.EditText":                     "input",
	"android.widget.AutoCompleteTextView":         "input",
	"android.widget.MultiAutoCompleteTextView":    "input",
	"android.widget.CheckBox":                     "chk",
	"android.widget.Switch":                       "toggle",
	"android.widget.ToggleButton":                 "toggle",
	"android.widget.RadioButton":                  "radio",
	"android.widget.ListView":                     "list",
	"android.widget.GridView":                     "list",
	"androidx.recyclerview.widget.RecyclerView":   "list",
	"android.support.v7.widget.RecyclerView":      "list",
	"android.widget.ScrollView":                   "scroll",
	"android.widget.HorizontalScrollView":         "scroll",
	"android.widget.FrameLayout":                  "group",
	"android.widget.LinearLayout":                 "group",
	"android.widget.RelativeLayout":               "group",
	"android.view.ViewGroup":                      "group",
	"android.view.View":                           "view",
	"android.webkit.WebView":                      "web",
	"android.widget.TabWidget":                    "tab",
	"androidx.appcompat.widget.Toolbar":           "toolbar",
	"android.widget.Toolbar":                      "toolbar",
	"androidx.drawerlayout.widget.DrawerLayout":   "group",
	"androidx.viewpager.widget.ViewPager":         "group",

	"com.google.android.material.button.MaterialButton": "btn",
}

// ListClasses are the container classes whose children are result rows.
var ListClasses = []string{
	"android.widget.ListView",
	"androidx.recyclerview.widget.RecyclerView",
}

// MapRole converts a widget class name to a compact role code.
// Unknown classes fall back to the lowercased simple class name.
func MapRole(class string) string {
	if code, ok := RoleMap[class]; ok {
		return code
	}
	if class == "" {
		return "other"
	}
	if i := strings.LastIndex(class, "."); i >= 0 {
		class = class[i+1:]
	}
	return strings.ToLower(class)
}

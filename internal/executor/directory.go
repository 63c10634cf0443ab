package executor

import (
	"context"
	"sort"
	"strings"

	"github.com/mj1618/devicepilot/internal/platform"
)

// alias maps a common app name to its Android package.
type alias struct {
	name string
	pkg  string
}

// builtinAliases is checked in order; the first alias contained in the
// requested name wins.
var builtinAliases = []alias{
	{"whatsapp", "com.whatsapp"},
	{"youtube", "com.google.android.youtube"},
	{"chrome", "com.android.chrome"},
	{"gmail", "com.google.android.gm"},
	{"maps", "com.google.android.apps.maps"},
	{"facebook", "com.facebook.katana"},
	{"twitter", "com.twitter.android"},
	{"instagram", "com.instagram.android"},
	{"settings", "com.android.settings"},
	{"camera", "com.android.camera2"},
	{"calculator", "com.google.android.calculator"},
	{"clock", "com.google.android.deskclock"},
	{"calendar", "com.google.android.calendar"},
	{"photos", "com.google.android.apps.photos"},
	{"play store", "com.android.vending"},
	{"spotify", "com.spotify.music"},
	{"netflix", "com.netflix.mediaclient"},
}

// AppNames lists the built-in alias names in lookup order.
func AppNames() []string {
	names := make([]string, len(builtinAliases))
	for i, a := range builtinAliases {
		names[i] = a.name
	}
	return names
}

// Directory resolves common app names to package identities. It is
// read-only after construction.
type Directory struct {
	aliases []alias
}

// NewDirectory builds a Directory. Extra aliases are consulted before the
// built-in ones, longest name first.
func NewDirectory(extra map[string]string) *Directory {
	var custom []alias
	for name, pkg := range extra {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || pkg == "" {
			continue
		}
		custom = append(custom, alias{name: name, pkg: pkg})
	}
	sort.Slice(custom, func(i, j int) bool {
		if len(custom[i].name) != len(custom[j].name) {
			return len(custom[i].name) > len(custom[j].name)
		}
		return custom[i].name < custom[j].name
	})
	return &Directory{aliases: append(custom, builtinAliases...)}
}

// Lookup checks the alias table only.
func (d *Directory) Lookup(name string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", false
	}
	for _, a := range d.aliases {
		if strings.Contains(normalized, a.name) {
			return a.pkg, true
		}
	}
	return "", false
}

// Resolve checks the alias table, then scans installed applications for a
// label containing the name.
func (d *Directory) Resolve(ctx context.Context, name string, launcher platform.Launcher) (string, bool) {
	if pkg, ok := d.Lookup(name); ok {
		return pkg, true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" || launcher == nil {
		return "", false
	}
	apps, err := launcher.InstalledApps(ctx)
	if err != nil {
		return "", false
	}
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Label), normalized) ||
			strings.Contains(strings.ToLower(app.Package), normalized) {
			return app.Package, true
		}
	}
	return "", false
}

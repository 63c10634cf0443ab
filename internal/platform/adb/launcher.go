package adb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/devicepilot/internal/platform"
)

// Launch starts the launcher activity of pkg through monkey, which resolves
// the entry point without knowing the activity name.
func (c *Client) Launch(ctx context.Context, pkg string) error {
	out, err := c.shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return fmt.Errorf("launch %s: %w", pkg, err)
	}
	if strings.Contains(out, "No activities found") || strings.Contains(out, "monkey aborted") {
		return fmt.Errorf("launch %s: no launchable activity", pkg)
	}
	return nil
}

// InstalledApps lists packages that declare a launcher activity. adb exposes
// no display labels, so the label is derived from the package name.
func (c *Client) InstalledApps(ctx context.Context) ([]platform.AppInfo, error) {
	out, err := c.shell(ctx, "cmd", "package", "query-activities", "--brief",
		"-a", "android.intent.action.MAIN", "-c", "android.intent.category.LAUNCHER")
	if err != nil {
		return nil, fmt.Errorf("query launcher activities: %w", err)
	}
	return parseLauncherActivities(out), nil
}

// parseLauncherActivities extracts unique packages from lines of the form
// "com.example/.MainActivity".
func parseLauncherActivities(out string) []platform.AppInfo {
	seen := make(map[string]bool)
	var apps []platform.AppInfo
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		slash := strings.Index(line, "/")
		if slash <= 0 {
			continue
		}
		pkg := line[:slash]
		if strings.ContainsAny(pkg, " :") || seen[pkg] {
			continue
		}
		seen[pkg] = true
		apps = append(apps, platform.AppInfo{Package: pkg, Label: labelFromPackage(pkg)})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Package < apps[j].Package })
	return apps
}

// labelFromPackage drops the reverse-domain prefix: com.spotify.music -> spotify music.
func labelFromPackage(pkg string) string {
	parts := strings.Split(pkg, ".")
	if len(parts) > 1 && (parts[0] == "com" || parts[0] == "org" || parts[0] == "net" || parts[0] == "io") {
		parts = parts[1:]
	}
	return strings.Join(parts, " ")
}

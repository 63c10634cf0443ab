package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/devicepilot/internal/model"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search the screen for elements by text or description",
	Long: `Search the foreground screen for elements whose text or content description matches.
Returns the deepest matching elements with their role paths and centers.

With --clickable and no text or description, lists every clickable element.`,
	RunE:  runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().String("text", "", "Match against visible text (case-insensitive substring)")
	findCmd.Flags().String("description", "", "Match against content description (case-insensitive substring)")
	findCmd.Flags().Bool("exact", false, "Require an exact (case-insensitive) match instead of substring")
	findCmd.Flags().Bool("clickable", false, "Only return clickable or editable elements")
	findCmd.Flags().Int("limit", 10, "Max matching elements to return")
}

// findElementInfo is a compact element representation for find results.
type findElementInfo struct {
	ID          int    `yaml:"i"           json:"i"`
	Role        string `yaml:"r"           json:"r"`
	Text        string `yaml:"t,omitempty" json:"t,omitempty"`
	Description string `yaml:"d,omitempty" json:"d,omitempty"`
	Bounds      [4]int `yaml:"b"           json:"b"`
	Center      [2]int `yaml:"center"      json:"center"`
	Path        string `yaml:"path,omitempty" json:"path,omitempty"`
}

// findResult is the top-level output of the find command.
type findResult struct {
	OK      bool              `yaml:"ok"      json:"ok"`
	Action  string            `yaml:"action"  json:"action"`
	Query   string            `yaml:"query"   json:"query"`
	Matches []findElementInfo `yaml:"matches" json:"matches"`
	Total   int               `yaml:"total"   json:"total"`
}

// findQuery describes what an element must match.
type findQuery struct {
	text        string
	description string
	exact       bool
	clickable   bool
}

func (q findQuery) String() string {
	if q.text == "" && q.description == "" && q.clickable {
		return "clickable"
	}
	var parts []string
	if q.text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", q.text))
	}
	if q.description != "" {
		parts = append(parts, fmt.Sprintf("description=%q", q.description))
	}
	return strings.Join(parts, " ")
}

func (q findQuery) matches(el model.ScreenElement) bool {
	if q.clickable && !el.Clickable && !el.Editable {
		return false
	}
	if q.text != "" && !fieldMatches(el.Text, q.text, q.exact) {
		return false
	}
	if q.description != "" && !fieldMatches(el.Description, q.description, q.exact) {
		return false
	}
	return true
}

func fieldMatches(field, needle string, exact bool) bool {
	if exact {
		return strings.EqualFold(strings.TrimSpace(field), strings.TrimSpace(needle))
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(needle))
}

func runFind(cmd *cobra.Command, args []string) error {
	q := findQuery{}
	q.text, _ = cmd.Flags().GetString("text")
	q.description, _ = cmd.Flags().GetString("description")
	q.exact, _ = cmd.Flags().GetBool("exact")
	q.clickable, _ = cmd.Flags().GetBool("clickable")
	limit, _ := cmd.Flags().GetInt("limit")

	if q.text == "" && q.description == "" && !q.clickable {
		return fmt.Errorf("--text or --description is required")
	}

	provider, err := openProvider()
	if err != nil {
		return err
	}

	var found []findElementInfo
	if q.text == "" && q.description == "" {
		if provider.Reader == nil {
			return fmt.Errorf("screen reader not available")
		}
		for _, el := range newExplorer(provider).FindAllClickable(cmd.Context()) {
			found = append(found, newFindElementInfo(el, ""))
		}
	} else {
		elements, _, err := readScreen(cmd, provider)
		if err != nil {
			return err
		}
		found = collectLeafMatches(elements, q, "")
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	if found == nil {
		found = []findElementInfo{}
	}
	return printResult(cmd, findResult{
		OK:      true,
		Action:  "find",
		Query:   q.String(),
		Matches: found,
		Total:   len(found),
	})
}

// collectLeafMatches returns the deepest elements matching q: a matching
// parent is dropped when one of its descendants also matches.
func collectLeafMatches(elements []model.ScreenElement, q findQuery, parentPath string) []findElementInfo {
	var results []findElementInfo
	for _, el := range elements {
		path := el.Role
		if parentPath != "" {
			path = parentPath + " > " + el.Role
		}
		childMatches := collectLeafMatches(el.Children, q, path)
		if q.matches(el) && len(childMatches) == 0 {
			results = append(results, newFindElementInfo(el, path))
			continue
		}
		results = append(results, childMatches...)
	}
	return results
}

func newFindElementInfo(el model.ScreenElement, path string) findElementInfo {
	cx, cy := el.Center()
	return findElementInfo{
		ID:          el.ID,
		Role:        el.Role,
		Text:        el.Text,
		Description: el.Description,
		Bounds:      el.Bounds,
		Center:      [2]int{cx, cy},
		Path:        path,
	}
}

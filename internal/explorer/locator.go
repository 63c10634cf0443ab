package explorer

import (
	"fmt"
	"strings"

	"github.com/mj1618/devicepilot/internal/model"
)

// Locator is one ranked way of finding an element on a Screen.
type Locator struct {
	Name string
	Find func(s *Screen) *model.ScreenElement
}

// ByDescription matches the content description by substring.
func ByDescription(needle string) Locator {
	return Locator{
		Name: fmt.Sprintf("description %q", needle),
		Find: func(s *Screen) *model.ScreenElement { return s.FindByDescription(needle) },
	}
}

// ByText matches the visible text by substring.
func ByText(needle string) Locator {
	return Locator{
		Name: fmt.Sprintf("text %q", needle),
		Find: func(s *Screen) *model.ScreenElement { return s.FindByText(needle) },
	}
}

// ByExactText matches text or description exactly, ignoring case.
func ByExactText(needle string) Locator {
	return Locator{
		Name: fmt.Sprintf("exact %q", needle),
		Find: func(s *Screen) *model.ScreenElement { return s.FindExact(needle) },
	}
}

// FirstEditable picks the focused editable, else the first editable.
func FirstEditable() Locator {
	return Locator{
		Name: "first editable",
		Find: func(s *Screen) *model.ScreenElement { return s.Editable() },
	}
}

// EditableIn picks the first editable element inside r.
func EditableIn(name string, r Region) Locator {
	return Locator{
		Name: "editable " + name,
		Find: func(s *Screen) *model.ScreenElement {
			return s.Where(func(el *model.ScreenElement) bool { return el.Editable && r(el, s.Size) })
		},
	}
}

// ClickableIn picks the first clickable element inside r.
func ClickableIn(name string, r Region) Locator {
	return ClickableWhere("clickable "+name, r, func(*model.ScreenElement) bool { return true })
}

// ClickableWhere picks the first clickable element inside r that also
// satisfies match.
func ClickableWhere(name string, r Region, match func(el *model.ScreenElement) bool) Locator {
	return Locator{
		Name: name,
		Find: func(s *Screen) *model.ScreenElement {
			return s.Where(func(el *model.ScreenElement) bool {
				return el.Clickable && r(el, s.Size) && match(el)
			})
		},
	}
}

// AnyToken matches elements whose text or description contains any token
// longer than minLen characters.
func AnyToken(tokens []string, minLen int) func(el *model.ScreenElement) bool {
	var keep []string
	for _, t := range tokens {
		if len([]rune(t)) > minLen {
			keep = append(keep, strings.ToLower(t))
		}
	}
	return func(el *model.ScreenElement) bool {
		label := strings.ToLower(el.Text + " " + el.Description)
		for _, t := range keep {
			if strings.Contains(label, t) {
				return true
			}
		}
		return false
	}
}

// FirstChildOfClass picks the first child of the first container whose class
// is one of classes, such as the top row of a result list.
func FirstChildOfClass(classes ...string) Locator {
	set := make(map[string]bool, len(classes))
	for _, c := range classes {
		set[c] = true
	}
	return Locator{
		Name: "first list row",
		Find: func(s *Screen) *model.ScreenElement {
			var found *model.ScreenElement
			model.Walk(s.Elements, func(el *model.ScreenElement) bool {
				if set[el.Class] && len(el.Children) > 0 {
					cp := withoutChildren(el.Children[0])
					found = &cp
					return false
				}
				return true
			})
			return found
		},
	}
}

// ByResultText matches text on non-editable elements, so a search box still
// holding the typed query does not count as a result.
func ByResultText(needle string) Locator {
	return Locator{
		Name: fmt.Sprintf("result %q", needle),
		Find: func(s *Screen) *model.ScreenElement {
			return s.Where(func(el *model.ScreenElement) bool {
				return !el.Editable && containsFold(el.Text, needle)
			})
		},
	}
}

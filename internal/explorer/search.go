package explorer

import (
	"strings"

	"github.com/mj1618/devicepilot/internal/model"
)

// Screen is a single read of the element tree together with the display
// size. It must be discarded after any action that may change the UI.
type Screen struct {
	Elements []model.ScreenElement
	Size     model.ScreenSize
}

// FindByText returns the first element in pre-order whose text contains
// needle, case-insensitively.
func (s *Screen) FindByText(needle string) *model.ScreenElement {
	return s.first(func(el *model.ScreenElement) bool { return containsFold(el.Text, needle) })
}

// FindByDescription is FindByText against the content description.
func (s *Screen) FindByDescription(needle string) *model.ScreenElement {
	return s.first(func(el *model.ScreenElement) bool { return containsFold(el.Description, needle) })
}

// FindExact returns the first element whose text or description equals
// needle, ignoring case and surrounding space.
func (s *Screen) FindExact(needle string) *model.ScreenElement {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return nil
	}
	return s.first(func(el *model.ScreenElement) bool {
		return strings.EqualFold(strings.TrimSpace(el.Text), needle) ||
			strings.EqualFold(strings.TrimSpace(el.Description), needle)
	})
}

// Clickables returns every clickable element in pre-order.
func (s *Screen) Clickables() []model.ScreenElement {
	var out []model.ScreenElement
	model.Walk(s.Elements, func(el *model.ScreenElement) bool {
		if el.Clickable {
			out = append(out, withoutChildren(*el))
		}
		return true
	})
	return out
}

// Editable prefers the focused editable element, else the first editable one.
func (s *Screen) Editable() *model.ScreenElement {
	if el := s.first(func(el *model.ScreenElement) bool { return el.Editable && el.Focused }); el != nil {
		return el
	}
	return s.first(func(el *model.ScreenElement) bool { return el.Editable })
}

// Where returns the first element satisfying match.
func (s *Screen) Where(match func(el *model.ScreenElement) bool) *model.ScreenElement {
	return s.first(match)
}

// ContainsText reports whether any element's text or description contains needle.
func (s *Screen) ContainsText(needle string) bool {
	return s.first(func(el *model.ScreenElement) bool {
		return containsFold(el.Text, needle) || containsFold(el.Description, needle)
	}) != nil
}

func (s *Screen) first(match func(el *model.ScreenElement) bool) *model.ScreenElement {
	var found *model.ScreenElement
	model.Walk(s.Elements, func(el *model.ScreenElement) bool {
		if match(el) {
			cp := withoutChildren(*el)
			found = &cp
			return false
		}
		return true
	})
	return found
}

// withoutChildren detaches a result from the tree it was read from.
func withoutChildren(el model.ScreenElement) model.ScreenElement {
	el.Children = nil
	return el
}

func containsFold(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Region is a geometric predicate relative to the screen size. Regions
// match nothing while the size is unknown.
type Region func(el *model.ScreenElement, size model.ScreenSize) bool

func sized(r Region) Region {
	return func(el *model.ScreenElement, size model.ScreenSize) bool {
		if size.Width <= 0 || size.Height <= 0 {
			return false
		}
		return r(el, size)
	}
}

// BottomRight matches elements reaching into the bottom-right corner, where
// floating action buttons and send buttons sit.
func BottomRight() Region {
	return sized(func(el *model.ScreenElement, size model.ScreenSize) bool {
		return float64(el.Bottom()) > 0.7*float64(size.Height) && float64(el.Right()) > 0.7*float64(size.Width)
	})
}

// TopBand matches elements whose top edge lies above frac of the height.
func TopBand(frac float64) Region {
	return sized(func(el *model.ScreenElement, size model.ScreenSize) bool {
		return float64(el.Top()) < frac*float64(size.Height)
	})
}

// TopRight matches elements near the top toolbar's trailing edge.
func TopRight(topFrac, rightFrac float64) Region {
	return sized(func(el *model.ScreenElement, size model.ScreenSize) bool {
		return float64(el.Top()) < topFrac*float64(size.Height) && float64(el.Right()) > rightFrac*float64(size.Width)
	})
}

// BottomBand matches elements whose bottom edge lies below frac of the height.
func BottomBand(frac float64) Region {
	return sized(func(el *model.ScreenElement, size model.ScreenSize) bool {
		return float64(el.Bottom()) > frac*float64(size.Height)
	})
}

// MiddleBand matches elements between the top and bottom fifths, where
// search results are listed.
func MiddleBand() Region {
	return sized(func(el *model.ScreenElement, size model.ScreenSize) bool {
		return float64(el.Top()) > 0.2*float64(size.Height) && float64(el.Bottom()) < 0.8*float64(size.Height)
	})
}

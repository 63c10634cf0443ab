package model

import "strings"

// FilterByText keeps elements whose text or description contains text
// (case-insensitive). Ancestors of a match are kept with only their matching
// descendants.
func FilterByText(elements []ScreenElement, text string) []ScreenElement {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []ScreenElement
	for _, el := range elements {
		matched := textMatchesElement(el, textLower)
		childMatches := FilterByText(el.Children, text)

		if matched || len(childMatches) > 0 {
			filtered := el
			filtered.Children = childMatches
			result = append(result, filtered)
		}
	}
	return result
}

func textMatchesElement(el ScreenElement, textLower string) bool {
	return strings.Contains(strings.ToLower(el.Text), textLower) ||
		strings.Contains(strings.ToLower(el.Description), textLower)
}

// FilterInteractive keeps clickable or editable elements, promoting them out
// of non-interactive parents.
func FilterInteractive(elements []ScreenElement) []ScreenElement {
	var result []ScreenElement
	for _, el := range elements {
		children := FilterInteractive(el.Children)
		if el.Clickable || el.Editable {
			kept := el
			kept.Children = children
			result = append(result, kept)
		} else {
			result = append(result, children...)
		}
	}
	return result
}

// isEmptyGroup reports whether the element is a structural container with no
// text, description or interaction.
func isEmptyGroup(el ScreenElement) bool {
	return (el.Role == "group" || el.Role == "view" || el.Role == "other") &&
		el.Text == "" && el.Description == "" && !el.Clickable && !el.Editable
}

// PruneEmptyGroups removes anonymous layout containers and promotes their
// children. uiautomator dumps are dominated by these.
func PruneEmptyGroups(elements []ScreenElement) []ScreenElement {
	var result []ScreenElement
	for _, el := range elements {
		prunedChildren := PruneEmptyGroups(el.Children)

		if isEmptyGroup(el) {
			result = append(result, prunedChildren...)
		} else {
			pruned := el
			pruned.Children = prunedChildren
			result = append(result, pruned)
		}
	}
	return result
}

// PruneEmptyGroupsFlat is PruneEmptyGroups for flattened output.
func PruneEmptyGroupsFlat(elements []FlatElement) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		if (el.Role == "group" || el.Role == "view" || el.Role == "other") &&
			el.Text == "" && el.Description == "" && !el.Clickable && !el.Editable {
			continue
		}
		result = append(result, el)
	}
	return result
}

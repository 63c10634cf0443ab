package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	ID          int    `yaml:"i"             json:"i"`
	Role        string `yaml:"r"             json:"r"`
	Text        string `yaml:"t,omitempty"   json:"t,omitempty"`
	Description string `yaml:"d,omitempty"   json:"d,omitempty"`
	ResourceID  string `yaml:"rid,omitempty" json:"rid,omitempty"`
	Bounds      [4]int `yaml:"b"             json:"b"`
	Clickable   bool   `yaml:"k,omitempty"   json:"k,omitempty"`
	Editable    bool   `yaml:"e,omitempty"   json:"e,omitempty"`
	Focused     bool   `yaml:"f,omitempty"   json:"f,omitempty"`
	Path        string `yaml:"p,omitempty"   json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list.
// Each element gets a path string showing its location in the tree
// using abbreviated role names joined with " > ".
func FlattenElements(elements []ScreenElement) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

func flattenRecursive(el ScreenElement, parentPath string, result *[]FlatElement) {
	currentPath := el.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Role
	}

	*result = append(*result, FlatElement{
		ID:          el.ID,
		Role:        el.Role,
		Text:        el.Text,
		Description: el.Description,
		ResourceID:  el.ResourceID,
		Bounds:      el.Bounds,
		Clickable:   el.Clickable,
		Editable:    el.Editable,
		Focused:     el.Focused,
		Path:        currentPath,
	})

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}

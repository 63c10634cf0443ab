package model

// ScreenElement is one node of a device accessibility tree as it was read at a
// single instant. It is a value snapshot: after any action that may change the
// screen, re-read the tree instead of reusing an old ScreenElement.
type ScreenElement struct {
	ID          int             `yaml:"i"             json:"i"`             // Sequential pre-order ID within one read
	Role        string          `yaml:"r"             json:"r"`             // Abbreviated role derived from Class
	Text        string          `yaml:"t,omitempty"   json:"t,omitempty"`   // Visible text
	Description string          `yaml:"d,omitempty"   json:"d,omitempty"`   // Content description
	Class       string          `yaml:"cls,omitempty" json:"cls,omitempty"` // Widget class name
	ResourceID  string          `yaml:"rid,omitempty" json:"rid,omitempty"` // View resource id
	Package     string          `yaml:"pkg,omitempty" json:"pkg,omitempty"` // Owning application package
	Bounds      [4]int          `yaml:"b"             json:"b"`             // [x, y, width, height]
	Clickable   bool            `yaml:"k,omitempty"   json:"k,omitempty"`
	Editable    bool            `yaml:"e,omitempty"   json:"e,omitempty"`
	Focused     bool            `yaml:"f,omitempty"   json:"f,omitempty"`
	Children    []ScreenElement `yaml:"c,omitempty"   json:"c,omitempty"`
}

// Center returns the midpoint of the element's bounds.
func (e ScreenElement) Center() (int, int) {
	return e.Bounds[0] + e.Bounds[2]/2, e.Bounds[1] + e.Bounds[3]/2
}

func (e ScreenElement) Top() int    { return e.Bounds[1] }
func (e ScreenElement) Left() int   { return e.Bounds[0] }
func (e ScreenElement) Right() int  { return e.Bounds[0] + e.Bounds[2] }
func (e ScreenElement) Bottom() int { return e.Bounds[1] + e.Bounds[3] }

// Label returns the text if present, otherwise the description.
func (e ScreenElement) Label() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Description
}

// ScreenSize is the device display size in pixels.
type ScreenSize struct {
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// AssignIDs numbers the tree in pre-order starting at 1.
func AssignIDs(elements []ScreenElement) {
	next := 1
	assignIDs(elements, &next)
}

func assignIDs(elements []ScreenElement, next *int) {
	for i := range elements {
		elements[i].ID = *next
		*next++
		assignIDs(elements[i].Children, next)
	}
}

// Walk visits the tree in pre-order. Returning false from fn stops the walk.
func Walk(elements []ScreenElement, fn func(*ScreenElement) bool) bool {
	for i := range elements {
		if !fn(&elements[i]) {
			return false
		}
		if !Walk(elements[i].Children, fn) {
			return false
		}
	}
	return true
}

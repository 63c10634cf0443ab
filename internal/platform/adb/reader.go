package adb

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mj1618/devicepilot/internal/model"
)

// Reader reads the element tree through uiautomator.
type Reader struct {
	c *Client
}

// NewReader creates a Reader backed by c.
func NewReader(c *Client) *Reader {
	return &Reader{c: c}
}

// ReadScreen dumps the current window hierarchy and converts it.
func (r *Reader) ReadScreen(ctx context.Context) ([]model.ScreenElement, error) {
	out, err := r.c.execOut(ctx, "uiautomator", "dump", "/dev/tty")
	if err != nil {
		return nil, fmt.Errorf("uiautomator dump: %w", err)
	}
	elements, err := ParseHierarchy(out)
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// ScreenSize parses `wm size`, preferring an override size when one is set.
func (r *Reader) ScreenSize(ctx context.Context) (model.ScreenSize, error) {
	out, err := r.c.shell(ctx, "wm", "size")
	if err != nil {
		return model.ScreenSize{}, fmt.Errorf("wm size: %w", err)
	}
	return parseWMSize(out)
}

type xmlHierarchy struct {
	XMLName xml.Name  `xml:"hierarchy"`
	Nodes   []xmlNode `xml:"node"`
}

type xmlNode struct {
	Text        string    `xml:"text,attr"`
	ResourceID  string    `xml:"resource-id,attr"`
	Class       string    `xml:"class,attr"`
	Package     string    `xml:"package,attr"`
	ContentDesc string    `xml:"content-desc,attr"`
	Clickable   bool      `xml:"clickable,attr"`
	Focusable   bool      `xml:"focusable,attr"`
	Focused     bool      `xml:"focused,attr"`
	Password    bool      `xml:"password,attr"`
	Bounds      string    `xml:"bounds,attr"`
	Nodes       []xmlNode `xml:"node"`
}

// ParseHierarchy converts uiautomator XML into a ScreenElement tree with
// pre-order IDs. Trailing status text printed by uiautomator is ignored.
func ParseHierarchy(data []byte) ([]model.ScreenElement, error) {
	start := bytes.Index(data, []byte("<hierarchy"))
	end := bytes.LastIndex(data, []byte("</hierarchy>"))
	if start < 0 || end < start {
		return nil, fmt.Errorf("uiautomator dump: no hierarchy in output: %q", truncate(string(data), 120))
	}
	var h xmlHierarchy
	if err := xml.Unmarshal(data[start:end+len("</hierarchy>")], &h); err != nil {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}
	elements := convertNodes(h.Nodes)
	model.AssignIDs(elements)
	return elements, nil
}

func convertNodes(nodes []xmlNode) []model.ScreenElement {
	if len(nodes) == 0 {
		return nil
	}
	result := make([]model.ScreenElement, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, model.ScreenElement{
			Role:        model.MapRole(n.Class),
			Text:        n.Text,
			Description: n.ContentDesc,
			Class:       n.Class,
			ResourceID:  n.ResourceID,
			Package:     n.Package,
			Bounds:      parseBounds(n.Bounds),
			Clickable:   n.Clickable,
			Editable:    isEditableClass(n.Class) || n.Password,
			Focused:     n.Focused,
			Children:    convertNodes(n.Nodes),
		})
	}
	return result
}

func isEditableClass(class string) bool {
	return strings.HasSuffix(class, "EditText") || strings.HasSuffix(class, "AutoCompleteTextView")
}

var boundsRe = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// parseBounds converts "[x1,y1][x2,y2]" into [x, y, width, height].
func parseBounds(s string) [4]int {
	m := boundsRe.FindStringSubmatch(s)
	if m == nil {
		return [4]int{}
	}
	var v [4]int
	for i := 0; i < 4; i++ {
		v[i], _ = strconv.Atoi(m[i+1])
	}
	return [4]int{v[0], v[1], v[2] - v[0], v[3] - v[1]}
}

var wmSizeRe = regexp.MustCompile(`(Physical|Override) size:\s*(\d+)x(\d+)`)

func parseWMSize(out string) (model.ScreenSize, error) {
	var size model.ScreenSize
	for _, m := range wmSizeRe.FindAllStringSubmatch(out, -1) {
		w, _ := strconv.Atoi(m[2])
		h, _ := strconv.Atoi(m[3])
		if size.Width == 0 || m[1] == "Override" {
			size = model.ScreenSize{Width: w, Height: h}
		}
	}
	if size.Width == 0 {
		return size, fmt.Errorf("unexpected wm size output: %q", out)
	}
	return size, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

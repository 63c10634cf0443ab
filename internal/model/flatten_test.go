package model

import "testing"

func TestFlattenElements_Basic(t *testing.T) {
	elements := []ScreenElement{
		{ID: 1, Role: "btn", Text: "OK", Bounds: [4]int{0, 0, 100, 30}},
		{ID: 2, Role: "txt", Text: "Hello", Bounds: [4]int{0, 30, 100, 20}},
	}
	result := FlattenElements(elements)
	if len(result) != 2 {
		t.Fatalf("expected 2 flat elements, got %d", len(result))
	}
	if result[0].Path != "btn" {
		t.Errorf("expected path 'btn', got %q", result[0].Path)
	}
	if result[1].Path != "txt" {
		t.Errorf("expected path 'txt', got %q", result[1].Path)
	}
}

func TestFlattenElements_NestedPath(t *testing.T) {
	elements := []ScreenElement{
		{
			ID: 1, Role: "group",
			Children: []ScreenElement{
				{
					ID: 2, Role: "toolbar", Text: "Chats",
					Children: []ScreenElement{
						{ID: 3, Role: "btn", Description: "Search", Clickable: true},
					},
				},
			},
		},
	}
	result := FlattenElements(elements)
	if len(result) != 3 {
		t.Fatalf("expected 3 flat elements, got %d", len(result))
	}
	if result[1].Path != "group > toolbar" {
		t.Errorf("expected path 'group > toolbar', got %q", result[1].Path)
	}
	if result[2].Path != "group > toolbar > btn" {
		t.Errorf("expected path 'group > toolbar > btn', got %q", result[2].Path)
	}
	if !result[2].Clickable {
		t.Error("expected clickable flag to be carried over")
	}
}

func TestFlattenElements_NoChildren(t *testing.T) {
	result := FlattenElements(nil)
	if len(result) != 0 {
		t.Errorf("expected 0 elements for nil input, got %d", len(result))
	}
}

func TestAssignIDs_PreOrder(t *testing.T) {
	elements := []ScreenElement{
		{Children: []ScreenElement{{}, {Children: []ScreenElement{{}}}}},
		{},
	}
	AssignIDs(elements)

	var got []int
	Walk(elements, func(el *ScreenElement) bool {
		got = append(got, el.ID)
		return true
	})
	want := []int{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestWalk_StopsEarly(t *testing.T) {
	elements := []ScreenElement{
		{Text: "a", Children: []ScreenElement{{Text: "b"}}},
		{Text: "c"},
	}
	var seen []string
	Walk(elements, func(el *ScreenElement) bool {
		seen = append(seen, el.Text)
		return el.Text != "b"
	})
	if len(seen) != 2 || seen[1] != "b" {
		t.Errorf("got %v, want [a b]", seen)
	}
}

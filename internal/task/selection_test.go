package task

import (
	"sort"
	"testing"
)

func TestSelection_Toggle(t *testing.T) {
	sel := NewSelection()

	sel.Toggle("a")
	if !sel.IsSelected("a") {
		t.Error("expected 'a' selected after toggle")
	}
	if sel.Count() != 1 {
		t.Errorf("expected count 1, got %d", sel.Count())
	}

	sel.Toggle("a")
	if sel.IsSelected("a") {
		t.Error("expected 'a' deselected after second toggle")
	}
	if sel.Count() != 0 {
		t.Errorf("expected count 0, got %d", sel.Count())
	}
}

func TestSelection_SelectAllReplaces(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("old")

	sel.SelectAll([]string{"a", "b", "c"})

	if sel.IsSelected("old") {
		t.Error("SelectAll should replace the set wholesale")
	}
	if sel.Count() != 3 {
		t.Errorf("expected count 3, got %d", sel.Count())
	}

	got := sel.IDs()
	sort.Strings(got)
	if !equalStrings(got, []string{"a", "b", "c"}) {
		t.Errorf("expected ids a,b,c, got %v", got)
	}
}

func TestSelection_Clear(t *testing.T) {
	sel := NewSelection()
	sel.SelectAll([]string{"a", "b"})

	sel.Clear()

	if sel.Count() != 0 || sel.IsSelected("a") {
		t.Error("expected empty selection after clear")
	}

	// The cleared selection is still usable.
	sel.Toggle("c")
	if !sel.IsSelected("c") {
		t.Error("expected selection usable after clear")
	}
}

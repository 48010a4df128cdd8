package task

import (
	"reflect"
	"testing"
	"time"

	"taskpad/internal/storage"
)

func TestStore_Add_Defaults(t *testing.T) {
	s, _ := newTestStore(t)

	created := s.Add("Buy milk", AddOptions{})

	todos := s.Todos()
	if len(todos) != 1 {
		t.Fatalf("expected 1 todo, got %d", len(todos))
	}
	got := todos[0]
	if got.Title != "Buy milk" {
		t.Errorf("expected title 'Buy milk', got %q", got.Title)
	}
	if got.Completed {
		t.Error("expected new todo to be incomplete")
	}
	if got.DueDate != nil {
		t.Errorf("expected nil due date, got %v", got.DueDate)
	}
	if got.Priority != PriorityNone {
		t.Errorf("expected no priority, got %q", got.Priority)
	}
	if got.Order != 1 {
		t.Errorf("expected order 1, got %d", got.Order)
	}
	if got.ID == "" || got.ID != created.ID {
		t.Errorf("expected stable id, got %q and %q", created.ID, got.ID)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
}

func TestStore_Add_TrimsTitle(t *testing.T) {
	s, _ := newTestStore(t)
	created := s.Add("  padded  ", AddOptions{})
	if created.Title != "padded" {
		t.Errorf("expected trimmed title, got %q", created.Title)
	}
}

func TestStore_Add_AcceptsBlankTitle(t *testing.T) {
	s, _ := newTestStore(t)
	created := s.Add("   ", AddOptions{})
	if created.Title != "" {
		t.Errorf("expected empty title stored as given, got %q", created.Title)
	}
	if s.Len() != 1 {
		t.Errorf("expected blank add to be stored, have %d todos", s.Len())
	}
}

func TestStore_Add_OrderIsMaxPlusOne(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	b := s.Add("b", AddOptions{})
	if a.Order != 1 || b.Order != 2 {
		t.Fatalf("expected orders 1,2, got %d,%d", a.Order, b.Order)
	}

	// Deleting the max leaves a gap; the next insert still goes one past
	// the remaining maximum.
	s.Delete(b.ID)
	c := s.Add("c", AddOptions{})
	if c.Order != 2 {
		t.Errorf("expected order 2 after deleting max, got %d", c.Order)
	}
}

func TestStore_Add_WithOptions(t *testing.T) {
	s, _ := newTestStore(t)
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := s.Add("Ship release", AddOptions{
		DueDate:  &due,
		Priority: PriorityHigh,
		Tags:     []Tag{{ID: "work", Name: "Work", Color: "blue"}},
		Subtasks: []Subtask{{ID: "s1", Text: "tag the build"}},
	})
	if created.DueDate == nil || !created.DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, created.DueDate)
	}
	if created.Priority != PriorityHigh {
		t.Errorf("expected high priority, got %q", created.Priority)
	}
	if len(created.Tags) != 1 || created.Tags[0].ID != "work" {
		t.Errorf("unexpected tags: %+v", created.Tags)
	}
	if len(created.Subtasks) != 1 || created.Subtasks[0].Text != "tag the build" {
		t.Errorf("unexpected subtasks: %+v", created.Subtasks)
	}
}

func TestStore_SnapshotsAreDetached(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("a", AddOptions{Tags: []Tag{{ID: "t", Name: "t", Color: "red"}}})

	snap := s.Todos()
	snap[0].Title = "mutated"
	snap[0].Tags[0].Name = "mutated"

	if got := s.Todos()[0]; got.Title != "a" || got.Tags[0].Name != "t" {
		t.Errorf("snapshot mutation leaked into store: %+v", got)
	}
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	s.Add("b", AddOptions{})

	s.Delete(a.ID)
	if s.Len() != 1 {
		t.Fatalf("expected 1 todo after delete, got %d", s.Len())
	}
	if s.Todos()[0].Title != "b" {
		t.Errorf("deleted the wrong todo")
	}
}

func TestStore_Delete_UnknownIDIsNoop(t *testing.T) {
	s, p := newTestStore(t)
	s.Add("a", AddOptions{})
	before := s.Todos()
	saves := p.saves

	s.Delete("nonexistent-id")

	if !reflect.DeepEqual(before, s.Todos()) {
		t.Error("collection changed on unknown delete")
	}
	if p.saves != saves {
		t.Error("unknown delete should not persist")
	}
}

func TestStore_Toggle(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})

	s.Toggle(a.ID)
	if !s.Todos()[0].Completed {
		t.Error("expected todo completed after toggle")
	}
	s.Toggle(a.ID)
	if s.Todos()[0].Completed {
		t.Error("expected todo active after second toggle")
	}
}

func TestStore_Toggle_UnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("a", AddOptions{})
	before := s.Todos()

	s.Toggle("nonexistent-id")

	if !reflect.DeepEqual(before, s.Todos()) {
		t.Error("collection changed on unknown toggle")
	}
}

func TestStore_Update_MergesOnlyPresentFields(t *testing.T) {
	s, _ := newTestStore(t)
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := s.Add("original", AddOptions{DueDate: &due, Priority: PriorityLow})

	title := "  renamed  "
	s.Update(a.ID, TodoUpdate{Title: &title})

	got := s.Todos()[0]
	if got.Title != "renamed" {
		t.Errorf("expected trimmed updated title, got %q", got.Title)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date should be untouched, got %v", got.DueDate)
	}
	if got.Priority != PriorityLow {
		t.Errorf("priority should be untouched, got %q", got.Priority)
	}
}

func TestStore_Update_AllFields(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})

	title := "b"
	due := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	prio := PriorityMedium
	s.Update(a.ID, TodoUpdate{
		Title:    &title,
		DueDate:  &due,
		Priority: &prio,
		Tags:     []Tag{{ID: "home", Name: "Home", Color: "green"}},
		Subtasks: []Subtask{{ID: "s1", Text: "x"}},
	})

	got := s.Todos()[0]
	if got.Title != "b" || got.Priority != PriorityMedium {
		t.Errorf("unexpected todo after full update: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("expected due %v, got %v", due, got.DueDate)
	}
	if len(got.Tags) != 1 || len(got.Subtasks) != 1 {
		t.Errorf("expected replaced tags/subtasks, got %+v", got)
	}
}

func TestStore_Update_ClearDueDate(t *testing.T) {
	s, _ := newTestStore(t)
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := s.Add("a", AddOptions{DueDate: &due})

	s.Update(a.ID, TodoUpdate{ClearDueDate: true})

	if got := s.Todos()[0]; got.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", got.DueDate)
	}
}

func TestStore_Subtasks(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})

	sub, ok := s.AddSubtask(a.ID, "  step one  ")
	if !ok {
		t.Fatal("expected subtask to be created")
	}
	if sub.Text != "step one" {
		t.Errorf("expected trimmed subtask text, got %q", sub.Text)
	}
	if sub.Completed {
		t.Error("expected new subtask to be incomplete")
	}

	done := true
	s.UpdateSubtask(a.ID, sub.ID, SubtaskUpdate{Completed: &done})
	if got := s.Todos()[0].Subtasks[0]; !got.Completed || got.Text != "step one" {
		t.Errorf("expected completed subtask with untouched text, got %+v", got)
	}

	text := "step 1"
	s.UpdateSubtask(a.ID, sub.ID, SubtaskUpdate{Text: &text})
	if got := s.Todos()[0].Subtasks[0]; got.Text != "step 1" || !got.Completed {
		t.Errorf("expected renamed, still-completed subtask, got %+v", got)
	}

	s.DeleteSubtask(a.ID, sub.ID)
	if got := s.Todos()[0]; len(got.Subtasks) != 0 {
		t.Errorf("expected no subtasks after delete, got %+v", got.Subtasks)
	}
}

func TestStore_Subtasks_UnknownIDsAreNoops(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	s.AddSubtask(a.ID, "one")
	before := s.Todos()

	if _, ok := s.AddSubtask("nope", "x"); ok {
		t.Error("expected AddSubtask on unknown todo to fail")
	}
	done := true
	s.UpdateSubtask("nope", "sub", SubtaskUpdate{Completed: &done})
	s.UpdateSubtask(a.ID, "nope", SubtaskUpdate{Completed: &done})
	s.DeleteSubtask("nope", "sub")
	s.DeleteSubtask(a.ID, "nope")

	if !reflect.DeepEqual(before, s.Todos()) {
		t.Error("collection changed on unknown subtask references")
	}
}

func TestStore_Reorder(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	b := s.Add("b", AddOptions{})
	c := s.Add("c", AddOptions{})

	// Move the first todo onto the last position.
	s.Reorder(a.ID, c.ID)

	got := s.Todos()
	if want := []string{b.ID, c.ID, a.ID}; !equalStrings(ids(got), want) {
		t.Errorf("expected id order %v, got %v", want, ids(got))
	}
	if want := []int{1, 2, 3}; !equalInts(orders(got), want) {
		t.Errorf("expected dense orders %v, got %v", want, orders(got))
	}
}

func TestStore_Reorder_RenumbersDensely(t *testing.T) {
	s, _ := newTestStore(t)
	var todoIDs []string
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		todoIDs = append(todoIDs, s.Add(title, AddOptions{}).ID)
	}

	s.Reorder(todoIDs[4], todoIDs[1])
	s.Reorder(todoIDs[0], todoIDs[3])

	got := orders(s.Todos())
	seen := make(map[int]bool)
	for _, o := range got {
		if o < 1 || o > len(todoIDs) || seen[o] {
			t.Fatalf("orders are not the permutation 1..%d: %v", len(todoIDs), got)
		}
		seen[o] = true
	}
	for i, todo := range s.Todos() {
		if todo.Order != i+1 {
			t.Fatalf("order %d at position %d: %v", todo.Order, i, got)
		}
	}
}

func TestStore_Reorder_Noops(t *testing.T) {
	s, p := newTestStore(t)
	a := s.Add("a", AddOptions{})
	s.Add("b", AddOptions{})
	before := s.Todos()
	saves := p.saves

	s.Reorder(a.ID, a.ID)
	s.Reorder(a.ID, "nonexistent-id")
	s.Reorder("nonexistent-id", a.ID)

	if !reflect.DeepEqual(before, s.Todos()) {
		t.Error("collection changed on no-op reorders")
	}
	if p.saves != saves {
		t.Error("no-op reorders should not persist")
	}
}

func TestStore_BulkComplete_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	b := s.Add("b", AddOptions{})
	s.Add("c", AddOptions{})

	s.BulkComplete([]string{a.ID, b.ID, "stale-id"})
	once := s.Todos()
	s.BulkComplete([]string{a.ID, b.ID, "stale-id"})
	twice := s.Todos()

	if !reflect.DeepEqual(once, twice) {
		t.Error("BulkComplete is not idempotent")
	}
	if !once[0].Completed || !once[1].Completed || once[2].Completed {
		t.Errorf("unexpected completion states: %+v", once)
	}
}

func TestStore_BulkDelete(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	s.Add("b", AddOptions{})
	c := s.Add("c", AddOptions{})

	s.BulkDelete([]string{a.ID, c.ID, "stale-id"})

	got := s.Todos()
	if len(got) != 1 || got[0].Title != "b" {
		t.Errorf("expected only 'b' to survive, got %+v", got)
	}
}

func TestStore_BulkSetPriority(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{Priority: PriorityLow})
	b := s.Add("b", AddOptions{})

	s.BulkSetPriority([]string{a.ID, b.ID}, PriorityHigh)
	for _, todo := range s.Todos() {
		if todo.Priority != PriorityHigh {
			t.Errorf("expected high priority on %q, got %q", todo.Title, todo.Priority)
		}
	}

	s.BulkSetPriority([]string{a.ID}, PriorityNone)
	if got := s.Todos()[0].Priority; got != PriorityNone {
		t.Errorf("expected priority cleared, got %q", got)
	}
}

func TestStore_BulkAddTag_NoDuplicates(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add("a", AddOptions{})
	b := s.Add("b", AddOptions{})
	tag := Tag{ID: "t1", Name: "Work", Color: "blue"}

	s.BulkAddTag([]string{a.ID, b.ID}, tag)
	s.BulkAddTag([]string{a.ID, b.ID}, tag)

	for _, todo := range s.Todos() {
		count := 0
		for _, tg := range todo.Tags {
			if tg.ID == "t1" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected exactly one t1 tag on %q, got %d", todo.Title, count)
		}
	}
}

func TestStore_WriteThrough(t *testing.T) {
	s, p := newTestStore(t)
	a := s.Add("persist me", AddOptions{})
	s.AddSubtask(a.ID, "and me")
	s.Toggle(a.ID)

	reloaded := NewStore(p)
	if !reflect.DeepEqual(s.Todos(), reloaded.Todos()) {
		t.Errorf("reloaded store differs:\n got %+v\nwant %+v", reloaded.Todos(), s.Todos())
	}
}

func TestStore_LoadDefaults(t *testing.T) {
	p := newMemPersister()
	s := NewStore(p)
	if got := s.Todos(); len(got) != 0 {
		t.Errorf("expected empty collection from empty persister, got %+v", got)
	}

	// A slot holding the wrong shape resolves to empty as well.
	p.slots[storage.SlotTodos] = `{"not":"an array"}`
	s = NewStore(p)
	if got := s.Todos(); len(got) != 0 {
		t.Errorf("expected empty collection from misshapen slot, got %+v", got)
	}
}

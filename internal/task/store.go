package task

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"taskpad/internal/storage"
)

// Persister is the storage slot interface the Store writes through to.
// *storage.Store satisfies it; tests substitute an in-memory map.
type Persister interface {
	Save(key string, value any)
	Load(key string, dest any) bool
}

// Store owns the authoritative todo collection. Every mutation rewrites
// the full collection to the todos slot; a failed write is logged by
// the persister and the in-memory collection remains authoritative.
//
// Unknown ids are silent no-ops throughout, so bulk operations over a
// stale id set are always safe.
type Store struct {
	todos   []Todo
	persist Persister
	now     func() time.Time
}

// NewStore loads the todos slot and returns a store over it. A missing
// or corrupt slot resolves to an empty collection.
func NewStore(p Persister) *Store {
	var todos []Todo
	if !p.Load(storage.SlotTodos, &todos) || todos == nil {
		todos = []Todo{}
	}
	return &Store{todos: todos, persist: p, now: time.Now}
}

// Todos returns a copy of the current collection. Mutating the returned
// slice or its todos never affects the store.
func (s *Store) Todos() []Todo {
	return cloneTodos(s.todos)
}

// Len returns the number of todos in the collection.
func (s *Store) Len() int {
	return len(s.todos)
}

func (s *Store) save() {
	s.persist.Save(storage.SlotTodos, s.todos)
}

// AddOptions carries the optional fields of a new todo.
type AddOptions struct {
	DueDate  *time.Time
	Priority Priority
	Tags     []Tag
	Subtasks []Subtask
}

// Add appends a new todo with the given title, trimmed. Title
// validation is the caller's job; a blank title is stored as given.
// The new todo's order is one past the current maximum.
func (s *Store) Add(title string, opts AddOptions) Todo {
	maxOrder := 0
	for _, t := range s.todos {
		if t.Order > maxOrder {
			maxOrder = t.Order
		}
	}
	todo := Todo{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Priority:  opts.Priority,
		Tags:      append([]Tag{}, opts.Tags...),
		Subtasks:  append([]Subtask{}, opts.Subtasks...),
		CreatedAt: s.now().UTC(),
		Order:     maxOrder + 1,
	}
	if opts.DueDate != nil {
		due := *opts.DueDate
		todo.DueDate = &due
	}
	s.todos = append(s.todos, todo)
	s.save()
	return todo.clone()
}

// Delete removes the todo with the given id, along with its subtasks
// and tag references.
func (s *Store) Delete(id string) {
	kept := s.todos[:0]
	for _, t := range s.todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.todos) {
		return
	}
	s.todos = kept
	s.save()
}

// Toggle flips the completed flag of the todo with the given id.
func (s *Store) Toggle(id string) {
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i].Completed = !s.todos[i].Completed
			s.save()
			return
		}
	}
}

// TodoUpdate is a partial update: nil fields are left untouched. A nil
// DueDate means "unchanged"; set ClearDueDate to remove the due date.
// A non-nil Tags or Subtasks slice replaces the todo's list wholesale.
type TodoUpdate struct {
	Title        *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *Priority
	Tags         []Tag
	Subtasks     []Subtask
}

// Update merge-applies u to the todo with the given id.
func (s *Store) Update(id string, u TodoUpdate) {
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		t := &s.todos[i]
		if u.Title != nil {
			t.Title = strings.TrimSpace(*u.Title)
		}
		if u.ClearDueDate {
			t.DueDate = nil
		} else if u.DueDate != nil {
			due := *u.DueDate
			t.DueDate = &due
		}
		if u.Priority != nil {
			t.Priority = *u.Priority
		}
		if u.Tags != nil {
			t.Tags = append([]Tag(nil), u.Tags...)
		}
		if u.Subtasks != nil {
			t.Subtasks = append([]Subtask(nil), u.Subtasks...)
		}
		s.save()
		return
	}
}

// AddSubtask appends a subtask with the given text, trimmed, to the
// todo with id todoID. The second return is false when the todo does
// not exist.
func (s *Store) AddSubtask(todoID, text string) (Subtask, bool) {
	for i := range s.todos {
		if s.todos[i].ID != todoID {
			continue
		}
		sub := Subtask{
			ID:   uuid.NewString(),
			Text: strings.TrimSpace(text),
		}
		s.todos[i].Subtasks = append(s.todos[i].Subtasks, sub)
		s.save()
		return sub, true
	}
	return Subtask{}, false
}

// SubtaskUpdate is a partial update of one subtask.
type SubtaskUpdate struct {
	Text      *string
	Completed *bool
}

// UpdateSubtask merge-applies u to one subtask of one todo.
func (s *Store) UpdateSubtask(todoID, subtaskID string, u SubtaskUpdate) {
	for i := range s.todos {
		if s.todos[i].ID != todoID {
			continue
		}
		for j := range s.todos[i].Subtasks {
			sub := &s.todos[i].Subtasks[j]
			if sub.ID != subtaskID {
				continue
			}
			if u.Text != nil {
				sub.Text = strings.TrimSpace(*u.Text)
			}
			if u.Completed != nil {
				sub.Completed = *u.Completed
			}
			s.save()
			return
		}
		return
	}
}

// DeleteSubtask removes one subtask from one todo.
func (s *Store) DeleteSubtask(todoID, subtaskID string) {
	for i := range s.todos {
		if s.todos[i].ID != todoID {
			continue
		}
		subs := s.todos[i].Subtasks
		kept := subs[:0]
		for _, sub := range subs {
			if sub.ID != subtaskID {
				kept = append(kept, sub)
			}
		}
		if len(kept) == len(subs) {
			return
		}
		s.todos[i].Subtasks = kept
		s.save()
		return
	}
}

// Reorder moves the todo with id activeID to the position currently
// held by overID, shifting the todos in between, then renumbers the
// whole collection's order fields densely as 1..N. A partial
// renumbering would corrupt custom-sort positions of untouched todos,
// so every todo is rewritten. No-op when either id is unknown or the
// ids are equal.
func (s *Store) Reorder(activeID, overID string) {
	oldIndex, newIndex := -1, -1
	for i, t := range s.todos {
		switch t.ID {
		case activeID:
			oldIndex = i
		case overID:
			newIndex = i
		}
	}
	if oldIndex == -1 || newIndex == -1 || oldIndex == newIndex {
		return
	}

	moved := s.todos[oldIndex]
	s.todos = append(s.todos[:oldIndex], s.todos[oldIndex+1:]...)
	s.todos = append(s.todos[:newIndex], append([]Todo{moved}, s.todos[newIndex:]...)...)

	for i := range s.todos {
		s.todos[i].Order = i + 1
	}
	s.save()
}

// BulkComplete marks every todo whose id is in ids as completed.
// Already-completed todos are unaffected; calling it twice with the
// same ids yields the same collection.
func (s *Store) BulkComplete(ids []string) {
	set := idSet(ids)
	changed := false
	for i := range s.todos {
		if _, ok := set[s.todos[i].ID]; ok && !s.todos[i].Completed {
			s.todos[i].Completed = true
			changed = true
		}
	}
	if changed {
		s.save()
	}
}

// BulkDelete removes every todo whose id is in ids. Unknown ids are
// ignored.
func (s *Store) BulkDelete(ids []string) {
	set := idSet(ids)
	kept := s.todos[:0]
	for _, t := range s.todos {
		if _, ok := set[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.todos) {
		return
	}
	s.todos = kept
	s.save()
}

// BulkSetPriority overwrites the priority of every todo whose id is in
// ids.
func (s *Store) BulkSetPriority(ids []string, priority Priority) {
	set := idSet(ids)
	changed := false
	for i := range s.todos {
		if _, ok := set[s.todos[i].ID]; ok {
			s.todos[i].Priority = priority
			changed = true
		}
	}
	if changed {
		s.save()
	}
}

// BulkAddTag appends tag to every todo whose id is in ids, skipping
// todos that already carry a tag with the same id.
func (s *Store) BulkAddTag(ids []string, tag Tag) {
	set := idSet(ids)
	changed := false
	for i := range s.todos {
		if _, ok := set[s.todos[i].ID]; !ok {
			continue
		}
		if hasTag(s.todos[i].Tags, tag.ID) {
			continue
		}
		s.todos[i].Tags = append(s.todos[i].Tags, tag)
		changed = true
	}
	if changed {
		s.save()
	}
}

func hasTag(tags []Tag, id string) bool {
	for _, t := range tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

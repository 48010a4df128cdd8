// Package task holds the todo collection and the pure query helpers
// around it: filtering, sorting, and the multi-select set used by bulk
// actions. All state transitions are synchronous and run to completion;
// persistence is a write-through to a storage slot after each mutation.
package task

import "time"

// Priority is the importance level of a todo. The zero value means no
// priority was assigned.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// priorityRank orders priorities for sorting; unassigned sorts lowest.
var priorityRank = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
	PriorityNone:   0,
}

// Rank returns the numeric sort rank of p. Unknown values rank as none.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Valid reports whether p is one of the defined priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TagColors is the fixed palette tags can use.
var TagColors = []string{"red", "orange", "yellow", "green", "blue", "indigo", "purple", "pink"}

// NormalizeTagColor maps an unknown color name to the first palette entry.
func NormalizeTagColor(color string) string {
	for _, c := range TagColors {
		if c == color {
			return color
		}
	}
	return TagColors[0]
}

// Tag is a user-defined label attached to todos.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Subtask is a checklist entry inside a single todo.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Todo is a single task record. The Store owns the canonical collection;
// values handed out by it are copies and mutating them has no effect.
type Todo struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate"`
	Priority  Priority   `json:"priority,omitempty"`
	Tags      []Tag      `json:"tags"`
	Subtasks  []Subtask  `json:"subtasks"`
	CreatedAt time.Time  `json:"createdAt"`

	// Order is the 1-based position under custom sorting, assigned on
	// insert and renumbered densely after every reorder.
	Order int `json:"order"`
}

func (t Todo) clone() Todo {
	c := t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.Tags != nil {
		c.Tags = append([]Tag(nil), t.Tags...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return c
}

func cloneTodos(todos []Todo) []Todo {
	out := make([]Todo, len(todos))
	for i, t := range todos {
		out[i] = t.clone()
	}
	return out
}

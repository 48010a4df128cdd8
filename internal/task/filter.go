package task

import "strings"

// Status narrows a todo list by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Filters describes one filtered view of the collection. The zero value
// filters nothing.
//
// Priority is a pointer so that "no priority filter" (nil) and "only
// todos without a priority" (&PriorityNone) stay distinct. TagIDs use
// OR semantics: a todo matches when any of its tag ids is listed.
type Filters struct {
	Status   Status
	Priority *Priority
	Search   string
	TagIDs   []string
}

// Filter returns the todos matching every category of f, in their
// original order. The input is never mutated; the categories compose
// by intersection and are applied status, priority, search, tags.
func Filter(todos []Todo, f Filters) []Todo {
	result := todos

	switch f.Status {
	case StatusActive:
		result = keep(result, func(t Todo) bool { return !t.Completed })
	case StatusCompleted:
		result = keep(result, func(t Todo) bool { return t.Completed })
	}

	if f.Priority != nil {
		want := *f.Priority
		result = keep(result, func(t Todo) bool { return t.Priority == want })
	}

	if query := strings.ToLower(strings.TrimSpace(f.Search)); query != "" {
		result = keep(result, func(t Todo) bool {
			return strings.Contains(strings.ToLower(t.Title), query)
		})
	}

	if len(f.TagIDs) > 0 {
		wanted := idSet(f.TagIDs)
		result = keep(result, func(t Todo) bool {
			for _, tag := range t.Tags {
				if _, ok := wanted[tag.ID]; ok {
					return true
				}
			}
			return false
		})
	}

	// Detach from the input so callers can't alias it through the result.
	if len(result) == len(todos) {
		result = append([]Todo(nil), todos...)
	}
	return result
}

func keep(todos []Todo, pred func(Todo) bool) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

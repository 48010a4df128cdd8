package task

import (
	"sort"
	"strings"

	"taskpad/internal/storage"
)

// SortBy selects the comparator used to order the list.
type SortBy string

const (
	SortCustom   SortBy = "custom"
	SortDate     SortBy = "date"
	SortPriority SortBy = "priority"
	SortAlpha    SortBy = "alpha"
)

// Direction flips the comparator.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortPreference is the persisted shape of the todo-sorting slot.
type SortPreference struct {
	SortBy        SortBy    `json:"sortBy"`
	SortDirection Direction `json:"sortDirection"`
}

func defaultSortPreference() SortPreference {
	return SortPreference{SortBy: SortCustom, SortDirection: Asc}
}

// sanitize replaces each invalid field independently with its default,
// so a half-corrupt preference keeps its valid half.
func (p SortPreference) sanitize() SortPreference {
	def := defaultSortPreference()
	switch p.SortBy {
	case SortCustom, SortDate, SortPriority, SortAlpha:
	default:
		p.SortBy = def.SortBy
	}
	switch p.SortDirection {
	case Asc, Desc:
	default:
		p.SortDirection = def.SortDirection
	}
	return p
}

// Sorter orders todo lists according to a persisted user preference.
type Sorter struct {
	pref    SortPreference
	persist Persister
}

// NewSorter loads the sorting preference slot, falling back field-wise
// to {custom, asc}.
func NewSorter(p Persister) *Sorter {
	pref := defaultSortPreference()
	var stored SortPreference
	if p.Load(storage.SlotSorting, &stored) {
		pref = stored.sanitize()
	}
	return &Sorter{pref: pref, persist: p}
}

// Preference returns the current sorting preference.
func (s *Sorter) Preference() SortPreference {
	return s.pref
}

// SetSortBy changes the sort mode and persists the preference. Invalid
// values are ignored.
func (s *Sorter) SetSortBy(v SortBy) {
	switch v {
	case SortCustom, SortDate, SortPriority, SortAlpha:
	default:
		return
	}
	s.pref.SortBy = v
	s.persist.Save(storage.SlotSorting, s.pref)
}

// SetDirection changes the sort direction and persists the preference.
// Invalid values are ignored.
func (s *Sorter) SetDirection(v Direction) {
	switch v {
	case Asc, Desc:
	default:
		return
	}
	s.pref.SortDirection = v
	s.persist.Save(storage.SlotSorting, s.pref)
}

// Sort returns a new slice holding todos ordered by the current
// preference. The input is never mutated. The direction acts as a sign
// multiplier on the comparator, uniformly across modes.
func (s *Sorter) Sort(todos []Todo) []Todo {
	sorted := append([]Todo(nil), todos...)
	if len(sorted) < 2 {
		return sorted
	}

	multiplier := 1
	if s.pref.SortDirection == Desc {
		multiplier = -1
	}

	var cmp func(a, b Todo) int
	switch s.pref.SortBy {
	case SortDate:
		cmp = func(a, b Todo) int {
			return compareInt64(createdMillis(a), createdMillis(b))
		}
	case SortPriority:
		cmp = func(a, b Todo) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case SortAlpha:
		cmp = func(a, b Todo) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default: // custom
		cmp = func(a, b Todo) int {
			return a.Order - b.Order
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return cmp(sorted[i], sorted[j])*multiplier < 0
	})
	return sorted
}

// createdMillis treats a missing creation time as the epoch.
func createdMillis(t Todo) int64 {
	if t.CreatedAt.IsZero() {
		return 0
	}
	return t.CreatedAt.UnixMilli()
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

package task

import (
	"encoding/json"
	"testing"
	"time"
)

// memPersister is an in-memory stand-in for the sqlite slot store. It
// round-trips through JSON so tests exercise the persisted shape.
type memPersister struct {
	slots map[string]string
	saves int
}

func newMemPersister() *memPersister {
	return &memPersister{slots: make(map[string]string)}
}

func (p *memPersister) Save(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	p.slots[key] = string(data)
	p.saves++
}

func (p *memPersister) Load(key string, dest any) bool {
	raw, ok := p.slots[key]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func newTestStore(t *testing.T) (*Store, *memPersister) {
	t.Helper()
	p := newMemPersister()
	s := NewStore(p)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s, p
}

func ids(todos []Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func orders(todos []Todo) []int {
	out := make([]int, len(todos))
	for i, t := range todos {
		out[i] = t.Order
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

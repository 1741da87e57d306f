package stands

import "sync"

// Handle loads a [Table] exactly once, on first use, no matter how many goroutines ask for it.
//
// A failed load is remembered and returned to every later caller.
type Handle struct {
	once  sync.Once
	load  func() (*Table, error)
	table *Table
	err   error
}

// NewHandle wraps load. load runs at most once.
func NewHandle(load func() (*Table, error)) *Handle {
	return &Handle{load: load}
}

// Static returns a Handle around an already built table.
func Static(t *Table) *Handle {
	return NewHandle(func() (*Table, error) { return t, nil })
}

// Table returns the loaded table, loading it if this is the first call.
func (h *Handle) Table() (*Table, error) {
	h.once.Do(func() {
		h.table, h.err = h.load()
	})
	return h.table, h.err
}

package action

import "fmt"

// Arena is the flat, ordered list of pending actions of one flush. Actions
// refer to each other by index into the arena, never by pointer.
type Arena struct {
	actions []*InsertAction
	ids     []any
	known   []bool
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// Add appends a and returns its index
func (r *Arena) Add(a *InsertAction) int {
	idx := len(r.actions)
	a.index = idx
	r.actions = append(r.actions, a)
	r.ids = append(r.ids, a.Key.ID)
	r.known = append(r.known, a.Key.ID != nil)
	return idx
}

// At returns the action at index i
func (r *Arena) At(i int) *InsertAction {
	return r.actions[i]
}

// Len returns the number of actions
func (r *Arena) Len() int {
	return len(r.actions)
}

// Actions returns the actions in registration order
func (r *Arena) Actions() []*InsertAction {
	return r.actions
}

// Contains reports whether i is a valid index
func (r *Arena) Contains(i int) bool {
	return i >= 0 && i < len(r.actions)
}

// Identifier returns the identifier of action i and whether it is known yet
func (r *Arena) Identifier(i int) (any, bool) {
	if !r.Contains(i) {
		return nil, false
	}
	return r.ids[i], r.known[i]
}

// ResolveIdentifier records the database-assigned identifier of action i.
// Identifiers are assigned at most once.
func (r *Arena) ResolveIdentifier(i int, id any) error {
	if !r.Contains(i) {
		return fmt.Errorf("%w: %d", ErrNoSuchAction, i)
	}
	if r.known[i] {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, r.actions[i])
	}
	r.ids[i] = id
	r.known[i] = true
	r.actions[i].Key.ID = id
	return nil
}

// Bind returns the parameter values of action i, replacing Ref values with the
// identifiers they stand for.
func (r *Arena) Bind(i int) ([]any, error) {
	a := r.actions[i]
	args := make([]any, len(a.Columns))
	for n, c := range a.Columns {
		ref, ok := c.Value.(Ref)
		if !ok {
			args[n] = c.Value
			continue
		}
		id, known := r.Identifier(ref.Action)
		if !known {
			return nil, fmt.Errorf("%w: %s.%s -> action %d", ErrUnresolvedReference, a, c.Name, ref.Action)
		}
		args[n] = id
	}
	return args, nil
}

// Reset discards all actions
func (r *Arena) Reset() {
	r.actions = nil
	r.ids = nil
	r.known = nil
}

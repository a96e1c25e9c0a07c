package graph

import "errors"

var (
	// ErrCircularDependency is the cause of every *CycleError
	ErrCircularDependency = errors.New("circular dependency between inserts")

	// ErrUnknownAssociation is returned for a link whose property has no descriptor
	ErrUnknownAssociation = errors.New("unknown association")

	// ErrDanglingLink is returned for a link to an index outside the arena
	ErrDanglingLink = errors.New("link to unknown action")

	// ErrUnknownTieBreak is returned by ParseTieBreak
	ErrUnknownTieBreak = errors.New("unknown tie-break")
)

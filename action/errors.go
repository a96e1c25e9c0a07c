package action

import "errors"

var (
	// ErrNoSuchAction is returned for an index outside the arena
	ErrNoSuchAction = errors.New("no such action")

	// ErrAlreadyResolved is returned when an identifier is resolved twice
	ErrAlreadyResolved = errors.New("identifier already resolved")

	// ErrUnresolvedReference is returned when a column refers to an action whose
	// identifier is not known at bind time
	ErrUnresolvedReference = errors.New("reference to unresolved identifier")
)

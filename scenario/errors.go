package scenario

import "errors"

var (
	// ErrUnknownKind is returned for an association kind other than owning, inverse or embedded
	ErrUnknownKind = errors.New("unknown association kind")

	// ErrUnknownEntity is returned when an insert names an entity that is not mapped
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownName is returned when a link or column refers to an insert that does not exist yet
	ErrUnknownName = errors.New("unknown insert name")

	// ErrDuplicateName is returned when two inserts share a name
	ErrDuplicateName = errors.New("duplicate insert name")

	// ErrMissingField is returned when a required field is empty
	ErrMissingField = errors.New("missing required field")
)

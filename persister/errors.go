package persister

import "errors"

var (
	// ErrNoEntityName is returned when registering a persister without a name
	ErrNoEntityName = errors.New("persister has no entity name")

	// ErrNoTable is returned when registering a persister without a table
	ErrNoTable = errors.New("persister has no table")

	// ErrDuplicateEntity is returned when an entity name is registered twice
	ErrDuplicateEntity = errors.New("entity already registered")

	// ErrNilAssociation is returned for an association without a descriptor
	ErrNilAssociation = errors.New("association has no descriptor")
)

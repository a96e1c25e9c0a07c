package writebatch

import "errors"

var (
	// ErrManagerClosed is returned when operations are attempted on a closed manager
	ErrManagerClosed = errors.New("write batch manager is closed")

	// ErrEmptyBatch is returned when an empty batch is executed
	ErrEmptyBatch = errors.New("batch has no members")

	// ErrNotBatchable is returned for a statement other than an insert
	ErrNotBatchable = errors.New("statement cannot be batched")

	// ErrParameterCount is returned when an insert binds a different number of
	// values than its statement has placeholders
	ErrParameterCount = errors.New("parameter count does not match placeholders")

	// ErrGeneratedKeys is returned when a statement returns fewer generated keys
	// than it has members
	ErrGeneratedKeys = errors.New("missing generated keys")
)

// ErrUnknownAction is returned when a batch member does not belong to the
// manager's arena
var ErrUnknownAction = errors.New("action is not part of this flush")

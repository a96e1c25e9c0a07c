package config

import "errors"

var (
	// ErrBatchSize is returned for a statement_batch_size that is not positive
	ErrBatchSize = errors.New("statement_batch_size must be greater than zero")

	// ErrDriver is returned for an unsupported database driver
	ErrDriver = errors.New("unsupported database driver")
)

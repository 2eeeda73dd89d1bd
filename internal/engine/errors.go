package engine

import "errors"

var (
	// ErrUnsupportedDataType is recoverable at table granularity: the owning
	// table is skipped for data, the run continues.
	ErrUnsupportedDataType = errors.New("unsupported data type")

	// ErrInvalidSchemaModel flags a model that violates catalog invariants,
	// e.g. a table without columns. Always fatal.
	ErrInvalidSchemaModel = errors.New("invalid schema model")
)

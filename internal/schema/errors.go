package schema

import "errors"

// Introspection failures are fatal and happen before any output is written,
// so callers only need to classify, not recover.
var (
	ErrSchemaNotFound   = errors.New("schema not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConnection       = errors.New("connection error")
)

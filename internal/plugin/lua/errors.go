package lua

import "errors"

// Errors for interpreter operations.
var (
	// ErrRuntimeClosed is returned when operating on a closed runtime.
	ErrRuntimeClosed = errors.New("lua runtime is closed")

	// ErrNotTable is returned when a Lua value expected to be a table
	// is something else.
	ErrNotTable = errors.New("lua value is not a table")
)

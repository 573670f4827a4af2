package engine

import "errors"

// Engine errors.
var (
	// ErrEmptyCommand is returned when a blank command is submitted.
	ErrEmptyCommand = errors.New("empty engine command")

	// ErrProfileNotFound is returned when a named profile does not exist.
	ErrProfileNotFound = errors.New("engine profile not found")

	// ErrUnnamedProfile is returned when a profile entry lacks a name.
	ErrUnnamedProfile = errors.New("engine profile has no name")

	// ErrProfileWithoutPath is returned when a profile entry lacks an
	// executable path.
	ErrProfileWithoutPath = errors.New("engine profile has no executable path")
)

package app

import "errors"

var (
	// ErrNoDecompiler reports a decompiler id the active plugin set
	// does not provide.
	ErrNoDecompiler = errors.New("no such decompiler")

	// ErrBadAddress reports an address argument that does not parse.
	ErrBadAddress = errors.New("invalid address")

	// ErrNoProfilesPath reports an engine profile selection without a
	// profile catalog to read it from.
	ErrNoProfilesPath = errors.New("engine profile set but profiles_path is empty")
)

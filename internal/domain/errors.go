package domain

import "errors"

var (
	// ErrNotFound is returned by a KeyValueStore when the key has never been written
	ErrNotFound = errors.New("not found")

	// ErrInvalidCategory is returned when a category name is not recognised
	ErrInvalidCategory = errors.New("category must be cash, equities, digitalAssets or other")

	// ErrInvalidPosition wraps structural position validation failures
	ErrInvalidPosition = errors.New("invalid position")
)

package domain

import "errors"

var (
	// ErrPokemonNotFound means the requested Pokemon was not found.
	ErrPokemonNotFound = errors.New("pokemon not found")

	// ErrCacheFailure means an internal error occurred while interacting with the cache (not a cache miss).
	ErrCacheFailure = errors.New("cache operation failed")
)

// LoadFailedMessage is the user-facing message published when a load
// finishes with zero successfully fetched items.
const LoadFailedMessage = "Failed to load Pokemon data"

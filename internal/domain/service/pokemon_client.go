package service

import (
	"context"

	"pokedex-service/internal/domain/entity"
)

// PokemonClient defines the interface for fetching Pokemon data from the API.
type PokemonClient interface {
	// FetchCollectionSummary retrieves the lightweight collection listing.
	FetchCollectionSummary(ctx context.Context) (entity.Summary, error)

	// FetchPokemonDetail retrieves the full record for a single Pokemon.
	// The returned record's ID always equals the requested id.
	FetchPokemonDetail(ctx context.Context, id int) (entity.Pokemon, error)

	// CancelAll cooperatively cancels every in-flight request issued by this
	// client instance. Best-effort and idempotent.
	CancelAll()
}

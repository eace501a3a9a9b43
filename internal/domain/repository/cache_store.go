package repository

import (
	"context"

	"pokedex-service/internal/domain/entity"
)

// CacheStore defines the interface for the persisted Pokemon cache.
type CacheStore interface {
	// FetchAll returns every persisted entry regardless of validity.
	// Ordering is unspecified; callers sort by ID before use.
	FetchAll(ctx context.Context) ([]entity.CacheEntry, error)

	// ReplaceAll transactionally deletes every existing entry and inserts
	// one fresh entry per item. It is a no-op when any currently persisted
	// entry is still valid, to avoid churn when two loads race.
	ReplaceAll(ctx context.Context, items []entity.Pokemon) error
}

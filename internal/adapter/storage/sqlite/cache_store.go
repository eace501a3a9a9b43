package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"

	"pokedex-service/internal/domain"
	"pokedex-service/internal/domain/entity"
	domainRepo "pokedex-service/internal/domain/repository"
)

// Compile-time check
var _ domainRepo.CacheStore = (*CacheStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS pokemon_cache (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	sprite_url   TEXT NOT NULL,
	types        TEXT NOT NULL,
	abilities    TEXT NOT NULL,
	moves        TEXT NOT NULL,
	last_updated INTEGER NOT NULL,
	expires_at   INTEGER NOT NULL
);`

// CacheStore implements the cache store on SQLite. ReplaceAll runs its read,
// delete, and insert phases inside a single transaction, and a mutex keeps
// the store single-writer per instance.
type CacheStore struct {
	db     *sql.DB
	logger *zap.Logger

	writeMu sync.Mutex
	now     func() time.Time
}

// Open opens (creating if needed) the SQLite cache database at path.
func Open(path string, logger *zap.Logger) (*CacheStore, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open sqlite cache at %s: %v", domain.ErrCacheFailure, path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create cache schema: %v", domain.ErrCacheFailure, err)
	}
	return &CacheStore{
		db:     db,
		logger: logger.Named("SQLiteCacheStore"),
		now:    time.Now,
	}, nil
}

// Close releases the underlying database handle.
func (s *CacheStore) Close() error {
	return s.db.Close()
}

// FetchAll returns every persisted cache entry regardless of validity.
func (s *CacheStore) FetchAll(ctx context.Context) ([]entity.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, sprite_url, types, abilities, moves, last_updated, expires_at FROM pokemon_cache`)
	if err != nil {
		return nil, fmt.Errorf("%w: query failed: %v", domain.ErrCacheFailure, err)
	}
	defer rows.Close()

	var entries []entity.CacheEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration failed: %v", domain.ErrCacheFailure, err)
	}
	s.logger.Debug("Fetched cache entries", zap.Int("count", len(entries)))
	return entries, nil
}

// ReplaceAll atomically swaps the cached collection for the given items.
// Skipped entirely when any currently persisted entry is still valid.
func (s *CacheStore) ReplaceAll(ctx context.Context, items []entity.Pokemon) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction failed: %v", domain.ErrCacheFailure, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id, name, sprite_url, last_updated, expires_at FROM pokemon_cache`)
	if err != nil {
		return fmt.Errorf("%w: validity check query failed: %v", domain.ErrCacheFailure, err)
	}
	stillValid := false
	for rows.Next() {
		var e entity.CacheEntry
		var lastUpdated, expiresAt int64
		if err := rows.Scan(&e.ID, &e.Name, &e.SpriteURL, &lastUpdated, &expiresAt); err != nil {
			rows.Close()
			return fmt.Errorf("%w: validity check scan failed: %v", domain.ErrCacheFailure, err)
		}
		e.LastUpdated = time.Unix(0, lastUpdated)
		e.ExpiresAt = time.Unix(0, expiresAt)
		if e.ValidAt(now) {
			stillValid = true
			break
		}
	}
	rows.Close()

	if stillValid {
		s.logger.Debug("Skipping cache replace, a valid entry already exists")
		return nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pokemon_cache`); err != nil {
		return fmt.Errorf("%w: delete failed: %v", domain.ErrCacheFailure, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pokemon_cache (id, name, sprite_url, types, abilities, moves, last_updated, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert failed: %v", domain.ErrCacheFailure, err)
	}
	defer stmt.Close()

	for _, item := range items {
		e := entity.NewCacheEntry(item, now)
		types, abilities, moves, err := marshalLists(e)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Name, e.SpriteURL, types, abilities, moves,
			e.LastUpdated.UnixNano(), e.ExpiresAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("%w: insert for id %d failed: %v", domain.ErrCacheFailure, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit failed: %v", domain.ErrCacheFailure, err)
	}
	s.logger.Debug("Replaced cache entries", zap.Int("count", len(items)))
	return nil
}

func scanEntry(rows *sql.Rows) (entity.CacheEntry, error) {
	var e entity.CacheEntry
	var types, abilities, moves string
	var lastUpdated, expiresAt int64
	if err := rows.Scan(&e.ID, &e.Name, &e.SpriteURL, &types, &abilities, &moves, &lastUpdated, &expiresAt); err != nil {
		return e, fmt.Errorf("%w: scan failed: %v", domain.ErrCacheFailure, err)
	}
	if err := json.Unmarshal([]byte(types), &e.Types); err != nil {
		return e, fmt.Errorf("%w: corrupt types column for id %d: %v", domain.ErrCacheFailure, e.ID, err)
	}
	if err := json.Unmarshal([]byte(abilities), &e.Abilities); err != nil {
		return e, fmt.Errorf("%w: corrupt abilities column for id %d: %v", domain.ErrCacheFailure, e.ID, err)
	}
	if err := json.Unmarshal([]byte(moves), &e.Moves); err != nil {
		return e, fmt.Errorf("%w: corrupt moves column for id %d: %v", domain.ErrCacheFailure, e.ID, err)
	}
	e.LastUpdated = time.Unix(0, lastUpdated)
	e.ExpiresAt = time.Unix(0, expiresAt)
	return e, nil
}

func marshalLists(e entity.CacheEntry) (types, abilities, moves string, err error) {
	tb, err := json.Marshal(e.Types)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: marshal types for id %d: %v", domain.ErrCacheFailure, e.ID, err)
	}
	ab, err := json.Marshal(e.Abilities)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: marshal abilities for id %d: %v", domain.ErrCacheFailure, e.ID, err)
	}
	mb, err := json.Marshal(e.Moves)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: marshal moves for id %d: %v", domain.ErrCacheFailure, e.ID, err)
	}
	return string(tb), string(ab), string(mb), nil
}

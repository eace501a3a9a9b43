package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"pokedex-service/internal/config"
	"pokedex-service/internal/domain/entity"
	domainRepo "pokedex-service/internal/domain/repository"
)

// Compile-time check
var _ domainRepo.CacheStore = (*CacheStore)(nil)

const entryKeyPrefix = "pokemon_"

// CacheStore implements the cache store on the go-cache in-memory library.
// Each Pokemon is one go-cache item whose TTL mirrors the entry's ExpiresAt,
// so expired entries age out on their own.
type CacheStore struct {
	cache  *cache.Cache
	logger *zap.Logger

	writeMu sync.Mutex
	now     func() time.Time
}

// NewCacheStore creates a new in-memory cache store instance.
func NewCacheStore(cfg config.CacheConfig, logger *zap.Logger) *CacheStore {
	c := cache.New(cfg.GetTTL(), cfg.GetCleanupInterval())
	logger.Info(
		"Initialized go-cache store",
		zap.Duration("ttl", cfg.GetTTL()),
		zap.Duration("cleanupInterval", cfg.GetCleanupInterval()),
	)

	return &CacheStore{
		cache:  c,
		logger: logger.Named("MemoryCacheStore"),
		now:    time.Now,
	}
}

// FetchAll returns every entry still held by the cache. Ordering is
// unspecified; callers sort by ID.
func (s *CacheStore) FetchAll(_ context.Context) ([]entity.CacheEntry, error) {
	items := s.cache.Items()
	entries := make([]entity.CacheEntry, 0, len(items))
	for key, item := range items {
		e, ok := item.Object.(entity.CacheEntry)
		if !ok {
			s.logger.Warn(
				"Cache data type mismatch for key",
				zap.String("key", key), zap.Any("type", fmt.Sprintf("%T", item.Object)),
			)
			continue
		}
		entries = append(entries, e)
	}
	s.logger.Debug("Fetched cache entries", zap.Int("count", len(entries)))
	return entries, nil
}

// ReplaceAll swaps the cached collection for the given items. Skipped
// entirely when any currently held entry is still valid.
func (s *CacheStore) ReplaceAll(_ context.Context, items []entity.Pokemon) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()
	for key, item := range s.cache.Items() {
		if e, ok := item.Object.(entity.CacheEntry); ok && e.ValidAt(now) {
			s.logger.Debug("Skipping cache replace, a valid entry already exists", zap.String("key", key))
			return nil
		}
	}

	s.cache.Flush()
	for _, item := range items {
		e := entity.NewCacheEntry(item, now)
		s.cache.Set(entryKey(e.ID), e, e.ExpiresAt.Sub(now))
	}
	s.logger.Debug("Replaced cache entries", zap.Int("count", len(items)))
	return nil
}

// Seed inserts raw entries directly, bypassing the ReplaceAll guard.
// Intended for tests that need entries with controlled timestamps.
func (s *CacheStore) Seed(entries []entity.CacheEntry) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, e := range entries {
		s.cache.Set(entryKey(e.ID), e, cache.NoExpiration)
	}
}

func entryKey(id int) string {
	return entryKeyPrefix + strconv.Itoa(id)
}

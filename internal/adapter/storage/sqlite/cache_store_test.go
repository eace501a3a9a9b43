package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pokedex-service/internal/domain/entity"
)

func testStore(t *testing.T) *CacheStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func richPokemon(id int, name string) entity.Pokemon {
	return entity.Pokemon{
		ID:        id,
		Name:      name,
		SpriteURL: "https://example.com/" + name + ".png",
		Types:     []entity.TypeSlot{{Slot: 1, Name: "electric"}},
		Abilities: []entity.Ability{{Name: "static", Slot: 1}},
		Moves:     []string{"thunderbolt", "quick-attack"},
	}
}

func TestCacheStore_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, []entity.Pokemon{
		richPokemon(25, "pikachu"),
		richPokemon(26, "raichu"),
	}))

	entries, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[int]entity.CacheEntry{}
	for _, e := range entries {
		byID[e.ID] = e
	}

	pikachu, ok := byID[25]
	require.True(t, ok)
	assert.Equal(t, "pikachu", pikachu.Name)
	assert.Equal(t, []string{"electric"}, pikachu.Types)
	assert.Equal(t, []string{"static"}, pikachu.Abilities)
	assert.Equal(t, []string{"thunderbolt", "quick-attack"}, pikachu.Moves)
	assert.Equal(t, pikachu.LastUpdated.Add(entity.CacheTTL).UnixNano(), pikachu.ExpiresAt.UnixNano())
	assert.True(t, pikachu.ValidAt(time.Now()))
}

func TestCacheStore_FetchAll_Empty(t *testing.T) {
	s := testStore(t)

	entries, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheStore_ReplaceAll_SkipsWhenValidEntryExists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, []entity.Pokemon{richPokemon(1, "bulbasaur")}))
	require.NoError(t, s.ReplaceAll(ctx, []entity.Pokemon{richPokemon(2, "ivysaur"), richPokemon(3, "venusaur")}))

	entries, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ID)
}

func TestCacheStore_ReplaceAll_SwapsExpiredBatchAtomically(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	require.NoError(t, s.ReplaceAll(ctx, []entity.Pokemon{richPokemon(1, "bulbasaur"), richPokemon(2, "ivysaur")}))

	s.now = func() time.Time { return base.Add(entity.CacheTTL + time.Second) }
	require.NoError(t, s.ReplaceAll(ctx, []entity.Pokemon{richPokemon(150, "mewtwo")}))

	entries, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 150, entries[0].ID)
	assert.Equal(t, "mewtwo", entries[0].Name)
}

func TestCacheStore_ReplaceAll_EmptyBatchClearsStore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	require.NoError(t, s.ReplaceAll(ctx, []entity.Pokemon{richPokemon(7, "squirtle")}))

	s.now = func() time.Time { return base.Add(entity.CacheTTL + time.Second) }
	require.NoError(t, s.ReplaceAll(ctx, nil))

	entries, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

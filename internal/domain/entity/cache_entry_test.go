package entity

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry(now time.Time) CacheEntry {
	return CacheEntry{
		ID:          25,
		Name:        "pikachu",
		SpriteURL:   "https://example.com/25.png",
		LastUpdated: now.Add(-time.Minute),
		ExpiresAt:   now.Add(14 * time.Minute),
	}
}

func TestCacheEntry_ValidAt(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(e *CacheEntry)
		want   bool
	}{
		{"all conditions hold", func(e *CacheEntry) {}, true},
		{"zero id", func(e *CacheEntry) { e.ID = 0 }, false},
		{"negative id", func(e *CacheEntry) { e.ID = -3 }, false},
		{"empty name", func(e *CacheEntry) { e.Name = "" }, false},
		{"empty sprite url", func(e *CacheEntry) { e.SpriteURL = "" }, false},
		{"written in the future", func(e *CacheEntry) { e.LastUpdated = now.Add(time.Second) }, false},
		{"expiry not after write", func(e *CacheEntry) { e.ExpiresAt = e.LastUpdated }, false},
		{"expiry before write", func(e *CacheEntry) { e.ExpiresAt = e.LastUpdated.Add(-time.Minute) }, false},
		{"already expired", func(e *CacheEntry) {
			e.LastUpdated = now.Add(-20 * time.Minute)
			e.ExpiresAt = now.Add(-5 * time.Minute)
		}, false},
		{"expiring this instant", func(e *CacheEntry) {
			e.LastUpdated = now.Add(-CacheTTL)
			e.ExpiresAt = now
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry(now)
			tt.mutate(&e)
			assert.Equal(t, tt.want, e.ValidAt(now))
		})
	}
}

// Randomized sweep: an entry is valid only when every one of the five
// conditions holds, for arbitrary id/name/url/timestamp combinations.
func TestCacheEntry_ValidAt_Randomized(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	names := []string{"", "bulbasaur"}
	urls := []string{"", "https://example.com/1.png"}

	for i := 0; i < 2000; i++ {
		e := CacheEntry{
			ID:          rand.Intn(5) - 2,
			Name:        names[rand.Intn(len(names))],
			SpriteURL:   urls[rand.Intn(len(urls))],
			LastUpdated: now.Add(time.Duration(rand.Intn(61)-30) * time.Minute),
		}
		e.ExpiresAt = e.LastUpdated.Add(time.Duration(rand.Intn(41)-10) * time.Minute)

		want := e.ID > 0 &&
			e.Name != "" &&
			e.SpriteURL != "" &&
			!e.LastUpdated.After(now) &&
			e.ExpiresAt.After(e.LastUpdated) &&
			now.Before(e.ExpiresAt)

		assert.Equal(t, want, e.ValidAt(now),
			"id=%d name=%q url=%q lastUpdated=%v expiresAt=%v",
			e.ID, e.Name, e.SpriteURL, e.LastUpdated, e.ExpiresAt)
	}
}

func TestNewCacheEntry(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	p := Pokemon{
		ID:        1,
		Name:      "bulbasaur",
		SpriteURL: "https://example.com/1.png",
		Types:     []TypeSlot{{Slot: 1, Name: "grass"}, {Slot: 2, Name: "poison"}},
		Abilities: []Ability{{Name: "overgrow", Slot: 1}, {Name: "chlorophyll", IsHidden: true, Slot: 3}},
		Moves:     []string{"tackle", "growl"},
	}

	e := NewCacheEntry(p, now)

	assert.Equal(t, 1, e.ID)
	assert.Equal(t, "bulbasaur", e.Name)
	assert.Equal(t, []string{"grass", "poison"}, e.Types)
	assert.Equal(t, []string{"overgrow", "chlorophyll"}, e.Abilities)
	assert.Equal(t, []string{"tackle", "growl"}, e.Moves)
	assert.Equal(t, now, e.LastUpdated)
	assert.Equal(t, now.Add(CacheTTL), e.ExpiresAt)
	assert.True(t, e.ValidAt(now))
	assert.False(t, e.ValidAt(now.Add(CacheTTL)))
}

func TestCacheEntry_ToPokemon(t *testing.T) {
	now := time.Now()
	p := Pokemon{
		ID:        4,
		Name:      "charmander",
		SpriteURL: "https://example.com/4.png",
		Types:     []TypeSlot{{Slot: 1, Name: "fire"}},
		Abilities: []Ability{{Name: "blaze", Slot: 1}},
		Moves:     []string{"scratch"},
	}

	got := NewCacheEntry(p, now).ToPokemon()

	require.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.SpriteURL, got.SpriteURL)
	assert.Equal(t, []TypeSlot{{Slot: 1, Name: "fire"}}, got.Types)
	assert.Equal(t, "blaze", got.Abilities[0].Name)
	assert.Equal(t, p.Moves, got.Moves)
}

package entity

import "time"

// CacheTTL is the fixed time-to-live applied to every cache entry.
const CacheTTL = 15 * time.Minute

// CacheEntry is a single persisted cache record for one Pokemon.
type CacheEntry struct {
	ID          int
	Name        string
	SpriteURL   string
	Types       []string
	Abilities   []string
	Moves       []string
	LastUpdated time.Time
	ExpiresAt   time.Time
}

// NewCacheEntry builds a cache entry for a Pokemon written at the given time.
func NewCacheEntry(p Pokemon, writtenAt time.Time) CacheEntry {
	types := make([]string, len(p.Types))
	for i, t := range p.Types {
		types[i] = t.Name
	}
	abilities := make([]string, len(p.Abilities))
	for i, a := range p.Abilities {
		abilities[i] = a.Name
	}
	moves := make([]string, len(p.Moves))
	copy(moves, p.Moves)

	return CacheEntry{
		ID:          p.ID,
		Name:        p.Name,
		SpriteURL:   p.SpriteURL,
		Types:       types,
		Abilities:   abilities,
		Moves:       moves,
		LastUpdated: writtenAt,
		ExpiresAt:   writtenAt.Add(CacheTTL),
	}
}

// ValidAt reports whether the entry may be served at the given instant.
// All conditions must hold at once: positive ID, non-empty name and sprite
// URL, a write time not in the future, an expiry strictly after the write
// time, and an expiry still ahead of now.
func (e CacheEntry) ValidAt(now time.Time) bool {
	if e.ID <= 0 {
		return false
	}
	if e.Name == "" || e.SpriteURL == "" {
		return false
	}
	if e.LastUpdated.After(now) {
		return false
	}
	if !e.ExpiresAt.After(e.LastUpdated) {
		return false
	}
	return now.Before(e.ExpiresAt)
}

// ToPokemon maps the cached record back to a domain Pokemon.
// Slots and stat values are not persisted, only names survive the round trip.
func (e CacheEntry) ToPokemon() Pokemon {
	types := make([]TypeSlot, len(e.Types))
	for i, name := range e.Types {
		types[i] = TypeSlot{Slot: i + 1, Name: name}
	}
	abilities := make([]Ability, len(e.Abilities))
	for i, name := range e.Abilities {
		abilities[i] = Ability{Name: name, Slot: i + 1}
	}
	moves := make([]string, len(e.Moves))
	copy(moves, e.Moves)

	return Pokemon{
		ID:        e.ID,
		Name:      e.Name,
		SpriteURL: e.SpriteURL,
		Types:     types,
		Abilities: abilities,
		Moves:     moves,
	}
}

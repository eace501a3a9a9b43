package pokeapi_dto

// SummaryRaw represents the collection listing as received from the API.
type SummaryRaw struct {
	Count    int               `json:"count"`
	Next     string            `json:"next,omitempty"`
	Previous string            `json:"previous,omitempty"`
	Results  []SummaryEntryRaw `json:"results"`
}

// SummaryEntryRaw is one name+url reference in the collection listing.
type SummaryEntryRaw struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonRaw represents the full detail payload for a single Pokemon.
type PokemonRaw struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Types     []TypeRaw    `json:"types"`
	Sprites   SpritesRaw   `json:"sprites"`
	Abilities []AbilityRaw `json:"abilities"`
	Moves     []MoveRaw    `json:"moves"`
	Stats     []StatRaw    `json:"stats"`
}

// TypeRaw pairs a slot with a named type reference.
type TypeRaw struct {
	Slot int      `json:"slot"`
	Type NamedRaw `json:"type"`
}

// SpritesRaw carries the sprite URLs for a Pokemon.
type SpritesRaw struct {
	FrontDefault string `json:"front_default"`
}

// AbilityRaw describes one ability entry on a Pokemon.
type AbilityRaw struct {
	Ability  NamedRaw `json:"ability"`
	IsHidden bool     `json:"is_hidden"`
	Slot     int      `json:"slot"`
}

// MoveRaw wraps a named move reference.
type MoveRaw struct {
	Move NamedRaw `json:"move"`
}

// StatRaw holds one base stat entry.
type StatRaw struct {
	BaseStat int      `json:"base_stat"`
	Effort   int      `json:"effort"`
	Stat     NamedRaw `json:"stat"`
}

// NamedRaw is the generic name+url reference used throughout the API.
type NamedRaw struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

package entity

import "sort"

// TypeSlot pairs a type name with its slot on the Pokemon.
type TypeSlot struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

// Ability describes a single ability entry on a Pokemon.
type Ability struct {
	Name     string `json:"name"`
	IsHidden bool   `json:"is_hidden"`
	Slot     int    `json:"slot"`
}

// Stat holds one base stat value for a Pokemon.
type Stat struct {
	Name   string `json:"name"`
	Base   int    `json:"base"`
	Effort int    `json:"effort"`
}

// Pokemon is the full domain record for a single Pokemon.
// Values are never mutated after construction, only replaced wholesale.
type Pokemon struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	SpriteURL string     `json:"sprite_url"`
	Types     []TypeSlot `json:"types"`
	Abilities []Ability  `json:"abilities"`
	Moves     []string   `json:"moves"`
	Stats     []Stat     `json:"stats,omitempty"`
}

// Equal reports whether two Pokemon carry the same data.
// All fields participate, stats included.
func (p Pokemon) Equal(other Pokemon) bool {
	if p.ID != other.ID || p.Name != other.Name || p.SpriteURL != other.SpriteURL {
		return false
	}
	if len(p.Types) != len(other.Types) ||
		len(p.Abilities) != len(other.Abilities) ||
		len(p.Moves) != len(other.Moves) ||
		len(p.Stats) != len(other.Stats) {
		return false
	}
	for i := range p.Types {
		if p.Types[i] != other.Types[i] {
			return false
		}
	}
	for i := range p.Abilities {
		if p.Abilities[i] != other.Abilities[i] {
			return false
		}
	}
	for i := range p.Moves {
		if p.Moves[i] != other.Moves[i] {
			return false
		}
	}
	for i := range p.Stats {
		if p.Stats[i] != other.Stats[i] {
			return false
		}
	}
	return true
}

// SortByID orders a slice of Pokemon ascending by ID, in place.
func SortByID(items []Pokemon) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplePokemon() Pokemon {
	return Pokemon{
		ID:        6,
		Name:      "charizard",
		SpriteURL: "https://example.com/6.png",
		Types:     []TypeSlot{{Slot: 1, Name: "fire"}, {Slot: 2, Name: "flying"}},
		Abilities: []Ability{{Name: "blaze", Slot: 1}},
		Moves:     []string{"flamethrower", "fly"},
		Stats:     []Stat{{Name: "hp", Base: 78}, {Name: "speed", Base: 100}},
	}
}

func TestPokemon_Equal(t *testing.T) {
	base := samplePokemon()

	tests := []struct {
		name   string
		mutate func(p *Pokemon)
		want   bool
	}{
		{"identical", func(p *Pokemon) {}, true},
		{"different id", func(p *Pokemon) { p.ID = 7 }, false},
		{"different name", func(p *Pokemon) { p.Name = "blastoise" }, false},
		{"different sprite", func(p *Pokemon) { p.SpriteURL = "other" }, false},
		{"different type order", func(p *Pokemon) {
			p.Types = []TypeSlot{{Slot: 2, Name: "flying"}, {Slot: 1, Name: "fire"}}
		}, false},
		{"extra move", func(p *Pokemon) { p.Moves = append(p.Moves, "slash") }, false},
		{"hidden flag flipped", func(p *Pokemon) { p.Abilities[0].IsHidden = true }, false},
		// Stats participate in equality, unlike the identity fields alone.
		{"different stat value", func(p *Pokemon) { p.Stats[1].Base = 101 }, false},
		{"missing stats", func(p *Pokemon) { p.Stats = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := samplePokemon()
			tt.mutate(&other)
			assert.Equal(t, tt.want, base.Equal(other))
			assert.Equal(t, tt.want, other.Equal(base))
		})
	}
}

func TestSortByID(t *testing.T) {
	items := []Pokemon{{ID: 9}, {ID: 1}, {ID: 150}, {ID: 4}}
	SortByID(items)

	ids := make([]int, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	assert.Equal(t, []int{1, 4, 9, 150}, ids)
}

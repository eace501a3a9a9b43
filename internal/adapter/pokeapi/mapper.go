package pokeapi

import (
	dto "pokedex-service/internal/adapter/pokeapi/dto"
	"pokedex-service/internal/domain/entity"
)

// toDomainSummary converts the raw collection listing to its domain counterpart.
func toDomainSummary(raw dto.SummaryRaw) entity.Summary {
	results := make([]entity.SummaryEntry, 0, len(raw.Results))
	for _, r := range raw.Results {
		results = append(results, entity.SummaryEntry{
			Name: r.Name,
			URL:  r.URL,
		})
	}
	return entity.Summary{
		Count:   raw.Count,
		Results: results,
	}
}

// toDomainPokemon converts a raw detail payload to a domain Pokemon.
func toDomainPokemon(raw dto.PokemonRaw) entity.Pokemon {
	types := make([]entity.TypeSlot, 0, len(raw.Types))
	for _, t := range raw.Types {
		types = append(types, entity.TypeSlot{
			Slot: t.Slot,
			Name: t.Type.Name,
		})
	}

	abilities := make([]entity.Ability, 0, len(raw.Abilities))
	for _, a := range raw.Abilities {
		abilities = append(abilities, entity.Ability{
			Name:     a.Ability.Name,
			IsHidden: a.IsHidden,
			Slot:     a.Slot,
		})
	}

	moves := make([]string, 0, len(raw.Moves))
	for _, m := range raw.Moves {
		moves = append(moves, m.Move.Name)
	}

	stats := make([]entity.Stat, 0, len(raw.Stats))
	for _, s := range raw.Stats {
		stats = append(stats, entity.Stat{
			Name:   s.Stat.Name,
			Base:   s.BaseStat,
			Effort: s.Effort,
		})
	}

	return entity.Pokemon{
		ID:        raw.ID,
		Name:      raw.Name,
		SpriteURL: raw.Sprites.FrontDefault,
		Types:     types,
		Abilities: abilities,
		Moves:     moves,
		Stats:     stats,
	}
}

package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Column names returned by the learnset procedures.
const (
	abilityNameColumn = "Ability Name"
	moveNameColumn    = "Move Name"
)

// LearnsetRepository looks up the abilities and moves a customized pokemon
// may select. The procedures return names only, so ids are resolved by name.
type LearnsetRepository struct {
	*Repository
}

// NewLearnsetRepository creates a new learnset repository
func NewLearnsetRepository(ds *database.DataSource, logger ectologger.Logger) *LearnsetRepository {
	return &LearnsetRepository{
		Repository: NewRepository(ds, logger),
	}
}

// Abilities lists the abilities a customized pokemon's species may have,
// narrowed by filter when it is not empty. Each row carries abilities_id.
func (r *LearnsetRepository) Abilities(ctx context.Context, customizedPokemonID int64, filter string) ([]database.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "LearnsetRepository.Abilities")
	defer span.End()

	rows, err := r.ds.Call(ctx, procAbilitiesByPokemon, customizedPokemonID, filter)
	if err != nil {
		return nil, database.ToHTTPError(err, "Failed to fetch abilities.")
	}

	if err := r.resolveIDs(ctx, rows, abilityNameColumn, "abilities", "abilities_id"); err != nil {
		return nil, database.ToHTTPError(err, "Failed to fetch abilities.")
	}
	return rows, nil
}

// Moves lists the moves a customized pokemon's species can learn, narrowed
// by filter when it is not empty. Each row carries moves_id.
func (r *LearnsetRepository) Moves(ctx context.Context, customizedPokemonID int64, filter string) ([]database.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "LearnsetRepository.Moves")
	defer span.End()

	pokemonID, err := r.speciesOf(ctx, customizedPokemonID)
	if err != nil {
		return nil, err
	}

	rows, err := r.ds.Call(ctx, procMovesByPokemon, pokemonID, filter)
	if err != nil {
		return nil, database.ToHTTPError(err, "Failed to fetch moves.")
	}

	if err := r.resolveIDs(ctx, rows, moveNameColumn, "moves", "moves_id"); err != nil {
		return nil, database.ToHTTPError(err, "Failed to fetch moves.")
	}
	return rows, nil
}

func (r *LearnsetRepository) speciesOf(ctx context.Context, customizedPokemonID int64) (int64, error) {
	sb := database.NewSelectBuilder()
	sb.Select("pokemon_id").
		From("customized_pokemon").
		Where(sb.Equal("customized_pokemon_id", customizedPokemonID))

	query, args := sb.Build()
	rows, err := r.ds.Query(ctx, query, args...)
	if err != nil {
		return 0, database.ToHTTPError(err, "Failed to fetch moves.")
	}
	if len(rows) == 0 || rows[0]["pokemon_id"] == nil {
		return 0, NotFound("Pokemon not found.")
	}

	pokemonID, err := firstID(rows, "pokemon_id")
	if err != nil {
		return 0, database.ToHTTPError(err, "Failed to fetch moves.")
	}
	return pokemonID, nil
}

package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// customizedMovesSpec groups each customized pokemon with the moves it knows.
var customizedMovesSpec = rowgroup.Spec{
	ParentKey:    []string{"customized_pokemon_id"},
	ParentFields: []string{"pokemon_name"},
	ChildKey:     []string{"moves_id"},
	ChildFields:  []string{"move_name"},
	As:           "moves",
}

// CustomizedPokemonRepository handles database operations for customized pokemon
type CustomizedPokemonRepository struct {
	*Repository
}

// NewCustomizedPokemonRepository creates a new customized pokemon repository
func NewCustomizedPokemonRepository(ds *database.DataSource, logger ectologger.Logger) *CustomizedPokemonRepository {
	return &CustomizedPokemonRepository{
		Repository: NewRepository(ds, logger),
	}
}

// List lists every customized pokemon with the names of its selections
func (r *CustomizedPokemonRepository) List(ctx context.Context) ([]models.CustomizedPokemon, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"customized_pokemon.customized_pokemon_id",
		sb.As("pokemon.name", "pokemon_name"),
		sb.As("abilities.name", "ability_name"),
		sb.As("natures.name", "nature_name"),
		sb.As("items.name", "item_name"),
	).From("customized_pokemon")
	sb.LeftJoin("pokemon", "customized_pokemon.pokemon_id = pokemon.pokemon_id")
	sb.LeftJoin("abilities", "customized_pokemon.abilities_id = abilities.abilities_id")
	sb.LeftJoin("natures", "customized_pokemon.natures_id = natures.natures_id")
	sb.LeftJoin("items", "customized_pokemon.items_id = items.items_id")
	sb.OrderBy("customized_pokemon.customized_pokemon_id")

	query, args := sb.Build()
	pokemon := []models.CustomizedPokemon{}
	if err := r.ds.Select(ctx, &pokemon, query, args...); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading customized pokemon.")
	}
	return pokemon, nil
}

// ListSummaries lists every customized pokemon by species name
func (r *CustomizedPokemonRepository) ListSummaries(ctx context.Context) ([]models.CustomizedPokemonSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.ListSummaries")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("customized_pokemon.customized_pokemon_id", sb.As("pokemon.name", "pokemon_name")).
		From("customized_pokemon")
	sb.LeftJoin("pokemon", "customized_pokemon.pokemon_id = pokemon.pokemon_id")
	sb.OrderBy("customized_pokemon.customized_pokemon_id")

	query, args := sb.Build()
	summaries := []models.CustomizedPokemonSummary{}
	if err := r.ds.Select(ctx, &summaries, query, args...); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading customized pokemon.")
	}
	return summaries, nil
}

// ListInParties lists the customized pokemon that belong to a party
func (r *CustomizedPokemonRepository) ListInParties(ctx context.Context) ([]models.CustomizedPokemonSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.ListInParties")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("customized_pokemon.customized_pokemon_id", sb.As("pokemon.name", "pokemon_name")).
		Distinct().
		From("customized_pokemon").
		Join("parties_has_customized_pokemon", "customized_pokemon.customized_pokemon_id = parties_has_customized_pokemon.customized_pokemon_id").
		Join("pokemon", "customized_pokemon.pokemon_id = pokemon.pokemon_id").
		OrderBy("customized_pokemon.customized_pokemon_id")

	query, args := sb.Build()
	summaries := []models.CustomizedPokemonSummary{}
	if err := r.ds.Select(ctx, &summaries, query, args...); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading customized pokemon.")
	}
	return summaries, nil
}

// ListWithMoves lists every customized pokemon with its moves ordered by name
func (r *CustomizedPokemonRepository) ListWithMoves(ctx context.Context) ([]rowgroup.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.ListWithMoves")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"customized_pokemon.customized_pokemon_id",
		sb.As("pokemon.name", "pokemon_name"),
		"moves.moves_id",
		sb.As("moves.name", "move_name"),
	).From("customized_pokemon")
	sb.LeftJoin("pokemon", "customized_pokemon.pokemon_id = pokemon.pokemon_id")
	sb.LeftJoin("customized_pokemon_has_moves", "customized_pokemon.customized_pokemon_id = customized_pokemon_has_moves.customized_pokemon_id")
	sb.LeftJoin("moves", "customized_pokemon_has_moves.moves_id = moves.moves_id")
	sb.OrderBy("customized_pokemon.customized_pokemon_id", "moves.name")

	query, args := sb.Build()
	records, err := r.grouped(ctx, "customized_pokemon_moves", customizedMovesSpec, query, args...)
	if err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading customized pokemon moves.")
	}
	return records, nil
}

// Add creates a customized pokemon of a species inside a party and returns its id
func (r *CustomizedPokemonRepository) Add(ctx context.Context, partyID, pokemonID int64) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.Add")
	defer span.End()

	rows, err := r.ds.Call(ctx, procAddPokemonToParty, partyID, pokemonID)
	if err != nil {
		return 0, database.ToHTTPError(err, "An error occurred while adding the Pokemon to the party.")
	}

	id, err := firstID(rows, "customized_pokemon_id")
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to read created customized pokemon")
		return 0, database.ToHTTPError(err, "An error occurred while adding the Pokemon to the party.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parties_id":            partyID,
		"pokemon_id":            pokemonID,
		"customized_pokemon_id": id,
	}).Debug("Added pokemon to party")
	return id, nil
}

// Update sets the ability, nature and item of a customized pokemon
func (r *CustomizedPokemonRepository) Update(ctx context.Context, partyID int64, update models.UpdatePokemon) error {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.Update")
	defer span.End()

	_, err := r.ds.Call(ctx, procUpdatePokemon, partyID, update.CustomizedPokemonID, update.AbilityID, update.NatureID, update.ItemID)
	if err != nil {
		return database.ToHTTPError(err, "An error occurred while updating the customized pokemon.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parties_id":            partyID,
		"customized_pokemon_id": update.CustomizedPokemonID,
	}).Debug("Updated customized pokemon")
	return nil
}

// Delete removes a customized pokemon from every party and then drops every
// customized pokemon no party holds, in one transaction.
func (r *CustomizedPokemonRepository) Delete(ctx context.Context, customizedPokemonID int64) error {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.Delete")
	defer span.End()

	err := r.ds.InTx(ctx, func(ctx context.Context) error {
		db := database.NewDeleteBuilder()
		db.DeleteFrom("parties_has_customized_pokemon").
			Where(db.Equal("customized_pokemon_id", customizedPokemonID))

		query, args := db.Build()
		if _, err := r.ds.Exec(ctx, query, args...); err != nil {
			return err
		}

		_, err := r.ds.Call(ctx, procCleanUnused)
		return err
	})
	if err != nil {
		return database.ToHTTPError(err, "An error occurred while deleting the customized pokemon.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"customized_pokemon_id": customizedPokemonID,
	}).Debug("Deleted customized pokemon")
	return nil
}

// AddMove teaches a move to a customized pokemon
func (r *CustomizedPokemonRepository) AddMove(ctx context.Context, partyID, customizedPokemonID, moveID int64) error {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.AddMove")
	defer span.End()

	if _, err := r.ds.Call(ctx, procAddMove, partyID, customizedPokemonID, moveID); err != nil {
		return database.ToHTTPError(err, "An error occurred while adding the move.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"customized_pokemon_id": customizedPokemonID,
		"moves_id":              moveID,
	}).Debug("Added move")
	return nil
}

// RemoveMove makes a customized pokemon forget a move
func (r *CustomizedPokemonRepository) RemoveMove(ctx context.Context, partyID, customizedPokemonID, moveID int64) error {
	ctx, span := tracing.StartSpan(ctx, "CustomizedPokemonRepository.RemoveMove")
	defer span.End()

	if _, err := r.ds.Call(ctx, procRemoveMove, partyID, customizedPokemonID, moveID); err != nil {
		return database.ToHTTPError(err, "An error occurred while removing the move.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"customized_pokemon_id": customizedPokemonID,
		"moves_id":              moveID,
	}).Debug("Removed move")
	return nil
}

package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

var partyStruct = database.NewStruct(new(models.Party))

// partyMembersSpec groups membership rows into parties. Parties without
// members keep an empty list.
var partyMembersSpec = rowgroup.Spec{
	ParentKey:   []string{"parties_id"},
	ChildKey:    []string{"customized_pokemon_id"},
	ChildFields: []string{"pokemon_name"},
	As:          "members",
}

// PartyRepository handles database operations for parties
type PartyRepository struct {
	*Repository
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(ds *database.DataSource, logger ectologger.Logger) *PartyRepository {
	return &PartyRepository{
		Repository: NewRepository(ds, logger),
	}
}

// List lists every party ordered by id
func (r *PartyRepository) List(ctx context.Context) ([]models.Party, error) {
	ctx, span := tracing.StartSpan(ctx, "PartyRepository.List")
	defer span.End()

	sb := partyStruct.SelectFrom(models.Party{}.TableName())
	sb.OrderBy("parties_id")

	query, args := sb.Build()
	parties := []models.Party{}
	if err := r.ds.Select(ctx, &parties, query, args...); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading parties.")
	}
	return parties, nil
}

// ListWithMembers lists every party with the customized pokemon it holds
func (r *PartyRepository) ListWithMembers(ctx context.Context) ([]rowgroup.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "PartyRepository.ListWithMembers")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"parties.parties_id",
		"customized_pokemon.customized_pokemon_id",
		sb.As("pokemon.name", "pokemon_name"),
	).From("parties")
	sb.LeftJoin("parties_has_customized_pokemon", "parties.parties_id = parties_has_customized_pokemon.parties_id")
	sb.LeftJoin("customized_pokemon", "parties_has_customized_pokemon.customized_pokemon_id = customized_pokemon.customized_pokemon_id")
	sb.LeftJoin("pokemon", "customized_pokemon.pokemon_id = pokemon.pokemon_id")
	sb.OrderBy("parties.parties_id", "customized_pokemon.customized_pokemon_id")

	query, args := sb.Build()
	records, err := r.grouped(ctx, "party_members", partyMembersSpec, query, args...)
	if err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading party members.")
	}
	return records, nil
}

// Create creates an empty party and returns its id
func (r *PartyRepository) Create(ctx context.Context) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "PartyRepository.Create")
	defer span.End()

	rows, err := r.ds.Call(ctx, procCreateParty)
	if err != nil {
		return 0, database.ToHTTPError(err, "An error occurred while creating the party.")
	}

	partyID, err := firstID(rows, "parties_id")
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to read created party")
		return 0, database.ToHTTPError(err, "An error occurred while creating the party.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parties_id": partyID,
	}).Debug("Created party")
	return partyID, nil
}

// Delete deletes a party. Customized pokemon left without a party are removed.
func (r *PartyRepository) Delete(ctx context.Context, partyID int64) error {
	ctx, span := tracing.StartSpan(ctx, "PartyRepository.Delete")
	defer span.End()

	if _, err := r.ds.Call(ctx, procDeleteParty, partyID); err != nil {
		return database.ToHTTPError(err, "An error occurred while deleting the party.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parties_id": partyID,
	}).Debug("Deleted party")
	return nil
}

// RemoveMember removes a customized pokemon from a party
func (r *PartyRepository) RemoveMember(ctx context.Context, partyID, customizedPokemonID int64) error {
	ctx, span := tracing.StartSpan(ctx, "PartyRepository.RemoveMember")
	defer span.End()

	if _, err := r.ds.Call(ctx, procRemovePokemonFromParty, partyID, customizedPokemonID); err != nil {
		return database.ToHTTPError(err, "An error occurred while removing the customized pokemon from the party.")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parties_id":            partyID,
		"customized_pokemon_id": customizedPokemonID,
	}).Debug("Removed customized pokemon from party")
	return nil
}

// PartyOf returns the party holding a customized pokemon. A customized
// pokemon outside every party is a bad request.
func (r *PartyRepository) PartyOf(ctx context.Context, customizedPokemonID int64) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "PartyRepository.PartyOf")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("parties_id").
		From("parties_has_customized_pokemon").
		Where(sb.Equal("customized_pokemon_id", customizedPokemonID)).
		Limit(1)

	query, args := sb.Build()
	rows, err := r.ds.Query(ctx, query, args...)
	if err != nil {
		return 0, database.ToHTTPError(err, "An error occurred while looking up the party.")
	}

	if len(rows) == 0 || rows[0]["parties_id"] == nil {
		return 0, BadRequest("This custom Pokémon is not assigned to any party.")
	}

	partyID, err := firstID(rows, "parties_id")
	if err != nil {
		return 0, database.ToHTTPError(err, "An error occurred while looking up the party.")
	}
	return partyID, nil
}

package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Species relationship groupings. Each lists a pokemon once with the names
// of its related rows as a plain list.
var (
	pokemonTypesSpec = rowgroup.Spec{
		ParentKey:    []string{"pokemon_id"},
		ParentFields: []string{"name"},
		ChildKey:     []string{"pokemon_type"},
		As:           "types",
		Scalar:       true,
	}
	pokemonAbilitiesSpec = rowgroup.Spec{
		ParentKey:    []string{"pokemon_id"},
		ParentFields: []string{"name"},
		ChildKey:     []string{"pokemon_ability"},
		As:           "abilities",
		Scalar:       true,
	}
	pokemonMovesSpec = rowgroup.Spec{
		ParentKey:    []string{"pokemon_id"},
		ParentFields: []string{"name"},
		ChildKey:     []string{"pokemon_move"},
		As:           "moves",
		Scalar:       true,
	}
)

// RelationshipRepository reads pokemon joined with their types, abilities
// and learnable moves
type RelationshipRepository struct {
	*Repository
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(ds *database.DataSource, logger ectologger.Logger) *RelationshipRepository {
	return &RelationshipRepository{
		Repository: NewRepository(ds, logger),
	}
}

// PokemonTypes lists every pokemon with its types
func (r *RelationshipRepository) PokemonTypes(ctx context.Context) ([]rowgroup.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.PokemonTypes")
	defer span.End()

	query, args := pokemonJoin("pokemon_has_types", "types", "types_id", "pokemon_type").Build()
	records, err := r.grouped(ctx, "pokemon_typing", pokemonTypesSpec, query, args...)
	if err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading pokemon typing.")
	}
	return records, nil
}

// PokemonAbilities lists every pokemon with its possible abilities
func (r *RelationshipRepository) PokemonAbilities(ctx context.Context) ([]rowgroup.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.PokemonAbilities")
	defer span.End()

	query, args := pokemonJoin("pokemon_has_abilities", "abilities", "abilities_id", "pokemon_ability").Build()
	records, err := r.grouped(ctx, "pokemon_abilities", pokemonAbilitiesSpec, query, args...)
	if err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading pokemon abilities.")
	}
	return records, nil
}

// PokemonMoves lists every pokemon with the moves it can learn
func (r *RelationshipRepository) PokemonMoves(ctx context.Context) ([]rowgroup.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "RelationshipRepository.PokemonMoves")
	defer span.End()

	query, args := pokemonJoin("pokemon_has_moves", "moves", "moves_id", "pokemon_move").Build()
	records, err := r.grouped(ctx, "pokemon_moves", pokemonMovesSpec, query, args...)
	if err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading pokemon moves.")
	}
	return records, nil
}

// pokemonJoin selects every pokemon left joined through joinTable to the
// name of each related row, ordered by pokemon then related name.
func pokemonJoin(joinTable, related, relatedID, alias string) *database.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select("pokemon.pokemon_id", "pokemon.name", sb.As(related+".name", alias)).From("pokemon")
	sb.LeftJoin(joinTable, "pokemon.pokemon_id = "+joinTable+".pokemon_id")
	sb.LeftJoin(related, joinTable+"."+relatedID+" = "+related+"."+relatedID)
	sb.OrderBy("pokemon.pokemon_id", related+".name")
	return sb
}

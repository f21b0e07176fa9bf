package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

var (
	pokemonStruct = database.NewStruct(new(models.Pokemon))
	typeStruct    = database.NewStruct(new(models.Type))
	abilityStruct = database.NewStruct(new(models.Ability))
	natureStruct  = database.NewStruct(new(models.Nature))
	itemStruct    = database.NewStruct(new(models.Item))
)

// ReferenceRepository reads the reference tables
type ReferenceRepository struct {
	*Repository
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(ds *database.DataSource, logger ectologger.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		Repository: NewRepository(ds, logger),
	}
}

// ListPokemon lists every species ordered by id
func (r *ReferenceRepository) ListPokemon(ctx context.Context) ([]models.Pokemon, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListPokemon")
	defer span.End()

	pokemon := []models.Pokemon{}
	if err := r.list(ctx, pokemonStruct, models.Pokemon{}.TableName(), "pokemon_id", &pokemon); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading pokemon.")
	}
	return pokemon, nil
}

// ListTypes lists every type ordered by id
func (r *ReferenceRepository) ListTypes(ctx context.Context) ([]models.Type, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListTypes")
	defer span.End()

	types := []models.Type{}
	if err := r.list(ctx, typeStruct, models.Type{}.TableName(), "types_id", &types); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading types.")
	}
	return types, nil
}

// ListAbilities lists every ability ordered by id
func (r *ReferenceRepository) ListAbilities(ctx context.Context) ([]models.Ability, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListAbilities")
	defer span.End()

	abilities := []models.Ability{}
	if err := r.list(ctx, abilityStruct, models.Ability{}.TableName(), "abilities_id", &abilities); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading abilities.")
	}
	return abilities, nil
}

// ListNatures lists every nature ordered by id
func (r *ReferenceRepository) ListNatures(ctx context.Context) ([]models.Nature, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListNatures")
	defer span.End()

	natures := []models.Nature{}
	if err := r.list(ctx, natureStruct, models.Nature{}.TableName(), "natures_id", &natures); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading natures.")
	}
	return natures, nil
}

// ListItems lists every item ordered by id
func (r *ReferenceRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListItems")
	defer span.End()

	items := []models.Item{}
	if err := r.list(ctx, itemStruct, models.Item{}.TableName(), "items_id", &items); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading items.")
	}
	return items, nil
}

// ListMoves lists every move with its type name, ordered by id
func (r *ReferenceRepository) ListMoves(ctx context.Context) ([]models.Move, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListMoves")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"moves.moves_id",
		"moves.name",
		"moves.power",
		"moves.description",
		sb.As("types.name", "type_name"),
	).From("moves")
	sb.LeftJoin("types", "moves.types_id = types.types_id")
	sb.OrderBy("moves.moves_id")

	query, args := sb.Build()
	moves := []models.Move{}
	if err := r.ds.Select(ctx, &moves, query, args...); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading moves.")
	}
	return moves, nil
}

// ListMoveOptions lists every move id and name ordered by name
func (r *ReferenceRepository) ListMoveOptions(ctx context.Context) ([]models.MoveOption, error) {
	ctx, span := tracing.StartSpan(ctx, "ReferenceRepository.ListMoveOptions")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("moves_id", "name").From("moves").OrderBy("name")

	query, args := sb.Build()
	options := []models.MoveOption{}
	if err := r.ds.Select(ctx, &options, query, args...); err != nil {
		return nil, database.ToHTTPError(err, "An error occurred while loading moves.")
	}
	return options, nil
}

func (r *ReferenceRepository) list(ctx context.Context, st *database.Struct, table, orderBy string, dest any) error {
	sb := st.SelectFrom(table)
	sb.OrderBy(orderBy)

	query, args := sb.Build()
	if err := r.ds.Select(ctx, dest, query, args...); err != nil {
		return err
	}

	r.logger.WithContext(ctx).Debugf("Listed %s", table)
	return nil
}

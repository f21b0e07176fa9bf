package repositories

import (
	"context"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
)

// ReferenceRepo defines the read-only reference listings
type ReferenceRepo interface {
	ListPokemon(ctx context.Context) ([]models.Pokemon, error)
	ListTypes(ctx context.Context) ([]models.Type, error)
	ListAbilities(ctx context.Context) ([]models.Ability, error)
	ListNatures(ctx context.Context) ([]models.Nature, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	ListMoves(ctx context.Context) ([]models.Move, error)
	ListMoveOptions(ctx context.Context) ([]models.MoveOption, error)
}

// RelationshipRepo defines the grouped species relationship listings
type RelationshipRepo interface {
	PokemonTypes(ctx context.Context) ([]rowgroup.Record, error)
	PokemonAbilities(ctx context.Context) ([]rowgroup.Record, error)
	PokemonMoves(ctx context.Context) ([]rowgroup.Record, error)
}

// PartyRepo defines the interface for party repository operations
type PartyRepo interface {
	List(ctx context.Context) ([]models.Party, error)
	ListWithMembers(ctx context.Context) ([]rowgroup.Record, error)
	Create(ctx context.Context) (int64, error)
	Delete(ctx context.Context, partyID int64) error
	RemoveMember(ctx context.Context, partyID, customizedPokemonID int64) error
	PartyOf(ctx context.Context, customizedPokemonID int64) (int64, error)
}

// CustomizedPokemonRepo defines the interface for customized pokemon repository operations
type CustomizedPokemonRepo interface {
	List(ctx context.Context) ([]models.CustomizedPokemon, error)
	ListSummaries(ctx context.Context) ([]models.CustomizedPokemonSummary, error)
	ListInParties(ctx context.Context) ([]models.CustomizedPokemonSummary, error)
	ListWithMoves(ctx context.Context) ([]rowgroup.Record, error)
	Add(ctx context.Context, partyID, pokemonID int64) (int64, error)
	Update(ctx context.Context, partyID int64, update models.UpdatePokemon) error
	Delete(ctx context.Context, customizedPokemonID int64) error
	AddMove(ctx context.Context, partyID, customizedPokemonID, moveID int64) error
	RemoveMove(ctx context.Context, partyID, customizedPokemonID, moveID int64) error
}

// LearnsetRepo defines the option lookups for a customized pokemon
type LearnsetRepo interface {
	Abilities(ctx context.Context, customizedPokemonID int64, filter string) ([]database.Row, error)
	Moves(ctx context.Context, customizedPokemonID int64, filter string) ([]database.Row, error)
}

// MaintenanceRepo defines whole database operations
type MaintenanceRepo interface {
	Reset(ctx context.Context) error
}

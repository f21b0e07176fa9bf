package repositories_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/pkg/repositories"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
)

func TestRelationshipRepository_PokemonTypes(t *testing.T) {
	ds, mock := getMockDataSource(t)
	repo := repositories.NewRelationshipRepository(ds, getTestLogger())

	mock.ExpectQuery(`FROM pokemon LEFT JOIN pokemon_has_types .+ LEFT JOIN types .+ ORDER BY pokemon.pokemon_id, types.name`).
		WillReturnRows(sqlmock.NewRows([]string{"pokemon_id", "name", "pokemon_type"}).
			AddRow(1, "Bulbasaur", "Grass").
			AddRow(1, "Bulbasaur", "Poison").
			AddRow(4, "Charmander", "Fire").
			AddRow(133, "Eevee", nil))

	records, err := repo.PokemonTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []rowgroup.Record{
		{"pokemon_id": int64(1), "name": "Bulbasaur", "types": []any{"Grass", "Poison"}},
		{"pokemon_id": int64(4), "name": "Charmander", "types": []any{"Fire"}},
		{"pokemon_id": int64(133), "name": "Eevee", "types": []any{}},
	}, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationshipRepository_PokemonAbilities(t *testing.T) {
	ds, mock := getMockDataSource(t)
	repo := repositories.NewRelationshipRepository(ds, getTestLogger())

	mock.ExpectQuery(`FROM pokemon LEFT JOIN pokemon_has_abilities .+ LEFT JOIN abilities`).
		WillReturnRows(sqlmock.NewRows([]string{"pokemon_id", "name", "pokemon_ability"}).
			AddRow(25, "Pikachu", "Lightning Rod").
			AddRow(25, "Pikachu", "Static"))

	records, err := repo.PokemonAbilities(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []any{"Lightning Rod", "Static"}, records[0]["abilities"])
}

func TestRelationshipRepository_PokemonMoves(t *testing.T) {
	t.Run("should group moves under each pokemon", func(t *testing.T) {
		ds, mock := getMockDataSource(t)
		repo := repositories.NewRelationshipRepository(ds, getTestLogger())

		mock.ExpectQuery(`FROM pokemon LEFT JOIN pokemon_has_moves .+ LEFT JOIN moves`).
			WillReturnRows(sqlmock.NewRows([]string{"pokemon_id", "name", "pokemon_move"}).
				AddRow(6, "Charizard", "Ember").
				AddRow(7, "Squirtle", "Water Gun").
				AddRow(6, "Charizard", "Flamethrower"))

		records, err := repo.PokemonMoves(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, []any{"Ember", "Flamethrower"}, records[0]["moves"])
		assert.Equal(t, []any{"Water Gun"}, records[1]["moves"])
	})

	t.Run("should return an empty listing for no pokemon", func(t *testing.T) {
		ds, mock := getMockDataSource(t)
		repo := repositories.NewRelationshipRepository(ds, getTestLogger())

		mock.ExpectQuery(`FROM pokemon`).
			WillReturnRows(sqlmock.NewRows([]string{"pokemon_id", "name", "pokemon_move"}))

		records, err := repo.PokemonMoves(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})
}

package database_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/poppy/pkg/database"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newMockDataSource(t *testing.T) (*database.DataSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	instance := database.NewDatabaseInstance(sqlx.NewDb(db, "mysql"), getTestLogger())
	return database.NewDataSource(instance, getTestLogger(), time.Second), mock
}

func TestDataSource_Query(t *testing.T) {
	t.Run("should return rows keyed by column with text decoded", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT pokemon_id, name FROM pokemon")).
			WillReturnRows(sqlmock.NewRows([]string{"pokemon_id", "name"}).
				AddRow(int64(1), []byte("Bulbasaur")).
				AddRow(int64(4), []byte("Charmander")))

		rows, err := ds.Query(context.Background(), "SELECT pokemon_id, name FROM pokemon")
		require.NoError(t, err)

		require.Len(t, rows, 2)
		assert.Equal(t, database.Row{"pokemon_id": int64(1), "name": "Bulbasaur"}, rows[0])
		assert.Equal(t, database.Row{"pokemon_id": int64(4), "name": "Charmander"}, rows[1])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should decode integer columns sent as text", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		rows := mock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("moves_id").OfType("INT", int64(0)),
			sqlmock.NewColumn("power").OfType("UNSIGNED INT", int64(0)),
			sqlmock.NewColumn("name").OfType("VARCHAR", ""),
		).AddRow([]byte("33"), []byte("40"), []byte("Tackle"))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT moves_id, power, name FROM moves")).WillReturnRows(rows)

		got, err := ds.Query(context.Background(), "SELECT moves_id, power, name FROM moves")
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.Equal(t, int64(33), got[0]["moves_id"])
		assert.Equal(t, int64(40), got[0]["power"])
		assert.Equal(t, "Tackle", got[0]["name"])
	})

	t.Run("should keep NULL as nil", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT items_id FROM customized_pokemon")).
			WillReturnRows(sqlmock.NewRows([]string{"items_id"}).AddRow(nil))

		rows, err := ds.Query(context.Background(), "SELECT items_id FROM customized_pokemon")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0]["items_id"])
	})

	t.Run("should return an empty slice when nothing matches", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT parties_id FROM parties")).
			WillReturnRows(sqlmock.NewRows([]string{"parties_id"}))

		rows, err := ds.Query(context.Background(), "SELECT parties_id FROM parties")
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("should classify driver failures", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnError(context.DeadlineExceeded)

		_, err := ds.Query(context.Background(), "SELECT 1")
		require.Error(t, err)
		assert.Equal(t, database.KindUnavailable, database.KindOf(err))
	})
}

func TestDataSource_Call(t *testing.T) {
	t.Run("should build a call statement with one placeholder per argument", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("CALL addPokemonToParty(?, ?)")).
			WithArgs(3, 25).
			WillReturnRows(sqlmock.NewRows([]string{}))

		rows, err := ds.Call(context.Background(), "addPokemonToParty", 3, 25)
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should return the procedure result set", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("CALL getAbilitiesByPokemon(?, ?)")).
			WithArgs(7, "").
			WillReturnRows(sqlmock.NewRows([]string{"Ability Name"}).AddRow([]byte("Overgrow")))

		rows, err := ds.Call(context.Background(), "getAbilitiesByPokemon", 7, "")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Overgrow", rows[0]["Ability Name"])
	})

	t.Run("should surface procedure signals as procedure failures", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("CALL addMoveToPokemon(?, ?, ?)")).
			WillReturnError(&mysql.MySQLError{Number: 1644, Message: "A Pokémon may know at most four moves."})

		_, err := ds.Call(context.Background(), "addMoveToPokemon", 1, 2, 3)
		require.Error(t, err)

		var dsErr *database.Error
		require.True(t, errors.As(err, &dsErr))
		assert.Equal(t, database.KindProcedure, dsErr.Kind)
		assert.Equal(t, "A Pokémon may know at most four moves.", dsErr.Message())
	})

	t.Run("should reject procedure names that are not identifiers", func(t *testing.T) {
		ds, _ := newMockDataSource(t)

		_, err := ds.Call(context.Background(), "drop table; --")
		require.Error(t, err)
		assert.Equal(t, database.KindQuery, database.KindOf(err))
	})
}

func TestDataSource_Select(t *testing.T) {
	type party struct {
		ID int64 `db:"parties_id"`
	}

	t.Run("should scan rows into structs", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT parties_id FROM parties")).
			WillReturnRows(sqlmock.NewRows([]string{"parties_id"}).AddRow(int64(1)).AddRow(int64(2)))

		var parties []party
		err := ds.Select(context.Background(), &parties, "SELECT parties_id FROM parties")
		require.NoError(t, err)
		assert.Equal(t, []party{{ID: 1}, {ID: 2}}, parties)
	})

	t.Run("should classify failures", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT parties_id FROM parties")).
			WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'poppy.parties' doesn't exist"})

		var parties []party
		err := ds.Select(context.Background(), &parties, "SELECT parties_id FROM parties")
		require.Error(t, err)
		assert.Equal(t, database.KindQuery, database.KindOf(err))
	})
}

func TestDataSource_Exec(t *testing.T) {
	ds, mock := newMockDataSource(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parties_has_customized_pokemon WHERE customized_pokemon_id = ?")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := ds.Exec(context.Background(), "DELETE FROM parties_has_customized_pokemon WHERE customized_pokemon_id = ?", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestDataSource_InTx(t *testing.T) {
	t.Run("should commit when every statement succeeds", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parties_has_customized_pokemon")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("CALL cleanUnusedCustomizedPokemon()")).WillReturnRows(sqlmock.NewRows([]string{}))
		mock.ExpectCommit()

		err := ds.InTx(context.Background(), func(ctx context.Context) error {
			if _, err := ds.Exec(ctx, "DELETE FROM parties_has_customized_pokemon"); err != nil {
				return err
			}
			_, err := ds.Call(ctx, "cleanUnusedCustomizedPokemon")
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should roll back when a statement fails", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parties_has_customized_pokemon")).WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		err := ds.InTx(context.Background(), func(ctx context.Context) error {
			_, err := ds.Exec(ctx, "DELETE FROM parties_has_customized_pokemon")
			return err
		})

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should roll back before a panic escapes", func(t *testing.T) {
		ds, mock := newMockDataSource(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "boom", func() {
			_ = ds.InTx(context.Background(), func(context.Context) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

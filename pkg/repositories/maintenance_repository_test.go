package repositories_test

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/pkg/repositories"
)

func TestMaintenanceRepository_Reset(t *testing.T) {
	t.Run("should call resetPokemonDB", func(t *testing.T) {
		ds, mock := getMockDataSource(t)
		repo := repositories.NewMaintenanceRepository(ds, getTestLogger())

		mock.ExpectQuery(regexp.QuoteMeta("CALL resetPokemonDB()")).
			WillReturnRows(sqlmock.NewRows([]string{}))

		require.NoError(t, repo.Reset(context.Background()))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report a lost connection as unavailable", func(t *testing.T) {
		ds, mock := getMockDataSource(t)
		repo := repositories.NewMaintenanceRepository(ds, getTestLogger())

		mock.ExpectQuery(regexp.QuoteMeta("CALL resetPokemonDB()")).
			WillReturnError(mysql.ErrInvalidConn)

		assertStatus(t, repo.Reset(context.Background()), http.StatusServiceUnavailable)
	})
}

package repositories

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/rowgroup"
)

// Stored procedures shipped with the schema migrations.
const (
	procCreateParty            = "createParty"
	procDeleteParty            = "deleteParty"
	procAddPokemonToParty      = "addPokemonToParty"
	procRemovePokemonFromParty = "removePokemonFromParty"
	procUpdatePokemon          = "updatePokemon"
	procCleanUnused            = "cleanUnusedCustomizedPokemon"
	procAddMove                = "addMoveToPokemon"
	procRemoveMove             = "removeMoveFromPokemon"
	procAbilitiesByPokemon     = "getAbilitiesByPokemon"
	procMovesByPokemon         = "getMovesByPokemon"
	procReset                  = "resetPokemonDB"
)

// NotFound returns a 404 HTTP error with a descriptive message
func NotFound(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// BadRequest returns a 400 HTTP error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

// Repository provides the data source shared by every repository
type Repository struct {
	ds     *database.DataSource
	logger ectologger.Logger
}

// NewRepository creates a new base repository
func NewRepository(ds *database.DataSource, logger ectologger.Logger) *Repository {
	return &Repository{ds: ds, logger: logger}
}

// DataSource returns the data source
func (r *Repository) DataSource() *database.DataSource {
	return r.ds
}

// grouped runs a listing query and folds it with spec.
func (r *Repository) grouped(ctx context.Context, listing string, spec rowgroup.Spec, query string, args ...any) ([]rowgroup.Record, error) {
	rows, err := r.ds.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	records := rowgroup.Group(rows, spec)
	metrics.RecordGrouping(listing, len(records))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"listing": listing,
		"rows":    len(rows),
		"parents": len(records),
	}).Debugf("Grouped %s", listing)
	return records, nil
}

// resolveIDs adds idColumn to each row by looking up the row's nameColumn
// in table. Names are not unique keys, so when several rows share a name the
// last one returned wins. Names with no match resolve to nil.
func (r *Repository) resolveIDs(ctx context.Context, rows []database.Row, nameColumn, table, idColumn string) error {
	if len(rows) == 0 {
		return nil
	}

	names := ectolinq.Map(rows, func(row database.Row) any {
		return row[nameColumn]
	})

	sb := database.NewSelectBuilder()
	sb.Select(idColumn, "name").From(table).Where(sb.In("name", names...))
	query, args := sb.Build()

	matches, err := r.ds.Query(ctx, query, args...)
	if err != nil {
		return err
	}

	byName := make(map[string]any, len(matches))
	for _, match := range matches {
		byName[fmt.Sprint(match["name"])] = match[idColumn]
	}

	for _, row := range rows {
		row[idColumn] = byName[fmt.Sprint(row[nameColumn])]
	}
	return nil
}

// firstID reads an integer id column from the first row.
func firstID(rows []database.Row, column string) (int64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("no rows returned, expected %s", column)
	}

	switch id := rows[0][column].(type) {
	case int64:
		return id, nil
	case uint64:
		return int64(id), nil
	case string:
		return strconv.ParseInt(id, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %s value of type %T", column, id)
	}
}

package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// Row is one result row keyed by column name. Text columns arrive as string
// and integer columns as int64; NULL is nil.
type Row = map[string]any

// DataSource runs statements and stored procedures against the pool. When the
// context carries a transaction from GetTx the statement runs inside it.
type DataSource struct {
	db      DB
	logger  ectologger.Logger
	timeout time.Duration
}

func NewDataSource(db DB, logger ectologger.Logger, timeout time.Duration) *DataSource {
	return &DataSource{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

// DB returns the pool the data source runs against.
func (d *DataSource) DB() DB {
	return d.db
}

// Query runs statement with positional args and returns every row.
func (d *DataSource) Query(ctx context.Context, statement string, args ...any) ([]Row, error) {
	ctx, span := tracing.StartSpan(ctx, "DataSource.Query")
	defer span.End()

	return d.query(ctx, "query", statement, args)
}

// Call invokes a stored procedure with positional args and returns the rows
// of its first result set. Procedures that select nothing return no rows.
func (d *DataSource) Call(ctx context.Context, procedure string, args ...any) ([]Row, error) {
	ctx, span := tracing.StartSpan(ctx, "DataSource.Call", attribute.String("db.procedure", procedure))
	defer span.End()

	statement, err := CallStatement(procedure, len(args))
	if err != nil {
		return nil, &Error{Kind: KindQuery, Statement: procedure, Err: err}
	}

	return d.query(ctx, procedure, statement, args)
}

// Select runs statement and scans every row into dest, a pointer to a slice
// of structs with db tags.
func (d *DataSource) Select(ctx context.Context, dest any, statement string, args ...any) error {
	ctx, span := tracing.StartSpan(ctx, "DataSource.Select")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	if err := sqlx.SelectContext(ctx, d.conn(ctx), dest, statement, args...); err != nil {
		return d.fail(ctx, "select", statement, start, err)
	}
	metrics.RecordQuery("select", "", time.Since(start).Seconds())
	return nil
}

// Exec runs a statement that returns no rows and reports the affected row count.
func (d *DataSource) Exec(ctx context.Context, statement string, args ...any) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "DataSource.Exec")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	result, err := d.conn(ctx).ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, d.fail(ctx, "exec", statement, start, err)
	}
	metrics.RecordQuery("exec", "", time.Since(start).Seconds())

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, d.fail(ctx, "exec", statement, start, err)
	}
	return affected, nil
}

// InTx runs fn inside a transaction, committing when fn succeeds. A
// transaction already carried by ctx is reused and left for its owner to close.
func (d *DataSource) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	ctx, tx, err := d.db.GetTx(ctx, nil)
	if err != nil {
		return &Error{Kind: Classify(err), Statement: "BEGIN", Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &Error{Kind: Classify(err), Statement: "COMMIT", Err: err}
	}
	return nil
}

func (d *DataSource) query(ctx context.Context, operation, statement string, args []any) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	rows, err := d.conn(ctx).QueryxContext(ctx, statement, args...)
	if err != nil {
		return nil, d.fail(ctx, operation, statement, start, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, d.fail(ctx, operation, statement, start, err)
	}

	metrics.RecordQuery(operation, "", time.Since(start).Seconds())
	d.logger.WithContext(ctx).WithFields(map[string]any{
		"operation": operation,
		"rows":      len(out),
		"duration":  time.Since(start),
	}).Debug("Query completed")

	return out, nil
}

func (d *DataSource) conn(ctx context.Context) sqlx.ExtContext {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.db
}

func (d *DataSource) fail(ctx context.Context, operation, statement string, start time.Time, err error) error {
	kind := Classify(err)
	metrics.RecordQuery(operation, string(kind), time.Since(start).Seconds())

	span := tracing.GetActiveSpan(ctx)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
	}

	d.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
		"operation": operation,
		"kind":      kind,
	}).Warnf("Data source %s failed", operation)

	return &Error{Kind: kind, Statement: statement, Err: err}
}

func scanRows(rows *sqlx.Rows) ([]Row, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		row := make(Row, len(columnTypes))
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for _, column := range columnTypes {
			row[column.Name()] = normalize(row[column.Name()], column)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

var integerTypes = map[string]bool{
	"TINYINT":   true,
	"SMALLINT":  true,
	"MEDIUMINT": true,
	"INT":       true,
	"BIGINT":    true,
	"YEAR":      true,
}

// normalize converts the raw bytes of the text protocol into Go values.
func normalize(value any, column *sql.ColumnType) any {
	raw, ok := value.([]byte)
	if !ok {
		return value
	}

	typeName := strings.TrimPrefix(column.DatabaseTypeName(), "UNSIGNED ")
	if integerTypes[typeName] {
		if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return n
		}
	}
	return string(raw)
}

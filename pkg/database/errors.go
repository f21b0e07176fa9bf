package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-sql-driver/mysql"
)

// Kind classifies a data source failure.
type Kind string

const (
	// KindQuery is any failure not covered by a more specific kind.
	KindQuery Kind = "query"
	// KindProcedure is a rule violation raised by a stored procedure with SIGNAL.
	KindProcedure Kind = "procedure"
	// KindConstraint is a unique or foreign key violation.
	KindConstraint Kind = "constraint"
	// KindUnavailable covers timeouts, including waiting for a pooled connection, and broken connections.
	KindUnavailable Kind = "unavailable"
)

// MySQL server error numbers.
const (
	erSignalException  = 1644
	erDupEntry         = 1062
	erRowIsReferenced  = 1451
	erNoReferencedRow  = 1452
	erRowIsReferenced2 = 1217
	erNoReferencedRow2 = 1216
)

// Error is a classified data source failure.
type Error struct {
	Kind      Kind
	Statement string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failure running %q: %v", e.Kind, e.Statement, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text safe to show a user. Only procedure failures carry the
// server message since those are written for people.
func (e *Error) Message() string {
	var myErr *mysql.MySQLError
	if e.Kind == KindProcedure && errors.As(e.Err, &myErr) {
		return myErr.Message
	}
	return ""
}

// Classify determines the failure kind of a driver error.
func Classify(err error) Kind {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erSignalException:
			return KindProcedure
		case erDupEntry, erRowIsReferenced, erNoReferencedRow, erRowIsReferenced2, erNoReferencedRow2:
			return KindConstraint
		}
		return KindQuery
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return KindUnavailable
	}

	return KindQuery
}

// KindOf returns the kind of a data source error, or KindQuery for anything else.
func KindOf(err error) Kind {
	var dsErr *Error
	if errors.As(err, &dsErr) {
		return dsErr.Kind
	}
	return KindQuery
}

// ToHTTPError maps a data source failure to the status and message returned
// to the caller. message is used for failures with nothing safe to show.
func ToHTTPError(err error, message string) error {
	var dsErr *Error
	if !errors.As(err, &dsErr) {
		return httperror.NewHTTPError(http.StatusInternalServerError, message)
	}

	switch dsErr.Kind {
	case KindProcedure:
		if msg := dsErr.Message(); msg != "" {
			return httperror.NewHTTPError(http.StatusBadRequest, msg)
		}
		return httperror.NewHTTPError(http.StatusBadRequest, message)
	case KindConstraint:
		return httperror.NewHTTPError(http.StatusConflict, strings.TrimSuffix(message, ".")+": conflicts with existing data.")
	case KindUnavailable:
		return httperror.NewHTTPError(http.StatusServiceUnavailable, strings.TrimSuffix(message, ".")+": database is unavailable.")
	default:
		return httperror.NewHTTPError(http.StatusInternalServerError, message)
	}
}

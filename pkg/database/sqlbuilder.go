package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Flavor is the SQL dialect every builder in this package emits.
var Flavor = sqlbuilder.MySQL

type SelectBuilder struct {
	*sqlbuilder.SelectBuilder
}

func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{Flavor.NewSelectBuilder()}
}

// LeftJoin adds a LEFT JOIN clause.
func (b *SelectBuilder) LeftJoin(table string, onExpr ...string) *SelectBuilder {
	b.JoinWithOption(sqlbuilder.LeftJoin, table, onExpr...)
	return b
}

type DeleteBuilder struct {
	*sqlbuilder.DeleteBuilder
}

func NewDeleteBuilder() *DeleteBuilder {
	return &DeleteBuilder{Flavor.NewDeleteBuilder()}
}

type Struct struct {
	*sqlbuilder.Struct
}

func (s *Struct) SelectFrom(table string) *SelectBuilder {
	return &SelectBuilder{s.Struct.SelectFrom(table)}
}

func NewStruct(v any) *Struct {
	return &Struct{sqlbuilder.NewStruct(v).For(Flavor)}
}

var procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CallStatement builds "CALL name(?, ...)" with one placeholder per argument.
func CallStatement(procedure string, argCount int) (string, error) {
	if !procedureName.MatchString(procedure) {
		return "", fmt.Errorf("invalid procedure name %q", procedure)
	}

	placeholders := make([]string, argCount)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("CALL %s(%s)", procedure, strings.Join(placeholders, ", ")), nil
}

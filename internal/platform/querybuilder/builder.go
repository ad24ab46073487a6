// Package querybuilder renders the small set of PostgreSQL statements the
// catalog tables need: keyed selects, multi-row inserts with upserts, keyed
// updates and filtered deletes. Values always travel as $n arguments.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// stmt accumulates SQL text and its positional arguments.
type stmt struct {
	sql  strings.Builder
	args []any
}

func (s *stmt) write(parts ...string) {
	for _, p := range parts {
		s.sql.WriteString(p)
	}
}

func (s *stmt) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

func (s *stmt) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c(s)
	}
}

func (s *stmt) result() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition is one AND-ed predicate of a WHERE clause.
type Condition func(*stmt)

func Eq(column string, value any) Condition {
	return func(s *stmt) {
		s.write(column, " = ")
		s.bind(value)
	}
}

// Between matches from <= column <= to.
func Between(column string, from, to any) Condition {
	return func(s *stmt) {
		s.write(column, " BETWEEN ")
		s.bind(from)
		s.write(" AND ")
		s.bind(to)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, columns...)
	return b
}

// Limit caps the row count; zero or negative means unlimited.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var s stmt
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.where)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.result()
}

type InsertBuilder struct {
	table    string
	columns  []string
	rows     [][]any
	conflict []string
	excluded []string
	touch    []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflict turns the insert into an upsert keyed on the given unique
// columns. Every other inserted column is overwritten from EXCLUDED.
func (b *InsertBuilder) OnConflict(columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), columns...)
	return b
}

// Touch sets the columns to NOW() when an upsert updates an existing row.
func (b *InsertBuilder) Touch(columns ...string) *InsertBuilder {
	b.touch = append(b.touch, columns...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var s stmt
	s.args = make([]any, 0, len(b.rows)*len(b.columns))
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			s.write(", ")
		}
		s.write("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				s.write(", ")
			}
			s.bind(value)
		}
		s.write(")")
	}

	if len(b.conflict) == 0 {
		return s.result()
	}

	key := make(map[string]bool, len(b.conflict))
	for _, c := range b.conflict {
		key[c] = true
	}
	sets := make([]string, 0, len(b.columns)+len(b.touch))
	for _, c := range b.columns {
		if !key[c] {
			sets = append(sets, c+" = EXCLUDED."+c)
		}
	}
	for _, c := range b.touch {
		sets = append(sets, c+" = NOW()")
	}
	s.write(" ON CONFLICT (", strings.Join(b.conflict, ", "), ")")
	if len(sets) == 0 {
		s.write(" DO NOTHING")
		return s.result()
	}
	s.write(" DO UPDATE SET ", strings.Join(sets, ", "))
	return s.result()
}

type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	touch   []string
	where   []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

// Touch sets the columns to NOW().
func (b *UpdateBuilder) Touch(columns ...string) *UpdateBuilder {
	b.touch = append(b.touch, columns...)
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an update without a WHERE clause.
func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.columns)+len(b.touch) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update conditions are required")
	}

	var s stmt
	s.write("UPDATE ", b.table, " SET ")
	for i, column := range b.columns {
		if i > 0 {
			s.write(", ")
		}
		s.write(column, " = ")
		s.bind(b.values[i])
	}
	for i, column := range b.touch {
		if i > 0 || len(b.columns) > 0 {
			s.write(", ")
		}
		s.write(column, " = NOW()")
	}
	s.where(b.where)
	return s.result()
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

// ToSQL refuses to build an unfiltered delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete conditions are required")
	}

	var s stmt
	s.write("DELETE FROM ", b.table)
	s.where(b.where)
	return s.result()
}

// Package query builds the parameterized history SQL shared by the SQLite and
// PostgreSQL repositories.
package query

import (
	"fmt"
	"strings"

	"github.com/jonny/pdm-service/internal/domain/model"
)

// Dialect selects placeholder syntax and the case-insensitive LIKE operator.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Columns lists the predictions columns in scan order.
const Columns = `id, machine_id, air_temp, process_temp, rpm, torque,
	failure_probability, health_score, risk_level, monthly_savings, timestamp`

// Builder accumulates WHERE clauses and their bound arguments.
type Builder struct {
	dialect Dialect
	clauses []string
	args    []any
}

// NewBuilder returns an empty Builder for dialect.
func NewBuilder(dialect Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// Arg binds v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Postgres {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return "?"
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any { return b.args }

// Where returns " WHERE ..." or "" when no filter applies.
func (b *Builder) Where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

func (b *Builder) like() string {
	if b.dialect == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}

// Filter adds the history filter. Machine and Date are substring matches;
// Risk is exact. User input only ever reaches the query as a bound argument.
func (b *Builder) Filter(f model.HistoryFilter) *Builder {
	if f.Machine != "" {
		b.clauses = append(b.clauses,
			fmt.Sprintf(`machine_id %s %s ESCAPE '\'`, b.like(), b.Arg(Contains(f.Machine))))
	}
	if f.Risk != "" {
		b.clauses = append(b.clauses, "risk_level = "+b.Arg(strings.ToUpper(strings.TrimSpace(f.Risk))))
	}
	if f.Date != "" {
		b.clauses = append(b.clauses,
			fmt.Sprintf(`timestamp LIKE %s ESCAPE '\'`, b.Arg(Contains(f.Date))))
	}
	return b
}

// OrderBy returns the ORDER BY clause for order. Only the two fixed
// directions can be produced.
func OrderBy(order model.SortOrder) string {
	if order == model.OrderAsc {
		return " ORDER BY id ASC"
	}
	return " ORDER BY id DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains wraps s as a LIKE substring pattern with wildcards escaped.
func Contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

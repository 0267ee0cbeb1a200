// Package sqldb holds what the SQL backends share: per-dialect identifier
// quoting, placeholders and column types, the flights table DDL, and a
// database/sql repository that saves and loads a flight database.
package sqldb

import (
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	Name string
	// Quote quotes a single identifier segment.
	Quote func(id string) string
	// Bind returns the placeholder for the n-th (1-based) argument.
	Bind func(n int) string

	IntType    string
	StringType string
	FloatType  string

	// ExistsSQL counts tables matching its single argument. When
	// ExistsByFQN is set the argument is the full table name, otherwise
	// only its last segment.
	ExistsSQL   string
	ExistsByFQN bool
}

func doubleQuote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func question(int) string { return "?" }

// SQLite uses "ident" and ? placeholders.
var SQLite = Dialect{
	Name:       "sqlite",
	Quote:      doubleQuote,
	Bind:       question,
	IntType:    "INTEGER",
	StringType: "TEXT",
	FloatType:  "REAL",
	ExistsSQL:  "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
}

// Postgres uses "ident" and $n placeholders.
var Postgres = Dialect{
	Name:        "postgres",
	Quote:       doubleQuote,
	Bind:        func(n int) string { return "$" + strconv.Itoa(n) },
	IntType:     "BIGINT",
	StringType:  "TEXT",
	FloatType:   "DOUBLE PRECISION",
	ExistsSQL:   "SELECT CASE WHEN to_regclass($1) IS NULL THEN 0 ELSE 1 END",
	ExistsByFQN: true,
}

// MySQL uses `ident` and ? placeholders.
var MySQL = Dialect{
	Name:       "mysql",
	Quote:      func(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" },
	Bind:       question,
	IntType:    "BIGINT",
	StringType: "VARCHAR(64)",
	FloatType:  "DOUBLE",
	ExistsSQL:  "SELECT count(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
}

// MSSQL uses [ident] and @pN placeholders.
var MSSQL = Dialect{
	Name:        "mssql",
	Quote:       func(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` },
	Bind:        func(n int) string { return "@p" + strconv.Itoa(n) },
	IntType:     "BIGINT",
	StringType:  "NVARCHAR(64)",
	FloatType:   "FLOAT(53)",
	ExistsSQL:   "SELECT CASE WHEN OBJECT_ID(@p1, 'U') IS NULL THEN 0 ELSE 1 END",
	ExistsByFQN: true,
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.Quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteList quotes each column name.
func (d Dialect) QuoteList(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.Quote(c)
	}
	return out
}

func (d Dialect) existsArg(table string) string {
	if d.ExistsByFQN {
		return table
	}
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[i+1:]
	}
	return table
}

package sqldb

import (
	"fmt"
	"strings"

	"flightdb/internal/flight"
	"flightdb/internal/storage"
)

// ColumnDef describes one column of a table.
type ColumnDef struct {
	Name       string
	SQLType    string
	PrimaryKey bool
}

// TableDef describes a table to create.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// FlightTable returns the table layout for a flight database in dialect d:
// the seq ordinal as primary key followed by the record columns.
func FlightTable(d Dialect, fqn string) TableDef {
	cols := []ColumnDef{{Name: storage.SeqColumn, SQLType: d.IntType, PrimaryKey: true}}
	for _, c := range flight.Columns {
		typ := d.StringType
		if c == flight.ColPrice {
			typ = d.FloatType
		}
		cols = append(cols, ColumnDef{Name: c, SQLType: typ})
	}
	return TableDef{FQN: fqn, Columns: cols}
}

// BuildCreateTableSQL renders a CREATE TABLE statement. Every column is NOT
// NULL and primary key columns are rendered as a table constraint.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table name must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return "", fmt.Errorf("%s ddl: column %s missing SQLType", d.Name, name)
		}
		cols = append(cols, d.Quote(name)+" "+c.SQLType+" NOT NULL")
		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL renders DROP TABLE IF EXISTS for fqn.
func DropTableSQL(d Dialect, fqn string) string {
	return "DROP TABLE IF EXISTS " + d.QuoteFQN(fqn)
}

// SelectSQL renders the ordered read of a flight table.
func SelectSQL(d Dialect, fqn string) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(d.QuoteList(storage.Columns()), ", "),
		d.QuoteFQN(fqn),
		d.Quote(storage.SeqColumn),
	)
}

// InsertSQL renders a multi-row INSERT for nrows rows of columns.
func InsertSQL(d Dialect, fqn string, columns []string, nrows int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", d.QuoteFQN(fqn), strings.Join(d.QuoteList(columns), ", "))
	n := 1
	for r := 0; r < nrows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Bind(n))
			n++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ColumnDef is one column of a table definition.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef describes a destination table. FQN may be schema-qualified.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TextTable defines a table whose columns all have sqlType and accept NULL.
func TextTable(fqn string, columns []string, sqlType string) TableDef {
	td := TableDef{FQN: fqn, Columns: make([]ColumnDef, len(columns))}
	for i, c := range columns {
		td.Columns[i] = ColumnDef{Name: c, SQLType: sqlType, Nullable: true}
	}
	return td
}

// DDLBootstrapper creates td through repo when it does not exist yet.
type DDLBootstrapper func(ctx context.Context, repo Repository, td TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, td TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper registered for kind %q", kind)
	}
	return fn(ctx, repo, td)
}

// Dialect is what differs between the CREATE TABLE statements of backends.
type Dialect struct {
	// Quote quotes one identifier segment.
	Quote func(string) string
	// Wrap turns the bare CREATE TABLE statement into an idempotent one.
	// quotedFQN and fqn are passed for guards that test for the table.
	Wrap func(create, quotedFQN, fqn string) string
}

// BuildCreateTableSQL renders CREATE TABLE for td in dialect d:
//
//	CREATE TABLE <fqn> (
//	  <col> <type> [NOT NULL],
//	  ...
//	)
func BuildCreateTableSQL(d Dialect, td TableDef) (string, error) {
	fqn := strings.TrimSpace(td.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(td.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(td.Columns))
	for _, c := range td.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}
		def := d.Quote(name) + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}

	quoted := QuoteFQN(d.Quote, fqn)
	create := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", quoted, strings.Join(cols, ",\n  "))
	if d.Wrap != nil {
		create = d.Wrap(create, quoted, fqn)
	}
	return create, nil
}

// QuoteFQN quotes each dot-separated segment of fqn; empty segments are
// dropped.
func QuoteFQN(quote func(string) string, fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, quote(p))
		}
	}
	return strings.Join(out, ".")
}

// IfNotExists is the Wrap used by dialects with CREATE TABLE IF NOT EXISTS.
func IfNotExists(create, _, _ string) string {
	return strings.Replace(create, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
}

// DialectDDL returns a bootstrapper that renders td in d and runs it.
func DialectDDL(d Dialect) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, td TableDef) error {
		stmt, err := BuildCreateTableSQL(d, td)
		if err != nil {
			return err
		}
		return repo.Exec(ctx, stmt)
	}
}

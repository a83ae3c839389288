// Package storage holds the backend-agnostic warehouse contracts: the
// Repository interface, a factory keyed by storage kind, table DDL
// bootstrapping and a batched loader.
//
// Backends register themselves from init; import tripetl/internal/storage/all
// to enable every built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is a write handle on one destination table.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to columns and returns the number of
	// rows the backend reports as written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind    string   // "sqlite", "postgres", "mssql", "mysql"
	DSN     string   // driver connection string
	Table   string   // destination table, optionally schema-qualified
	Columns []string // ordered destination columns
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind, replacing any earlier
// registration.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository with the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	return repo, nil
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Writer is a Repository without Close, as returned by backend constructors
// that hand back a separate cleanup function.
type Writer interface {
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Exec(ctx context.Context, sql string) error
}

// WithClose joins w and its cleanup function into a Repository. closeFn may
// be nil.
func WithClose(w Writer, closeFn func()) Repository {
	return &closingRepo{Writer: w, closeFn: closeFn}
}

type closingRepo struct {
	Writer
	closeFn func()
}

func (c *closingRepo) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

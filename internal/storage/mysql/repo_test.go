package mysql

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tripetl/internal/storage"
)

func TestMyIdent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"trips", "`trips`"},
		{"we`ird", "`we``ird`"},
	}
	for _, tc := range tests {
		if got := myIdent(tc.in); got != tc.want {
			t.Errorf("myIdent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInsertStatement(t *testing.T) {
	stmt, args, err := insertStatement("db.trips", []string{"a", "b"}, [][]any{{"1", nil}, {"2", "x"}})
	if err != nil {
		t.Fatalf("insertStatement: %v", err)
	}
	if want := "INSERT INTO `db`.`trips` (`a`,`b`) VALUES (?,?),(?,?)"; stmt != want {
		t.Fatalf("stmt = %q\nwant %q", stmt, want)
	}
	if diff := cmp.Diff([]any{"1", nil, "2", "x"}, args); diff != "" {
		t.Fatalf("args (-want +got):\n%s", diff)
	}

	if _, _, err := insertStatement("t", []string{"a", "b"}, [][]any{{"1"}}); err == nil {
		t.Fatalf("expected width error")
	}
}

func TestCreateTableSQL(t *testing.T) {
	got, err := storage.BuildCreateTableSQL(dialect, storage.TextTable("trips", []string{"zone"}, "TEXT"))
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if want := "CREATE TABLE IF NOT EXISTS `trips` (\n  `zone` TEXT\n)"; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), Config{DSN: "no-at-sign-or-slash"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRegistrationUsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var got Config
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{}, func() {}, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u@/db", Table: "trips"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()
	if got.DSN != "u@/db" {
		t.Fatalf("hook cfg = %+v", got)
	}
}

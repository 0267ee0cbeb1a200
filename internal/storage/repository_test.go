package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"flightdb/internal/flight"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	db     flight.Database
	closed bool
}

func (f *fakeRepo) Save(_ context.Context, db flight.Database) error { f.db = db; return nil }
func (f *fakeRepo) Load(context.Context) (flight.Database, error) {
	if f.db == nil {
		return nil, ErrNotFound
	}
	return f.db, nil
}
func (f *fakeRepo) Close() { f.closed = true }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}

	found := false
	for _, k := range ListKinds() {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, ListKinds())
	}
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

// TestRegister_Override verifies that re-registering a kind overrides the
// previous factory.
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	})

	if _, err := New(context.Background(), Config{Kind: kind}); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 {
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

// TestListKinds_Snapshot checks that ListKinds returns a copy.
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil })

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	a[0] = "mutated"

	if b := ListKinds(); reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

// TestRegister_AllowsErrors shows factory errors bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	Register("errkind", func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: "errkind"})
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var c Config
	if c.TableName() != DefaultTable {
		t.Fatalf("TableName = %q", c.TableName())
	}
	if c.Log() == nil {
		t.Fatalf("Log returned nil")
	}
	c.Table = "main.flights"
	if c.TableName() != "main.flights" {
		t.Fatalf("TableName = %q", c.TableName())
	}
}

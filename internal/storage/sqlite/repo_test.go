package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"flightdb/internal/flight"
	"flightdb/internal/storage"
)

func sampleDB() flight.Database {
	return flight.Database{
		{FlightID: "AB12", Origin: "JFK", Destination: "LAX", Departure: "2024-05-01 10:00", Arrival: "2024-05-01 14:00", Price: 199.99},
		{FlightID: "CD34", Origin: "LAX", Destination: "SFO", Departure: "2024-05-02 08:30", Arrival: "2024-05-02 09:45", Price: 89.5},
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

// TestFileRoundTrip saves through one connection and loads through a fresh
// one, the way separate build and query runs share a file.
func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "flights.db")
	want := sampleDB()

	w, closeW, err := NewRepository(ctx, Config{DSN: dsn, Table: "main.flights"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	if err := w.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	closeW()

	r, closeR, err := NewRepository(ctx, Config{DSN: dsn, Table: "main.flights"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeR()
	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %#v, want %#v", got, want)
	}
}

func TestLoadMissingTableNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, closeFn, err := NewRepository(ctx, Config{DSN: ":memory:", Table: storage.DefaultTable})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()
	if _, err := r.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want storage.ErrNotFound", err)
	}
}

package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"flightdb/internal/flight"
	"flightdb/internal/storage"
)

func openMemory(t *testing.T, cfg storage.Config) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	r := New(db, SQLite, cfg)
	t.Cleanup(r.Close)
	return r
}

func sampleDB() flight.Database {
	return flight.Database{
		{FlightID: "AB12", Origin: "JFK", Destination: "LAX", Departure: "2024-05-01 10:00", Arrival: "2024-05-01 14:00", Price: 199.99},
		{FlightID: "ZZ9", Origin: "LAX", Destination: "SFO", Departure: "2024-05-02 08:30", Arrival: "2024-05-02 09:45", Price: 0.1 + 0.2},
		{FlightID: "AB12", Origin: "JFK", Destination: "ORD", Departure: "2024-05-03 06:00", Arrival: "2024-05-03 09:00", Price: 1e-7},
	}
}

func TestRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openMemory(t, storage.Config{BatchSize: 2})
	want := sampleDB()

	if err := r.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, want)
	}
	if got.Fingerprint() != want.Fingerprint() {
		t.Fatalf("fingerprint changed")
	}
}

func TestRepository_SaveReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openMemory(t, storage.Config{})
	if err := r.Save(ctx, sampleDB()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := r.Save(ctx, sampleDB()[:1]); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Load after rebuild = %d records, want 1", len(got))
	}
}

func TestRepository_EmptyDatabase(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openMemory(t, storage.Config{})
	if err := r.Save(ctx, flight.Database{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Load = %#v, want empty non-nil", got)
	}
}

func TestRepository_LoadMissingTable(t *testing.T) {
	t.Parallel()

	_, err := openMemory(t, storage.Config{Table: "nothing_here"}).Load(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want storage.ErrNotFound", err)
	}
}

func TestRepository_LoadCorrupt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openMemory(t, storage.Config{})
	if err := r.Save(ctx, sampleDB()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := r.DB.ExecContext(ctx, `UPDATE "flights" SET "arrival_datetime" = 'soon' WHERE "seq" = 2`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := r.Load(ctx); err == nil {
		t.Fatalf("expected error for corrupt record")
	}
}

func TestRepository_CustomBulk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openMemory(t, storage.Config{})
	calls := 0
	r.Bulk = func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
		calls++
		return r.insert(ctx, tx, table, columns, rows)
	}
	if err := r.Save(ctx, sampleDB()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if calls != 1 {
		t.Fatalf("bulk calls = %d, want 1", calls)
	}
}

func TestRepository_ShortBulkRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openMemory(t, storage.Config{})
	if err := r.Save(ctx, sampleDB()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r.Bulk = func(context.Context, *sql.Tx, string, []string, [][]any) (int64, error) { return 0, nil }
	if err := r.Save(ctx, sampleDB()); err == nil {
		t.Fatalf("expected error when rows go missing")
	}
	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(sampleDB()) {
		t.Fatalf("previous database not kept: %d records", len(got))
	}
}

package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"flightdb/internal/flight"
)

// TestLoadBatches_Basic verifies rows are grouped into batches and the total
// equals the sum of all copyFn returns.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 7)
	for i := range rows {
		rows[i] = []any{i, "x"}
	}

	var sizes []int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), nil, []string{"c1", "c2"}, rows, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if want := []int{3, 3, 1}; !reflect.DeepEqual(sizes, want) {
		t.Fatalf("batch sizes %v, want %v", sizes, want)
	}
}

func TestLoadBatches_Empty(t *testing.T) {
	t.Parallel()

	called := false
	total, err := LoadBatches(context.Background(), nil, []string{"c"}, nil, 3,
		func(context.Context, []string, [][]any) (int64, error) { called = true; return 0, nil })
	if err != nil || total != 0 || called {
		t.Fatalf("total=%d err=%v called=%v", total, err, called)
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error stops the
// loop.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 5)
	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), nil, []string{"c"}, rows, 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if total != 2 || batches != 2 {
		t.Fatalf("total=%d batches=%d, want 2 and 2", total, batches)
	}
}

func TestLoadBatches_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadBatches(ctx, nil, []string{"c"}, make([][]any, 1), 1,
		func(context.Context, []string, [][]any) (int64, error) { return 1, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoadBatches_BadArgs(t *testing.T) {
	t.Parallel()

	if _, err := LoadBatches(context.Background(), nil, nil, nil, 0, nil); err == nil {
		t.Fatalf("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), nil, nil, nil, 1, nil); err == nil {
		t.Fatalf("expected error for nil copyFn")
	}
}

func TestRowsAlignWithColumns(t *testing.T) {
	t.Parallel()

	db := flight.Database{
		{FlightID: "AB12", Origin: "JFK", Destination: "LAX", Departure: "2024-05-01 10:00", Arrival: "2024-05-01 14:00", Price: 199.99},
		{FlightID: "CD34", Origin: "LAX", Destination: "SFO", Departure: "2024-05-02 08:30", Arrival: "2024-05-02 09:45", Price: 89.5},
	}
	cols := Columns()
	rows := Rows(db)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("row %d has %d values for %d columns", i, len(row), len(cols))
		}
		if row[0] != int64(i+1) {
			t.Fatalf("row %d seq = %v", i, row[0])
		}
	}
	if cols[0] != SeqColumn || rows[1][1] != "CD34" || rows[0][6] != 199.99 {
		t.Fatalf("unexpected layout: %v %v", cols, rows)
	}
}

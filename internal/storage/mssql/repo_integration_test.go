//go:build integration

package mssql

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"flightdb/internal/flight"
)

// getTestDSN reads MSSQL_TEST_DSN and skips the test when it is empty.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

func TestRoundTripIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, Table: "dbo.flightdb_integration"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	want := flight.Database{
		{FlightID: "AB12", Origin: "JFK", Destination: "LAX", Departure: "2024-05-01 10:00", Arrival: "2024-05-01 14:00", Price: 199.99},
		{FlightID: "AB12", Origin: "JFK", Destination: "ORD", Departure: "2024-05-03 06:00", Arrival: "2024-05-03 09:00", Price: 0.1 + 0.2},
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %#v, want %#v", got, want)
	}
}

package all

import (
	"reflect"
	"testing"

	"flightdb/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	want := []string{"json", "mssql", "mysql", "postgres", "sqlite"}
	if got := storage.ListKinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListKinds = %v, want %v", got, want)
	}
}

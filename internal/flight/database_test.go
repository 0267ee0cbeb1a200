package flight

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func sampleDB() Database {
	return Database{
		{FlightID: "AB12", Origin: "JFK", Destination: "LAX", Departure: "2024-05-01 10:00", Arrival: "2024-05-01 14:00", Price: 199.99},
		{FlightID: "AB12", Origin: "JFK", Destination: "SFO", Departure: "2024-05-02 08:30", Arrival: "2024-05-02 11:45", Price: 0.1 + 0.2},
		{FlightID: "ZZ9", Origin: "CDG", Destination: "FRA", Departure: "2024-06-01 23:59", Arrival: "2024-06-02 01:10", Price: 1e-7},
	}
}

// TestJSONRoundTrip checks that writing and reading a database keeps every
// field, including exact float64 prices.
func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	db := sampleDB()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, db); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !reflect.DeepEqual(got, db) {
		t.Fatalf("round trip mismatch:\n got=%#v\nwant=%#v", got, db)
	}
	if got.Fingerprint() != db.Fingerprint() {
		t.Fatalf("fingerprint changed across round trip")
	}
}

func TestWriteJSONUsesPersistedKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleDB()[:1]); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	for _, k := range Columns {
		if !strings.Contains(out, `"`+k+`"`) {
			t.Fatalf("output missing key %q:\n%s", k, out)
		}
	}
	if !strings.Contains(out, "199.99") {
		t.Fatalf("price not written as a number:\n%s", out)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("empty database = %q, want []", buf.String())
	}
}

func TestReadJSONRejectsCorruptInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"not_json", "{{"},
		{"object_not_array", `{"flight_id":"AB12"}`},
		{"unknown_field", `[{"flight_id":"AB12","gate":"B4"}]`},
		{"bad_timestamp", `[{"flight_id":"AB12","origin":"JFK","destination":"LAX","departure_datetime":"yesterday","arrival_datetime":"2024-05-01 14:00","price":1}]`},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadJSON(strings.NewReader(c.in)); err == nil {
				t.Fatalf("ReadJSON(%q) = nil error, want failure", c.in)
			}
		})
	}
}

func TestFingerprintIsOrderSensitive(t *testing.T) {
	t.Parallel()

	db := sampleDB()
	rev := Database{db[2], db[1], db[0]}
	if db.Fingerprint() == rev.Fingerprint() {
		t.Fatalf("fingerprint ignores record order")
	}
	if db.Fingerprint() != sampleDB().Fingerprint() {
		t.Fatalf("fingerprint not deterministic")
	}
}

func TestRecordValuesAlignWithColumns(t *testing.T) {
	t.Parallel()

	v := sampleDB()[0].Values()
	if len(v) != len(Columns) {
		t.Fatalf("len(Values) = %d, want %d", len(v), len(Columns))
	}
	if v[0] != "AB12" || v[5] != 199.99 {
		t.Fatalf("Values() = %#v", v)
	}
}

// Package flight defines the persisted flight-schedule record and the ordered
// database of records built by a validation pass or loaded from storage.
package flight

import (
	"fmt"
	"time"
)

// TimeLayout is the canonical minute-precision timestamp layout used both for
// stored records and for query comparison values.
const TimeLayout = "2006-01-02 15:04"

// Column names of the persisted representation, in storage order.
const (
	ColFlightID    = "flight_id"
	ColOrigin      = "origin"
	ColDestination = "destination"
	ColDeparture   = "departure_datetime"
	ColArrival     = "arrival_datetime"
	ColPrice       = "price"
)

// Columns lists the persisted columns in storage order.
var Columns = []string{ColFlightID, ColOrigin, ColDestination, ColDeparture, ColArrival, ColPrice}

// Record is one accepted flight. Timestamps keep their original canonical
// string form; Price holds the parsed value.
type Record struct {
	FlightID    string  `json:"flight_id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Departure   string  `json:"departure_datetime"`
	Arrival     string  `json:"arrival_datetime"`
	Price       float64 `json:"price"`
}

// ParseTime parses s using TimeLayout.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// DepartureTime returns the parsed departure timestamp.
func (r Record) DepartureTime() (time.Time, error) { return ParseTime(r.Departure) }

// ArrivalTime returns the parsed arrival timestamp.
func (r Record) ArrivalTime() (time.Time, error) { return ParseTime(r.Arrival) }

// Values returns the record aligned with Columns, ready for a bulk insert.
func (r Record) Values() []any {
	return []any{r.FlightID, r.Origin, r.Destination, r.Departure, r.Arrival, r.Price}
}

// Check verifies that a record read back from storage still carries
// parseable timestamps. It does not re-run the full validation rules.
func (r Record) Check() error {
	if _, err := r.DepartureTime(); err != nil {
		return fmt.Errorf("flight %q: departure_datetime %q: %w", r.FlightID, r.Departure, err)
	}
	if _, err := r.ArrivalTime(); err != nil {
		return fmt.Errorf("flight %q: arrival_datetime %q: %w", r.FlightID, r.Arrival, err)
	}
	return nil
}

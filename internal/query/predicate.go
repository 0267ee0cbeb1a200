// Package query filters a flight database with predicate sets: a mapping
// from field name to a bound or an exact value, ANDed together.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"flightdb/internal/flight"
)

// ErrBadValue is wrapped by Compile when a predicate value has the wrong
// type or does not parse.
var ErrBadValue = errors.New("bad predicate value")

// Spec is one predicate set as supplied by the caller.
type Spec map[string]any

// Kind selects how a predicate compares against a record.
type Kind int

const (
	// Ignore is produced for unrecognized keys and matches every record.
	Ignore Kind = iota
	// Equals compares a string field for exact equality.
	Equals
	// MaxPrice matches records whose price is <= the bound.
	MaxPrice
	// MinDeparture matches records departing at or after the bound.
	MinDeparture
	// MaxArrival matches records arriving at or before the bound.
	MaxArrival
)

func (k Kind) String() string {
	switch k {
	case Ignore:
		return "ignore"
	case Equals:
		return "equals"
	case MaxPrice:
		return "max_price"
	case MinDeparture:
		return "min_departure"
	case MaxArrival:
		return "max_arrival"
	default:
		return "unknown"
	}
}

// Predicate is one compiled key of a Spec.
type Predicate struct {
	Kind  Kind
	Key   string
	Field string
	Text  string
	Price float64
	Time  time.Time
}

// Accepted alias keys for the timestamp bounds.
const (
	keyDepartureAlias = "departure_time"
	keyArrivalAlias   = "arrival_time"
)

// Compile turns spec into predicates, one per key, in sorted key order. Any
// malformed value fails the whole spec.
func Compile(spec Spec) ([]Predicate, error) {
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preds := make([]Predicate, 0, len(keys))
	for _, k := range keys {
		p, err := compileKey(k, spec[k])
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func compileKey(key string, v any) (Predicate, error) {
	p := Predicate{Key: key}
	switch key {
	case flight.ColFlightID, flight.ColOrigin, flight.ColDestination:
		s, ok := v.(string)
		if !ok {
			return p, fmt.Errorf("%w: %s: want string, got %s", ErrBadValue, key, typeName(v))
		}
		p.Kind, p.Field, p.Text = Equals, key, s
	case flight.ColPrice:
		f, err := toFloat(v)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
		}
		p.Kind, p.Price = MaxPrice, f
	case flight.ColDeparture, keyDepartureAlias:
		t, err := toTime(v)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
		}
		p.Kind, p.Time = MinDeparture, t
	case flight.ColArrival, keyArrivalAlias:
		t, err := toTime(v)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", ErrBadValue, key, err)
		}
		p.Kind, p.Time = MaxArrival, t
	default:
		p.Kind = Ignore
	}
	return p, nil
}

// Match reports whether r satisfies p. Records are assumed to carry valid
// timestamps (flight.Database.Check); an unparsable one never matches a
// timestamp bound.
func (p Predicate) Match(r flight.Record) bool {
	switch p.Kind {
	case Equals:
		return fieldValue(r, p.Field) == p.Text
	case MaxPrice:
		return r.Price <= p.Price
	case MinDeparture:
		t, err := r.DepartureTime()
		return err == nil && !t.Before(p.Time)
	case MaxArrival:
		t, err := r.ArrivalTime()
		return err == nil && !t.After(p.Time)
	default:
		return true
	}
}

func fieldValue(r flight.Record, field string) string {
	switch field {
	case flight.ColFlightID:
		return r.FlightID
	case flight.ColOrigin:
		return r.Origin
	case flight.ColDestination:
		return r.Destination
	}
	return ""
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		x, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, err
		}
		f = x
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, fmt.Errorf("want number, got %s", typeName(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite bound %v", f)
	}
	return f, nil
}

func toTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("want %q timestamp string, got %s", flight.TimeLayout, typeName(v))
	}
	t, err := flight.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: want layout %q", s, flight.TimeLayout)
	}
	return t, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

package validator

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"flightdb/internal/flight"
)

// Rejection reasons, as written to the rejection log.
const (
	ReasonComment          = "comment line, ignored for data parsing"
	ReasonMissingFields    = "missing required fields"
	ReasonFlightID         = "invalid flight_id"
	ReasonOrigin           = "invalid origin code"
	ReasonDestination      = "invalid destination code"
	ReasonDeparture        = "invalid departure datetime"
	ReasonArrival          = "invalid arrival datetime"
	ReasonArrivalOrder     = "arrival before departure"
	ReasonPrice            = "invalid price"
	ReasonNonPositivePrice = "negative price value"
)

// invalidAirport is a placeholder code that is never a real airport.
const invalidAirport = "XXX"

// checkFields runs every field and cross-field rule on the six positional
// fields and collects all failures in rule order.
func checkFields(parts []string) (flight.Record, []string) {
	id, origin, dest, dep, arr, priceStr := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	var reasons []string
	if !validFlightID(id) {
		reasons = append(reasons, ReasonFlightID)
	}
	if !validAirport(origin) {
		reasons = append(reasons, ReasonOrigin)
	}
	if !validAirport(dest) {
		reasons = append(reasons, ReasonDestination)
	}

	depT, depErr := flight.ParseTime(dep)
	if depErr != nil {
		reasons = append(reasons, ReasonDeparture)
	}
	arrT, arrErr := flight.ParseTime(arr)
	if arrErr != nil {
		reasons = append(reasons, ReasonArrival)
	}
	if depErr == nil && arrErr == nil && !arrT.After(depT) {
		reasons = append(reasons, ReasonArrivalOrder)
	}

	price, reason := checkPrice(priceStr)
	if reason != "" {
		reasons = append(reasons, reason)
	}

	return flight.Record{
		FlightID:    id,
		Origin:      origin,
		Destination: dest,
		Departure:   dep,
		Arrival:     arr,
		Price:       price,
	}, reasons
}

// validFlightID reports whether s has 2..8 runes, all letters or digits.
// Runes are counted in NFC form; the stored id is left as given.
func validFlightID(s string) bool {
	s = norm.NFC.String(s)
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 8 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// validAirport reports whether s is exactly three uppercase letters and not
// the XXX placeholder. The check runs on the NFC form.
func validAirport(s string) bool {
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) != 3 || s == invalidAirport {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// checkPrice parses s as a decimal real number. Surrounding whitespace is
// ignored and underscores between digits are allowed; hex notation is not.
// An unparsable or non-finite value yields ReasonPrice; a parsed value <= 0
// yields ReasonNonPositivePrice.
func checkPrice(s string) (float64, string) {
	s = strings.TrimSpace(s)
	if isHexFloat(s) {
		return 0, ReasonPrice
	}
	s, ok := stripDigitSeparators(s)
	if !ok {
		return 0, ReasonPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ReasonPrice
	}
	if v <= 0 {
		return v, ReasonNonPositivePrice
	}
	return v, ""
}

func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// stripDigitSeparators removes underscores that sit between two ASCII
// digits. Any other underscore makes the value invalid.
func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

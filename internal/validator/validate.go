// Package validator classifies one line of a flight-schedule source as an
// accepted record, a rejection with reasons, or a non-data line.
//
// Every malformed input is a classified outcome; nothing in this package
// returns an error or panics on bad data.
package validator

import (
	"strings"

	"flightdb/internal/flight"
)

// HeaderToken marks a column header line. Any line starting with it is
// skipped, however often it appears.
const HeaderToken = "flight_id"

// fieldCount is the number of comma-separated fields in a data line.
const fieldCount = 6

// Kind is the classification of a single line.
type Kind int

const (
	// Skipped lines are blank or headers; they produce no log entry.
	Skipped Kind = iota
	// Comment lines start with '#'. They are skipped for data purposes but
	// leave an informational notice in the rejection log.
	Comment
	// Accepted lines passed every rule and carry a Record.
	Accepted
	// Rejected lines failed at least one rule and carry a Rejection.
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Skipped:
		return "skipped"
	case Comment:
		return "comment"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the result of validating one line. Exactly one of Record or
// Rejection is meaningful, selected by Kind: Record for Accepted, Rejection
// for Rejected and Comment (the notice), neither for Skipped.
type Outcome struct {
	Kind      Kind
	Record    flight.Record
	Rejection Rejection
}

// Rejection describes a line that failed one or more checks. Reasons are in
// check order.
type Rejection struct {
	Source  string
	Line    int
	Text    string
	Reasons []string
}

// Reason joins the reasons for display.
func (r Rejection) Reason() string { return strings.Join(r.Reasons, ", ") }

// Validate classifies text, the raw content of input line number line.
func Validate(text string, line int) Outcome {
	s := strings.TrimSpace(text)

	switch {
	case s == "":
		return Outcome{Kind: Skipped}
	case strings.HasPrefix(s, "#"):
		return Outcome{Kind: Comment, Rejection: Rejection{
			Line:    line,
			Text:    s,
			Reasons: []string{ReasonComment},
		}}
	case strings.HasPrefix(s, HeaderToken):
		return Outcome{Kind: Skipped}
	}

	parts := strings.Split(s, ",")
	if len(parts) != fieldCount {
		return reject(s, line, []string{ReasonMissingFields})
	}

	rec, reasons := checkFields(parts)
	if len(reasons) > 0 {
		return reject(s, line, reasons)
	}
	return Outcome{Kind: Accepted, Record: rec}
}

// ValidateOversized classifies a line that was too long to read in full.
// prefix is the part that was kept. The line is rejected without checking
// its fields.
func ValidateOversized(prefix string, line int) Outcome {
	return reject(strings.TrimSpace(prefix), line, []string{ReasonMissingFields})
}

func reject(text string, line int, reasons []string) Outcome {
	return Outcome{Kind: Rejected, Rejection: Rejection{
		Line:    line,
		Text:    text,
		Reasons: reasons,
	}}
}

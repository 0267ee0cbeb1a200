package query

import "flightdb/internal/flight"

// Result pairs a predicate set with its matches. Error is set, and Matches
// is empty, when the set could not be compiled.
type Result struct {
	Query   Spec            `json:"query"`
	Matches flight.Database `json:"matches"`
	Error   string          `json:"error,omitempty"`
}

// Run returns the records of db matching every predicate, in db order. An
// empty predicate list matches everything.
func Run(db flight.Database, preds []Predicate) flight.Database {
	out := flight.Database{}
	for _, r := range db {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r flight.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

// RunBatch evaluates each spec against db and returns one Result per spec in
// input order. A spec with a malformed value is reported in its Result and
// does not affect the others.
func RunBatch(db flight.Database, specs []Spec) []Result {
	out := make([]Result, 0, len(specs))
	for _, s := range specs {
		if s == nil {
			s = Spec{}
		}
		preds, err := Compile(s)
		if err != nil {
			out = append(out, Result{Query: s, Matches: flight.Database{}, Error: err.Error()})
			continue
		}
		out = append(out, Result{Query: s, Matches: Run(db, preds)})
	}
	return out
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}

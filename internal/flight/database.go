package flight

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Database is an ordered sequence of records. flight_id is not unique.
// A Database is never mutated after it has been built or loaded.
type Database []Record

// Len returns the number of records.
func (db Database) Len() int { return len(db) }

// Fingerprint returns an xxh3 hash over the ordered records. Two databases
// with equal fingerprints hold the same records in the same order, with
// prices compared bit-for-bit.
func (db Database) Fingerprint() uint64 {
	h := xxh3.New()
	buf := make([]byte, 0, 128)
	for _, r := range db {
		buf = buf[:0]
		buf = append(buf, r.FlightID...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Origin...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Destination...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Departure...)
		buf = append(buf, 0x1f)
		buf = append(buf, r.Arrival...)
		buf = append(buf, 0x1f)
		buf = strconv.AppendFloat(buf, r.Price, 'g', -1, 64)
		buf = append(buf, 0x1e)
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// Check runs Record.Check over every record and reports the first failure
// with its position.
func (db Database) Check() error {
	for i, r := range db {
		if err := r.Check(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// WriteJSON encodes db as an indented JSON array. A nil database is written
// as an empty array.
func WriteJSON(w io.Writer, db Database) error {
	if db == nil {
		db = Database{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(db); err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON array of records. Unknown fields are rejected and
// stored timestamps must parse; either failure means the database is corrupt.
func ReadJSON(r io.Reader) (Database, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var db Database
	if err := dec.Decode(&db); err != nil {
		return nil, fmt.Errorf("decode database: %w", err)
	}
	if err := db.Check(); err != nil {
		return nil, fmt.Errorf("corrupt database: %w", err)
	}
	if db == nil {
		db = Database{}
	}
	return db, nil
}

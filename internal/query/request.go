package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeRequest reads a query request: either a single JSON object or an
// array of objects. Numbers are kept as json.Number so price bounds are not
// rounded twice.
func DecodeRequest(r io.Reader) ([]Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read query request: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode query request: empty input")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var specs []Spec
	switch trimmed[0] {
	case '{':
		var s Spec
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode query request: %w", err)
		}
		specs = []Spec{s}
	case '[':
		if err := dec.Decode(&specs); err != nil {
			return nil, fmt.Errorf("decode query request: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode query request: want object or array, got %q", trimmed[0])
	}
	if dec.More() {
		return nil, fmt.Errorf("decode query request: trailing data")
	}
	return specs, nil
}

// EncodeResponse writes results as an indented JSON array.
func EncodeResponse(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode query response: %w", err)
	}
	return nil
}

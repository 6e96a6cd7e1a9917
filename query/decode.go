package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Skryldev/jobly/apperr"
)

// DecodeChanges reads a JSON object into Changes, keeping the key order of
// the document. Numbers without a fractional part become int64, others
// float64; strings, booleans and null are kept as they are. Nested values
// and repeated keys are rejected.
func DecodeChanges(data []byte) (Changes, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, apperr.InvalidInput("Malformed JSON body")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, apperr.InvalidInput("Body must be a JSON object")
	}

	var changes Changes
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, apperr.InvalidInput("Malformed JSON body")
		}
		field := tok.(string) // object keys are always strings
		if seen[field] {
			return nil, apperr.InvalidInput(fmt.Sprintf("Field %q given twice", field))
		}
		seen[field] = true

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, apperr.InvalidInput("Malformed JSON body")
		}
		value, err := scalar(field, raw)
		if err != nil {
			return nil, err
		}
		changes = append(changes, Change{Field: field, Value: value})
	}

	// closing brace, then nothing else
	if _, err := dec.Token(); err != nil {
		return nil, apperr.InvalidInput("Malformed JSON body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.InvalidInput("Unexpected data after JSON object")
	}
	return changes, nil
}

func scalar(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, apperr.InvalidInput(fmt.Sprintf("Field %q is not a valid number", field))
		}
		return f, nil
	default:
		return nil, apperr.InvalidInput(fmt.Sprintf("Field %q must be a string, number, boolean or null", field))
	}
}

package ballot

import (
	"bytes"
	"encoding/json"
	"errors"
)

// DecodeJSON parses a JSON election document, rejecting unknown fields.
func DecodeJSON(data []byte, file string) (Document, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return Document{}, invalidf("%v (offset %d)", err, syn.Offset).at(file, 0, 0)
		}
		return Document{}, invalidf("%v", err).at(file, 0, 0)
	}
	return doc, nil
}

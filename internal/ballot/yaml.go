package ballot

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a YAML election document. Unknown fields are rejected
// so that typos such as "ballot:" fail loudly.
func DecodeYAML(data []byte, file string) (Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, invalidf("empty election document").at(file, 0, 0)
		}
		return Document{}, invalidf("%v", err).at(file, 0, 0)
	}
	return doc, nil
}

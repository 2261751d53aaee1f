// Package codec reads and writes the XML property-list grammar of library files.
package codec

import (
	"fmt"

	"howett.net/plist"
)

// Parse decodes a property list into generic values: map[string]any for
// dictionaries, []any for arrays, string, bool, uint64/int64/float64 for
// numbers, time.Time for dates and []byte for data.
func Parse(text string) (any, error) {
	var value any
	if _, err := plist.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("codec: unmarshal: %w", err)
	}
	return value, nil
}

// Build encodes value as an indented XML property list.
func Build(value any) (string, error) {
	data, err := plist.MarshalIndent(value, plist.XMLFormat, "\t")
	if err != nil {
		return "", fmt.Errorf("codec: marshal: %w", err)
	}
	return string(data), nil
}

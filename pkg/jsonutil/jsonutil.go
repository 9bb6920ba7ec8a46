// Package jsonutil wraps github.com/go-json-experiment/json for the few
// places dirhunter emits or reads JSON.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// LineEncoder writes one compact JSON document per line (JSON Lines).
type LineEncoder struct {
	w io.Writer
}

// NewLineEncoder creates an encoder that writes to w.
func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

// Encode writes v followed by a newline. Nothing is written if v cannot
// be marshaled.
func (e *LineEncoder) Encode(v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = e.w.Write(data)
	return err
}

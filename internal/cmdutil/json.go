package cmdutil

import (
	"encoding/json"
	"io"
)

// WriteJSON encodes data as indented JSON. Used by commands that take --json.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

package output

import (
	"encoding/json"
	"io"
)

// PrintJSONL writes each record on its own line (JSON Lines). Fetched
// history records are written this way so they can be piped to other tools
// without buffering the whole array.
func PrintJSONL[T any](w io.Writer, records []T) error {
	jw := NewJSONLWriter(w)
	for _, r := range records {
		if err := jw.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// JSONLWriter encodes one value per line and counts what it wrote.
type JSONLWriter struct {
	enc *json.Encoder
	n   int
}

// NewJSONLWriter creates a JSONLWriter that writes to w. HTML characters
// are not escaped.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc}
}

// Write encodes v as one line.
func (jw *JSONLWriter) Write(v any) error {
	if err := jw.enc.Encode(v); err != nil {
		return err
	}
	jw.n++
	return nil
}

// Count returns the number of lines written.
func (jw *JSONLWriter) Count() int {
	return jw.n
}

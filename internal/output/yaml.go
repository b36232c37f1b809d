package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// PrintYAML writes v as a YAML document to w. Values go through Normalize
// first so JSON field names and integer timestamps are preserved.
func PrintYAML(w io.Writer, v any) error {
	input, err := Normalize(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNumbers(input)); err != nil {
		return err
	}
	return enc.Close()
}

// yamlNumbers replaces json.Number, a string type yaml.v3 would quote, with
// int64 or float64.
func yamlNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, item := range t {
			t[k] = yamlNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = yamlNumbers(item)
		}
		return t
	default:
		return v
	}
}

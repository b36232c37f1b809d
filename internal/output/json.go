// Package output provides formatters for CLI output: JSON, YAML, table, CSV,
// and JSONL.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/itchyny/gojq"
)

// PrintJSON pretty-prints v as indented JSON to w.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// FilterFields keeps only fields in every object of a normalized value.
// Arrays are filtered element by element; scalars pass through.
func FilterFields(data any, fields []string) any {
	switch t := data.(type) {
	case map[string]any:
		return FilterFieldsSingle(t, fields)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FilterFields(item, fields)
		}
		return out
	default:
		return data
	}
}

// FilterFieldsSingle filters a single map to only the specified fields.
func FilterFieldsSingle(data map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return data
	}
	filtered := make(map[string]any, len(fields))
	for _, f := range fields {
		if val, ok := data[f]; ok {
			filtered[f] = val
		}
	}
	return filtered
}

// Normalize round-trips v through JSON so that typed values (structs, typed
// slices, custom marshalers) become plain maps, slices and json.Number.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	return out, nil
}

// ApplyJQ runs a jq expression against the input data and writes results to w.
func ApplyJQ(w io.Writer, data any, expr string) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("parsing jq expression: %w", err)
	}

	input, err := Normalize(data)
	if err != nil {
		return err
	}

	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq evaluation: %w", err)
		}
		if err := PrintJSON(w, v); err != nil {
			return fmt.Errorf("writing jq result: %w", err)
		}
	}
	return nil
}

// ApplyTemplate renders data through a Go text/template and writes to w.
func ApplyTemplate(w io.Writer, data any, tmpl string) error {
	t, err := template.New("").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	input, err := Normalize(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, input); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	_, err = buf.WriteTo(w)
	return err
}

// Package mapper reshapes nested conversation history records into flat,
// typed rows grouped by kind, ready for tabular output.
package mapper

import (
	"encoding/json"
	"fmt"
)

// Row is one flattened record. Fields holds every column of the kind's
// schema; missing source values are nil.
type Row struct {
	Kind   Kind
	Fields map[string]any
}

// MarshalJSON encodes the row as its column map.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// Values returns the row's values in columns order.
func (r Row) Values(columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = r.Fields[c]
	}
	return out
}

// Map flattens the payload of one record event. Unknown events yield nil.
// It never fails on missing or mistyped optional fields.
func Map(eventName string, payload any, parentID string) []Row {
	switch eventName {
	case "sdes":
		return mapSDES(payload, parentID)
	case "coBrowseSessions":
		if wrapped, ok := payload.(map[string]any); ok {
			payload = wrapped["coBrowseSessionsList"]
		}
	}

	ev, ok := events[eventName]
	if !ok {
		return nil
	}
	if ev.single {
		item, ok := payload.(map[string]any)
		if !ok {
			return nil
		}
		return ev.schema.rows(item, parentID)
	}

	items, _ := payload.([]any)
	var rows []Row
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, ev.schema.rows(item, parentID)...)
	}
	return rows
}

// mapSDES splits structured data events into customer and personal info.
// An event carrying both goes to customer info only.
func mapSDES(payload any, parentID string) []Row {
	wrapper, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	list, _ := wrapper["events"].([]any)

	var rows []Row
	for _, it := range list {
		ev, ok := it.(map[string]any)
		if !ok {
			continue
		}
		switch {
		case present(ev["customerInfo"]):
			rows = append(rows, customerInfoSchema.rows(ev, parentID)...)
		case present(ev["personalInfo"]):
			rows = append(rows, personalInfoSchema.rows(ev, parentID)...)
		}
	}
	return rows
}

func (s *Schema) rows(item map[string]any, parentID string) []Row {
	base := make(map[string]any, len(s.Fields)+1)
	base[ParentColumn] = parentID
	for _, f := range s.Fields {
		if f.Element {
			base[f.Column] = nil
			continue
		}
		base[f.Column] = f.value(item)
	}
	if s.Explode == nil {
		return []Row{{Kind: s.Kind, Fields: base}}
	}

	list, _ := lookup(item, s.Explode).([]any)
	if len(list) == 0 {
		return []Row{{Kind: s.Kind, Fields: base}}
	}

	rows := make([]Row, 0, len(list))
	for _, el := range list {
		fields := make(map[string]any, len(base))
		for k, v := range base {
			fields[k] = v
		}
		if element, ok := el.(map[string]any); ok {
			for _, f := range s.Fields {
				if f.Element {
					fields[f.Column] = f.value(element)
				}
			}
		}
		rows = append(rows, Row{Kind: s.Kind, Fields: fields})
	}
	return rows
}

func (f Field) value(item map[string]any) any {
	for _, p := range f.Paths {
		if v := lookup(item, p); v != nil {
			return v
		}
	}
	return nil
}

func lookup(item map[string]any, path []string) any {
	var cur any = item
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Table is the rows of one kind.
type Table struct {
	Kind    Kind
	Columns []string
	Rows    []Row
}

// Tables groups flattened rows by kind.
type Tables struct {
	tables map[Kind]*Table
}

// Flatten maps every event of every record. Each record must carry
// info.conversationId, which becomes the parent id of its rows.
func Flatten(records ...map[string]any) (*Tables, error) {
	t := &Tables{tables: map[Kind]*Table{}}
	for i, rec := range records {
		id, _ := lookup(rec, []string{"info", "conversationId"}).(string)
		if id == "" {
			return nil, fmt.Errorf("record %d has no info.conversationId", i)
		}
		for name, payload := range rec {
			t.add(Map(name, payload, id))
		}
	}
	return t, nil
}

func (t *Tables) add(rows []Row) {
	for _, r := range rows {
		tbl, ok := t.tables[r.Kind]
		if !ok {
			tbl = &Table{Kind: r.Kind, Columns: SchemaFor(r.Kind).Columns()}
			t.tables[r.Kind] = tbl
		}
		tbl.Rows = append(tbl.Rows, r)
	}
}

// Kinds returns the kinds that have rows, in schema order.
func (t *Tables) Kinds() []Kind {
	var kinds []Kind
	for _, s := range Schemas {
		if _, ok := t.tables[s.Kind]; ok {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}

// Table returns the table of kind. Known kinds without rows return an
// empty table; unknown kinds return nil.
func (t *Tables) Table(kind Kind) *Table {
	if tbl, ok := t.tables[kind]; ok {
		return tbl
	}
	s := SchemaFor(kind)
	if s == nil {
		return nil
	}
	return &Table{Kind: kind, Columns: s.Columns()}
}

// Len returns the total number of rows across kinds.
func (t *Tables) Len() int {
	n := 0
	for _, tbl := range t.tables {
		n += len(tbl.Rows)
	}
	return n
}

package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KindPredefinedContent is the table produced by PredefinedTable.
const KindPredefinedContent Kind = "predefined_content"

// Null marks a predefined content item filed under no category.
const Null = "NULL"

var predefinedColumns = []string{
	"accountid",
	"predefined_content_id",
	"predefined_content_title",
	"predefined_content_msg",
	"predefined_content_lang",
	"predefined_category_ids",
	"predefined_category_names",
}

var textCleaner = strings.NewReplacer("\n", "", "\t", "", "\r", "", `"`, "")

// CleanText strips line breaks, tabs and double quotes.
func CleanText(s string) string {
	return textCleaner.Replace(s)
}

// CategoryNames indexes a categories list payload by id.
func CategoryNames(categories any) map[string]string {
	names := map[string]string{}
	list, _ := categories.([]any)
	for _, it := range list {
		c, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id := idString(c["id"])
		name, _ := c["name"].(string)
		if id != "" {
			names[id] = CleanText(name)
		}
	}
	return names
}

// PredefinedTable joins predefined content items with their category names,
// one row per language entry of each item. Items that cannot be read are
// skipped and reported in the returned error; the table holds the rest.
func PredefinedTable(accountID string, content, categories any) (*Table, error) {
	names := CategoryNames(categories)
	tbl := &Table{Kind: KindPredefinedContent, Columns: predefinedColumns}

	items, _ := content.([]any)
	var problems []error
	for i, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			problems = append(problems, fmt.Errorf("item %d: not an object", i))
			continue
		}
		rows, err := predefinedRows(accountID, item, names)
		if err != nil {
			problems = append(problems, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		tbl.Rows = append(tbl.Rows, rows...)
	}
	return tbl, errors.Join(problems...)
}

func predefinedRows(accountID string, item map[string]any, names map[string]string) ([]Row, error) {
	id, err := strconv.ParseInt(idString(item["id"]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad id %v", item["id"])
	}

	categoryIDs, categoryNames := Null, Null
	if raw, ok := item["categoriesIds"].([]any); ok {
		ids := make([]string, 0, len(raw))
		labels := make([]string, 0, len(raw))
		for _, c := range raw {
			cid := idString(c)
			name, ok := names[cid]
			if !ok {
				return nil, fmt.Errorf("unknown category %s", cid)
			}
			ids = append(ids, cid)
			labels = append(labels, name)
		}
		categoryIDs = strings.Join(ids, ", ")
		categoryNames = strings.Join(labels, ", ")
	}

	data, ok := item["data"].([]any)
	if !ok {
		return nil, errors.New("missing data")
	}
	rows := make([]Row, 0, len(data))
	for _, d := range data {
		entry, _ := d.(map[string]any)
		title, okTitle := entry["title"].(string)
		msg, okMsg := entry["msg"].(string)
		lang, okLang := entry["lang"].(string)
		if !okTitle || !okMsg || !okLang {
			return nil, errors.New("data entry needs title, msg and lang")
		}
		rows = append(rows, Row{Kind: KindPredefinedContent, Fields: map[string]any{
			"accountid":                 accountID,
			"predefined_content_id":     id,
			"predefined_content_title":  CleanText(title),
			"predefined_content_msg":    CleanText(msg),
			"predefined_content_lang":   CleanText(lang),
			"predefined_category_ids":   categoryIDs,
			"predefined_category_names": categoryNames,
		}})
	}
	return rows, nil
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

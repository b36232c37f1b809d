package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredefinedTable_JoinsCategories(t *testing.T) {
	categories := decode(t, `[{"id": 1, "name": "Billing\n"}, {"id": 2, "name": "Returns"}]`)
	content := decode(t, `[
		{"id": "10", "categoriesIds": [1, 2], "data": [
			{"title": "Greeting", "msg": "Hi \"there\"\t!", "lang": "en-US"},
			{"title": "Saludo", "msg": "Hola", "lang": "es"}
		]},
		{"id": 11, "data": [{"title": "Bye", "msg": "Bye\r\n", "lang": "en-US"}]}
	]`)

	tbl, err := PredefinedTable("1234", content, categories)
	require.NoError(t, err)
	assert.Equal(t, KindPredefinedContent, tbl.Kind)
	require.Len(t, tbl.Rows, 3)

	first := tbl.Rows[0].Fields
	assert.Equal(t, "1234", first["accountid"])
	assert.Equal(t, int64(10), first["predefined_content_id"])
	assert.Equal(t, "Hi there!", first["predefined_content_msg"])
	assert.Equal(t, "1, 2", first["predefined_category_ids"])
	assert.Equal(t, "Billing, Returns", first["predefined_category_names"])
	assert.Equal(t, "es", tbl.Rows[1].Fields["predefined_content_lang"])

	last := tbl.Rows[2].Fields
	assert.Equal(t, int64(11), last["predefined_content_id"])
	assert.Equal(t, "Bye", last["predefined_content_msg"])
	assert.Equal(t, Null, last["predefined_category_ids"])
	assert.Equal(t, Null, last["predefined_category_names"])
}

func TestPredefinedTable_SkipsBrokenItems(t *testing.T) {
	content := decode(t, `[
		{"id": 1, "categoriesIds": [99], "data": [{"title": "a", "msg": "b", "lang": "en"}]},
		{"id": 2, "data": [{"title": "a"}]},
		{"id": 3, "data": [{"title": "ok", "msg": "ok", "lang": "en"}]}
	]`)

	tbl, err := PredefinedTable("1234", content, decode(t, `[]`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "item 0: unknown category 99")
	assert.ErrorContains(t, err, "item 1")
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, int64(3), tbl.Rows[0].Fields["predefined_content_id"])
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("a\t b\r\n c\""))
}

func TestPredefinedTable_NumberIDs(t *testing.T) {
	categories := []any{map[string]any{"id": json.Number("9007199254740993"), "name": "Big"}}
	content := []any{map[string]any{
		"id":            json.Number("12"),
		"categoriesIds": []any{json.Number("9007199254740993")},
		"data":          []any{map[string]any{"title": "t", "msg": "m", "lang": "en"}},
	}}

	tbl, err := PredefinedTable("1234", content, categories)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, int64(12), tbl.Rows[0].Fields["predefined_content_id"])
	assert.Equal(t, "9007199254740993", tbl.Rows[0].Fields["predefined_category_ids"])
	assert.Equal(t, "Big", tbl.Rows[0].Fields["predefined_category_names"])
}

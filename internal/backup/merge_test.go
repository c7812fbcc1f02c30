package backup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func idsOf(t *testing.T, list any) []string {
	t.Helper()
	items, ok := list.([]any)
	require.True(t, ok, "expected a list, got %T", list)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.(map[string]any)["id"].(string))
	}
	return ids
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("Merge")
	require.NoError(t, err)
	assert.Equal(t, ModeMerge, mode)

	mode, err = ParseMode(" overwrite ")
	require.NoError(t, err)
	assert.Equal(t, ModeOverwrite, mode)

	_, err = ParseMode("append")
	assert.Error(t, err)
}

func TestMerge_RecordListsUnionByID(t *testing.T) {
	stored := decode(t, `{"people":[{"id":"a","name":"Ann"},{"id":"b","name":"Bao"}]}`)
	imported := decode(t, `{"people":[{"id":"b","name":"Bao (updated)"},{"id":"c","name":"Chi"}]}`)

	merged := Merge(stored, imported, ModeMerge)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, idsOf(t, merged["people"]))
	for _, item := range merged["people"].([]any) {
		record := item.(map[string]any)
		if record["id"] == "b" {
			assert.Equal(t, "Bao (updated)", record["name"], "imported record wins on id collision")
		}
	}
}

func TestMerge_RecordOrderIsStoredThenNew(t *testing.T) {
	stored := decode(t, `{"activities":[{"id":"1"},{"id":"2"},{"id":"3"}]}`)
	imported := decode(t, `{"activities":[{"id":"4"},{"id":"2"}]}`)

	merged := Merge(stored, imported, ModeMerge)
	assert.Equal(t, []string{"1", "2", "3", "4"}, idsOf(t, merged["activities"]))
}

func TestMerge_NumericAndStringIDsAreDistinct(t *testing.T) {
	stored := decode(t, `{"people":[{"id":1,"name":"num"}]}`)
	imported := decode(t, `{"people":[{"id":"1","name":"str"},{"id":1,"name":"num2"}]}`)

	merged := Merge(stored, imported, ModeMerge)
	items := merged["people"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "num2", items[0].(map[string]any)["name"])
	assert.Equal(t, "str", items[1].(map[string]any)["name"])
}

func TestMerge_RecordsWithoutIDAreKept(t *testing.T) {
	stored := decode(t, `{"people":[{"id":"a"},{"id":""}]}`)
	imported := decode(t, `{"people":[{"id":""},{"id":"a","name":"new"}]}`)

	merged := Merge(stored, imported, ModeMerge)
	items := merged["people"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "new", items[0].(map[string]any)["name"])
}

func TestMerge_RecordsWithoutIDKeepStoredRecords(t *testing.T) {
	tests := []struct {
		name     string
		imported string
		want     []string
	}{
		{"only unkeyed", `{"people":[{"name":"Cy"}]}`, []string{"Ann", "Bo", "Cy"}},
		{"keyed and unkeyed", `{"people":[{"id":3,"name":"Di"},{"name":"Cy"}]}`, []string{"Ann", "Bo", "Di", "Cy"}},
		{"unkeyed and collision", `{"people":[{"name":"Cy"},{"id":2,"name":"Bo 2"}]}`, []string{"Ann", "Bo 2", "Cy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := decode(t, `{"people":[{"id":1,"name":"Ann"},{"id":2,"name":"Bo"}]}`)
			merged := Merge(stored, decode(t, tt.imported), ModeMerge)

			items := merged["people"].([]any)
			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.(map[string]any)["name"].(string))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestMerge_ScalarStringsIgnoreCase(t *testing.T) {
	stored := decode(t, `{"familyEmails":["ann@x.co"]}`)
	imported := decode(t, `{"familyEmails":["Ann@x.co","BO@x.co","bo@x.co"]}`)

	merged := Merge(stored, imported, ModeMerge)
	assert.Equal(t, []any{"ann@x.co", "BO@x.co"}, merged["familyEmails"])
}

func TestMerge_ScalarListsUnionWithoutDuplicates(t *testing.T) {
	stored := decode(t, `{"familyEmails":["a@x.co","b@x.co"]}`)
	imported := decode(t, `{"familyEmails":["b@x.co","c@x.co","c@x.co"]}`)

	merged := Merge(stored, imported, ModeMerge)
	assert.Equal(t, []any{"a@x.co", "b@x.co", "c@x.co"}, merged["familyEmails"])
}

func TestMerge_EmptyListsAgreeWithAnyShape(t *testing.T) {
	stored := decode(t, `{"people":[{"id":"a"}],"familyEmails":[]}`)
	imported := decode(t, `{"people":[],"familyEmails":["z@x.co"]}`)

	merged := Merge(stored, imported, ModeMerge)
	assert.Equal(t, []string{"a"}, idsOf(t, merged["people"]))
	assert.Equal(t, []any{"z@x.co"}, merged["familyEmails"])
}

func TestMerge_NonListValuesImportedWins(t *testing.T) {
	stored := decode(t, `{"language":"en","homeLocation":{"latitude":1,"longitude":2}}`)
	imported := decode(t, `{"language":"vi","homeLocation":{"latitude":3,"longitude":4}}`)

	merged := Merge(stored, imported, ModeMerge)
	assert.Equal(t, "vi", merged["language"])
	assert.Equal(t, map[string]any{"latitude": 3.0, "longitude": 4.0}, merged["homeLocation"])
}

func TestMerge_TypeMismatchImportedWins(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		imported string
	}{
		{"list vs object", `{"k":[1,2]}`, `{"k":{"a":1}}`},
		{"object vs list", `{"k":{"a":1}}`, `{"k":[1]}`},
		{"records vs scalars", `{"k":[{"id":"a"}]}`, `{"k":["a"]}`},
		{"mixed list", `{"k":[{"id":"a"},"x"]}`, `{"k":[{"id":"b"}]}`},
		{"scalar vs null", `{"k":"en"}`, `{"k":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imported := decode(t, tt.imported)
			merged := Merge(decode(t, tt.stored), imported, ModeMerge)
			assert.Equal(t, imported["k"], merged["k"])
		})
	}
}

func TestMerge_SingleSidedKeysPassThrough(t *testing.T) {
	stored := decode(t, `{"language":"en","activities":[{"id":"1"}]}`)
	imported := decode(t, `{"familyEmails":["a@x.co"]}`)

	merged := Merge(stored, imported, ModeMerge)
	assert.Equal(t, "en", merged["language"])
	assert.Equal(t, []string{"1"}, idsOf(t, merged["activities"]))
	assert.Equal(t, []any{"a@x.co"}, merged["familyEmails"])
}

func TestMerge_OverwriteIsExactlyImported(t *testing.T) {
	stored := decode(t, `{"language":"en","people":[{"id":"a"}]}`)
	imported := decode(t, `{"people":[{"id":"b"}]}`)

	merged := Merge(stored, imported, ModeOverwrite)
	assert.Equal(t, imported, merged)
	_, ok := merged["language"]
	assert.False(t, ok, "overwrite drops keys that only exist in the store")
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	stored := decode(t, `{"people":[{"id":"a"}]}`)
	imported := decode(t, `{"people":[{"id":"b"}]}`)

	Merge(stored, imported, ModeMerge)
	assert.Equal(t, []string{"a"}, idsOf(t, stored["people"]))
	assert.Equal(t, []string{"b"}, idsOf(t, imported["people"]))
}

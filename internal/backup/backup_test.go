package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atinylittleshell/memorycare/internal/kvstore"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, _ := openStoreAt(t)
	return store
}

func openStoreAt(t *testing.T) (*kvstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")
	store, err := kvstore.Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// rejectWrites installs a trigger that aborts any write of key, using a
// separate connection to the store's database file.
func rejectWrites(t *testing.T, dbPath string, key string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	defer func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	}()

	trigger := fmt.Sprintf(`CREATE TRIGGER reject_%[1]s BEFORE INSERT ON kv_entries
		WHEN NEW.store_key = '%[1]s'
		BEGIN SELECT RAISE(ABORT, 'write rejected'); END`, key)
	require.NoError(t, db.Exec(trigger).Error)
}

func seed(t *testing.T, store *kvstore.Store, values map[string]string) {
	t.Helper()
	for key, value := range values {
		require.NoError(t, store.Set(context.Background(), key, json.RawMessage(value)))
	}
}

func TestDecode(t *testing.T) {
	t.Run("keeps known keys and reports unknown ones", func(t *testing.T) {
		decoded, err := Decode(strings.NewReader(`{"people":[],"theme":"dark","language":"vi","zzz":1}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"language", "people"}, decoded.Document.Keys())
		assert.Equal(t, []string{"theme", "zzz"}, decoded.Skipped)
	})

	t.Run("rejects documents without known keys", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"theme":"dark"}`))
		assert.ErrorIs(t, err, ErrInvalidBackup)
		assert.ErrorContains(t, err, "familyEmails")
	})

	t.Run("rejects non-object JSON", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`[1,2,3]`))
		assert.ErrorIs(t, err, ErrInvalidBackup)

		_, err = Decode(strings.NewReader(`{not json`))
		assert.ErrorIs(t, err, ErrInvalidBackup)
	})

	t.Run("rejects known keys with the wrong shape", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"people":"Ann"}`))
		assert.ErrorIs(t, err, ErrInvalidBackup)
	})
}

func TestDocumentEncodeRoundTrip(t *testing.T) {
	doc := Document{
		"language":     json.RawMessage(`"en"`),
		"familyEmails": json.RawMessage(`["a@x.co"]`),
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	assert.Contains(t, buf.String(), "\n  \"familyEmails\": [\n")

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Keys(), decoded.Document.Keys())
	assert.JSONEq(t, `["a@x.co"]`, string(decoded.Document["familyEmails"]))
}

func TestWriteFileAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)))
	assert.True(t, strings.HasSuffix(path, "memorycare_backup_2026-03-09.json"))

	doc := Document{"activities": json.RawMessage(`[{"id":"1","name":"Walk","time":"08:00","isRecurring":true}]`)}
	require.NoError(t, doc.WriteFile(path))

	decoded, err := ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc["activities"]), string(decoded.Document["activities"]))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	store := openStore(t)
	seed(t, store, map[string]string{
		"language":     `"vi"`,
		"familyEmails": `["a@x.co"]`,
	})

	doc, err := Export(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []string{"familyEmails", "language"}, doc.Keys())
	assert.JSONEq(t, `"vi"`, string(doc["language"]))
}

func TestImport_Merge(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seed(t, store, map[string]string{
		"people":       `[{"id":"a","name":"Ann"},{"id":"b","name":"Bao"}]`,
		"familyEmails": `["a@x.co"]`,
		"language":     `"en"`,
	})

	doc := Document{
		"people":       json.RawMessage(`[{"id":"b","name":"Bao 2"},{"id":"c","name":"Chi"}]`),
		"familyEmails": json.RawMessage(`["a@x.co","b@x.co"]`),
	}

	result, err := Import(ctx, store, doc, ModeMerge, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeMerge, result.Mode)
	assert.Equal(t, []string{"familyEmails", "people"}, result.Written)
	assert.Empty(t, result.Removed)

	people, err := store.Get(ctx, "people")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"Ann"},{"id":"b","name":"Bao 2"},{"id":"c","name":"Chi"}]`, string(people))

	emails, err := store.Get(ctx, "familyEmails")
	require.NoError(t, err)
	assert.JSONEq(t, `["a@x.co","b@x.co"]`, string(emails))

	lang, err := store.Get(ctx, "language")
	require.NoError(t, err)
	assert.JSONEq(t, `"en"`, string(lang))
}

func TestImport_OverwriteReplacesWholeStore(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seed(t, store, map[string]string{
		"people":   `[{"id":"a"}]`,
		"language": `"en"`,
	})

	doc := Document{"people": json.RawMessage(`[{"id":"z"}]`)}
	result, err := Import(ctx, store, doc, ModeOverwrite, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, result.Written)
	assert.Equal(t, []string{"language"}, result.Removed)

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.JSONEq(t, `[{"id":"z"}]`, string(snapshot["people"]))
}

func TestImport_InvalidDocumentLeavesStoreUntouched(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	seed(t, store, map[string]string{"language": `"en"`})

	doc := Document{"people": json.RawMessage(`{broken`)}
	_, err := Import(ctx, store, doc, ModeOverwrite, nil)
	require.Error(t, err)

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `"en"`, string(snapshot["language"]))
}

func TestImport_FailedWriteAfterClearRollsBack(t *testing.T) {
	store, path := openStoreAt(t)
	ctx := context.Background()
	seed(t, store, map[string]string{
		"people":       `[{"id":"a","name":"Ann"}]`,
		"familyEmails": `["a@x.co"]`,
		"language":     `"en"`,
	})
	before, err := store.Snapshot(ctx)
	require.NoError(t, err)

	rejectWrites(t, path, "people")

	doc := Document{
		"people":       json.RawMessage(`[{"id":"z","name":"Zed"}]`),
		"familyEmails": json.RawMessage(`["z@x.co"]`),
		"activities":   json.RawMessage(`[]`),
	}
	_, err = Import(ctx, store, doc, ModeOverwrite, nil)
	require.ErrorContains(t, err, "write rejected")

	after, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for key, value := range before {
		assert.JSONEq(t, string(value), string(after[key]), key)
	}
}

func TestImport_RejectsUnknownMode(t *testing.T) {
	store := openStore(t)
	_, err := Import(context.Background(), store, Document{}, Mode("append"), nil)
	assert.Error(t, err)
}

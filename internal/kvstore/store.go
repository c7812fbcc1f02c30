// Package kvstore is the single local key-value store every record collection
// and backup operation reads and writes. Values are JSON documents keyed by
// store name and kept in one sqlite table.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("key not found")

type Store struct {
	db   *gorm.DB
	path string
}

// Entry is one stored value.
type Entry struct {
	Key       string `gorm:"column:store_key;primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

const (
	schemaVersion         = 1
	schemaVersionFileName = "store_schema_version"
)

// Open opens (creating if needed) the store at dbFilePath.
func Open(dbFilePath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking store db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening store db: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbFilePath,
	}

	if store.needsMigration(dbFileExists) {
		log.Debug("migrating store schema", zap.String("path", dbFilePath))
		if err := db.AutoMigrate(&Entry{}); err != nil {
			store.Close()
			return nil, fmt.Errorf("error auto-migrating store schema: %w", err)
		}
		if err := store.writeSchemaVersion(schemaVersion); err != nil {
			store.Close()
			return nil, fmt.Errorf("error writing store schema version: %w", err)
		}
	}

	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) needsMigration(dbFileExists bool) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := s.schemaVersionMatches()
	if err != nil || !versionMatches {
		return true
	}

	// Marker present but table gone (manual deletion): migrate again.
	return !s.db.Migrator().HasTable(&Entry{})
}

func (s *Store) schemaVersionPath() string {
	return filepath.Join(filepath.Dir(s.path), schemaVersionFileName)
}

func (s *Store) writeSchemaVersion(version int) error {
	return os.WriteFile(s.schemaVersionPath(), []byte(strconv.Itoa(version)), 0644)
}

func (s *Store) schemaVersionMatches() (bool, error) {
	data, err := os.ReadFile(s.schemaVersionPath())
	if err != nil {
		return false, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, err
	}
	if version != schemaVersion {
		return false, fmt.Errorf("store schema version mismatch: got %d, want %d", version, schemaVersion)
	}
	return true, nil
}

// Update runs fn inside a single transaction. If fn returns an error every
// write it made is rolled back.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	})
}

func (s *Store) tx(ctx context.Context) *Tx {
	return &Tx{db: s.db.WithContext(ctx)}
}

func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	return s.tx(ctx).Get(key)
}

// GetJSON decodes the value under key into v. It reports false when the key is
// absent, leaving v untouched.
func (s *Store) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	return s.tx(ctx).GetJSON(key, v)
}

func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	return s.tx(ctx).Set(key, value)
}

func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	return s.tx(ctx).SetJSON(key, v)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.tx(ctx).Delete(key)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.tx(ctx).Clear()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.tx(ctx).Keys()
}

// Snapshot returns every stored value keyed by store name.
func (s *Store) Snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	return s.tx(ctx).Snapshot()
}

// Tx is a view of the store bound to one transaction (or to the plain
// connection for single-statement calls).
type Tx struct {
	db *gorm.DB
}

func (t *Tx) Get(key string) (json.RawMessage, error) {
	var entry Entry
	result := t.db.Where("store_key = ?", key).Limit(1).Find(&entry)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return json.RawMessage(entry.Value), nil
}

func (t *Tx) GetJSON(key string, v any) (bool, error) {
	raw, err := t.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

func (t *Tx) Set(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	entry := Entry{
		Key:   key,
		Value: string(value),
	}
	result := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to write %q: %w", key, result.Error)
	}
	return nil
}

func (t *Tx) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return t.Set(key, raw)
}

// Delete removes key. Deleting an absent key is not an error.
func (t *Tx) Delete(key string) error {
	result := t.db.Where("store_key = ?", key).Delete(&Entry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %q: %w", key, result.Error)
	}
	return nil
}

func (t *Tx) Clear() error {
	result := t.db.Exec("DELETE FROM kv_entries")
	if result.Error != nil {
		return fmt.Errorf("failed to clear store: %w", result.Error)
	}
	return nil
}

func (t *Tx) Keys() ([]string, error) {
	var keys []string
	result := t.db.Model(&Entry{}).Order("store_key").Pluck("store_key", &keys)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list keys: %w", result.Error)
	}
	return keys, nil
}

func (t *Tx) Snapshot() (map[string]json.RawMessage, error) {
	var entries []Entry
	result := t.db.Order("store_key").Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read store: %w", result.Error)
	}

	snapshot := make(map[string]json.RawMessage, len(entries))
	for _, entry := range entries {
		snapshot[entry.Key] = json.RawMessage(entry.Value)
	}
	return snapshot, nil
}

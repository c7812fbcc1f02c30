// Package backup exports the store to a JSON document and imports such a
// document back under a merge or overwrite policy.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/samber/lo"
)

var ErrInvalidBackup = errors.New("file is not a memorycare backup")

// Document is a backup: top-level keys are store names, values are the raw
// JSON stored under them.
type Document map[string]json.RawMessage

// Keys returns the document's keys sorted.
func (d Document) Keys() []string {
	keys := lo.Keys(d)
	slices.Sort(keys)
	return keys
}

// Decoded is a document read from disk together with the keys that were
// dropped because they are not store names.
type Decoded struct {
	Document Document
	Skipped  []string
}

// Decode parses a backup. A document with no known store key is rejected with
// ErrInvalidBackup. Unknown keys are dropped and reported in Skipped. Every
// known key must decode into its record type.
func Decode(r io.Reader) (*Decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	known, unknown := lo.FilterReject(lo.Keys(raw), func(key string, _ int) bool {
		return models.IsKnownKey(key)
	})
	if len(known) == 0 {
		return nil, fmt.Errorf("%w: none of %s present", ErrInvalidBackup, strings.Join(models.AllKeys(), ", "))
	}

	decoded := &Decoded{
		Document: make(Document, len(known)),
		Skipped:  unknown,
	}
	slices.Sort(decoded.Skipped)

	for _, key := range known {
		if err := models.ValidateValue(key, raw[key]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		decoded.Document[key] = raw[key]
	}

	return decoded, nil
}

// ReadFile decodes the backup at path.
func ReadFile(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Encode writes the document as indented JSON with sorted keys.
func (d Document) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]json.RawMessage(d)); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// WriteFile writes the document to path.
func (d Document) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// FileName is the default backup file name for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("memorycare_backup_%s.json", t.Format("2006-01-02"))
}

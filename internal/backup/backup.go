package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/atinylittleshell/memorycare/internal/kvstore"
	"go.uber.org/zap"
)

// Result describes a completed import.
type Result struct {
	Mode    Mode
	Written []string
	Removed []string
}

// Export reads every stored value into a document.
func Export(ctx context.Context, store *kvstore.Store) (Document, error) {
	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export store: %w", err)
	}
	return Document(snapshot), nil
}

// Import applies doc to the store in one transaction. Overwrite clears the
// store before writing, so keys absent from doc are removed. A storage error
// aborts the import and leaves the store as it was.
func Import(ctx context.Context, store *kvstore.Store, doc Document, mode Mode, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode != ModeMerge && mode != ModeOverwrite {
		return nil, fmt.Errorf("unknown import mode %q", mode)
	}

	result := &Result{Mode: mode}

	err := store.Update(ctx, func(tx *kvstore.Tx) error {
		snapshot, err := tx.Snapshot()
		if err != nil {
			return err
		}

		stored, err := decodeValues(snapshot)
		if err != nil {
			return fmt.Errorf("stored data is corrupt: %w", err)
		}
		imported, err := decodeValues(doc)
		if err != nil {
			return fmt.Errorf("backup data is corrupt: %w", err)
		}

		merged := Merge(stored, imported, mode)

		if mode == ModeOverwrite {
			if err := tx.Clear(); err != nil {
				return err
			}
			for key := range stored {
				if _, ok := merged[key]; !ok {
					result.Removed = append(result.Removed, key)
				}
			}
		}

		// Only keys the backup touched need writing; the rest are unchanged.
		for key := range imported {
			if err := tx.SetJSON(key, merged[key]); err != nil {
				return err
			}
			result.Written = append(result.Written, key)
		}
		return nil
	})
	if err != nil {
		logger.Error("backup import failed", zap.String("mode", string(mode)), zap.Error(err))
		return nil, fmt.Errorf("import failed: %w", err)
	}

	slices.Sort(result.Written)
	slices.Sort(result.Removed)
	logger.Info("backup imported",
		zap.String("mode", string(mode)),
		zap.Strings("written", result.Written),
		zap.Strings("removed", result.Removed),
	)
	return result, nil
}

func decodeValues(raw map[string]json.RawMessage) (map[string]any, error) {
	values := make(map[string]any, len(raw))
	for key, data := range raw {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}

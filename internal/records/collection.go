// Package records provides typed access to the collections kept in the
// key-value store.
package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/kvstore"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrAmbiguous = errors.New("id prefix matches more than one record")
)

// Record is an element of an id-keyed collection.
type Record interface {
	RecordID() string
}

// recordPtr lets a collection assign ids to new records.
type recordPtr[T Record] interface {
	*T
	SetRecordID(id string)
}

// Collection is a list of records stored as one JSON array under key.
type Collection[T Record, P recordPtr[T]] struct {
	store *kvstore.Store
	key   string
	sort  func(a, b T) int
}

func newCollection[T Record, P recordPtr[T]](store *kvstore.Store, key string, sort func(a, b T) int) *Collection[T, P] {
	return &Collection[T, P]{store: store, key: key, sort: sort}
}

// List returns every record in the collection's order. Stored arrays written
// by an import may be in any order, so the order is applied on read too.
func (c *Collection[T, P]) List(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := c.store.GetJSON(ctx, c.key, &items); err != nil {
		return nil, err
	}
	if c.sort != nil {
		slices.SortStableFunc(items, c.sort)
	}
	return items, nil
}

func (c *Collection[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	idx := slices.IndexFunc(items, func(item T) bool { return item.RecordID() == id })
	if idx < 0 {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.key, id)
	}
	return items[idx], nil
}

// Resolve finds the record whose id is exactly ref or, failing that, the single
// record whose id starts with ref.
func (c *Collection[T, P]) Resolve(ctx context.Context, ref string) (T, error) {
	var zero T
	if ref == "" {
		return zero, fmt.Errorf("%w: %s (empty id)", ErrNotFound, c.key)
	}
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}

	var matches []T
	for _, item := range items {
		if item.RecordID() == ref {
			return item, nil
		}
		if strings.HasPrefix(item.RecordID(), ref) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.key, ref)
	case 1:
		return matches[0], nil
	}
	return zero, fmt.Errorf("%w: %s %s", ErrAmbiguous, c.key, ref)
}

// Add appends item, assigning a new id when it has none. It returns the
// stored record.
func (c *Collection[T, P]) Add(ctx context.Context, item T) (T, error) {
	if item.RecordID() == "" {
		P(&item).SetRecordID(NewID())
	}
	err := c.mutate(ctx, func(items []T) ([]T, error) {
		return append(items, item), nil
	})
	return item, err
}

// Update replaces the record whose id matches item.
func (c *Collection[T, P]) Update(ctx context.Context, item T) error {
	return c.mutate(ctx, func(items []T) ([]T, error) {
		idx := slices.IndexFunc(items, func(existing T) bool { return existing.RecordID() == item.RecordID() })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.key, item.RecordID())
		}
		items[idx] = item
		return items, nil
	})
}

// Modify applies fn to the record with the given id and stores the result.
func (c *Collection[T, P]) Modify(ctx context.Context, id string, fn func(item *T) error) (T, error) {
	var updated T
	err := c.mutate(ctx, func(items []T) ([]T, error) {
		idx := slices.IndexFunc(items, func(existing T) bool { return existing.RecordID() == id })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.key, id)
		}
		if err := fn(&items[idx]); err != nil {
			return nil, err
		}
		// The id is the collection's identity; fn may not change it.
		P(&items[idx]).SetRecordID(id)
		updated = items[idx]
		return items, nil
	})
	return updated, err
}

func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(items []T) ([]T, error) {
		kept := slices.DeleteFunc(items, func(item T) bool { return item.RecordID() == id })
		if len(kept) == len(items) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.key, id)
		}
		return kept, nil
	})
}

func (c *Collection[T, P]) mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return c.store.Update(ctx, func(tx *kvstore.Tx) error {
		var items []T
		if _, err := tx.GetJSON(c.key, &items); err != nil {
			return err
		}
		items, err := fn(items)
		if err != nil {
			return err
		}
		if c.sort != nil {
			slices.SortStableFunc(items, c.sort)
		}
		if items == nil {
			items = []T{}
		}
		return tx.SetJSON(c.key, items)
	})
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

package backup

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type Mode string

const (
	// ModeMerge keeps stored data and folds the backup into it.
	ModeMerge Mode = "merge"
	// ModeOverwrite replaces the whole store with the backup.
	ModeOverwrite Mode = "overwrite"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMerge:
		return ModeMerge, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	}
	return "", fmt.Errorf("unknown import mode %q (want merge or overwrite)", s)
}

// Merge combines stored and imported values as decoded by encoding/json.
//
// Under ModeOverwrite the result is exactly imported. Under ModeMerge keys
// present on one side pass through, and keys present on both are combined by
// mergeValue. Neither input is modified.
func Merge(stored, imported map[string]any, mode Mode) map[string]any {
	if mode == ModeOverwrite {
		return maps.Clone(imported)
	}

	result := make(map[string]any, len(stored)+len(imported))
	maps.Copy(result, stored)
	for key, incoming := range imported {
		current, ok := stored[key]
		if !ok {
			result[key] = incoming
			continue
		}
		result[key] = mergeValue(current, incoming)
	}
	return result
}

type listKind int

const (
	listEmpty listKind = iota
	listRecords
	listScalars
	listMixed
)

func mergeValue(current, incoming any) any {
	currentList, ok := current.([]any)
	if !ok {
		return incoming
	}
	incomingList, ok := incoming.([]any)
	if !ok {
		return incoming
	}

	kind, ok := combinedKind(classify(currentList), classify(incomingList))
	if !ok {
		return incoming
	}

	switch kind {
	case listRecords:
		return mergeRecords(currentList, incomingList)
	case listScalars:
		return lo.UniqBy(slices.Concat(currentList, incomingList), scalarKey)
	default:
		return incoming
	}
}

// combinedKind reports the shape both lists agree on. An empty list agrees
// with anything.
func combinedKind(a, b listKind) (listKind, bool) {
	switch {
	case a == listMixed || b == listMixed:
		return listMixed, false
	case a == listEmpty:
		return b, true
	case b == listEmpty:
		return a, true
	case a == b:
		return a, true
	}
	return listMixed, false
}

// classify treats any list of objects as records, whether or not every
// object carries an id.
func classify(list []any) listKind {
	if len(list) == 0 {
		return listEmpty
	}

	objects, scalars := 0, 0
	for _, item := range list {
		switch item.(type) {
		case map[string]any:
			objects++
		case string, float64, bool, nil:
			scalars++
		}
	}

	switch {
	case objects == len(list):
		return listRecords
	case scalars == len(list):
		return listScalars
	}
	return listMixed
}

// scalarKey compares strings ignoring case so addresses that differ only in
// case collapse to the first one seen.
func scalarKey(item any) any {
	if s, ok := item.(string); ok {
		return strings.ToLower(s)
	}
	return item
}

// mergeRecords keeps stored order, replaces records whose id reappears in the
// imported list, then appends imported records with new ids. Records without a
// usable id are kept from both sides and never deduplicated.
func mergeRecords(current, incoming []any) []any {
	merged := make([]any, 0, len(current)+len(incoming))
	positions := make(map[string]int, len(current))

	for _, item := range current {
		if id, ok := recordID(item); ok {
			if pos, seen := positions[id]; seen {
				merged[pos] = item
				continue
			}
			positions[id] = len(merged)
		}
		merged = append(merged, item)
	}

	for _, item := range incoming {
		if id, ok := recordID(item); ok {
			if pos, seen := positions[id]; seen {
				merged[pos] = item
				continue
			}
			positions[id] = len(merged)
		}
		merged = append(merged, item)
	}

	return merged
}

func recordID(item any) (string, bool) {
	record, ok := item.(map[string]any)
	if !ok {
		return "", false
	}
	switch id := record["id"].(type) {
	case string:
		if id == "" {
			return "", false
		}
		return "s:" + id, true
	case float64:
		return "n:" + strconv.FormatFloat(id, 'g', -1, 64), true
	}
	return "", false
}

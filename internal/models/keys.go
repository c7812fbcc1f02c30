package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Store keys. These are also the top-level keys of a backup document.
const (
	KeyPeople         = "people"
	KeyJournalEntries = "journalEntries"
	KeyActivities     = "activities"
	KeyHomeLocation   = "homeLocation"
	KeySavedLocations = "savedLocations"
	KeyFamilyEmails   = "familyEmails"
	KeyLanguage       = "language"
)

var allKeys = []string{
	KeyPeople,
	KeyJournalEntries,
	KeyActivities,
	KeyHomeLocation,
	KeySavedLocations,
	KeyFamilyEmails,
	KeyLanguage,
}

// AllKeys returns every known store key in a stable order.
func AllKeys() []string {
	return slices.Clone(allKeys)
}

func IsKnownKey(key string) bool {
	return slices.Contains(allKeys, key)
}

// ValidateValue reports whether raw decodes into the Go type stored under key.
// Unknown keys are accepted as-is.
func ValidateValue(key string, raw json.RawMessage) error {
	var target any
	switch key {
	case KeyPeople:
		target = &[]Person{}
	case KeyJournalEntries:
		target = &[]JournalEntry{}
	case KeyActivities:
		target = &[]Activity{}
	case KeySavedLocations:
		target = &[]SavedLocation{}
	case KeyHomeLocation:
		var loc *LocationInfo
		target = &loc
	case KeyFamilyEmails:
		target = &[]string{}
	case KeyLanguage:
		var lang string
		if err := json.Unmarshal(raw, &lang); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if _, err := ParseLanguage(lang); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	default:
		return nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

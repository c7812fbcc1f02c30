package records

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/kvstore"
	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

var ErrDuplicateEmail = errors.New("email already in family contacts")

// Service groups every collection and scalar setting behind one store.
type Service struct {
	store *kvstore.Store

	People     *Collection[models.Person, *models.Person]
	Journal    *Collection[models.JournalEntry, *models.JournalEntry]
	Activities *Collection[models.Activity, *models.Activity]
	Locations  *Collection[models.SavedLocation, *models.SavedLocation]
}

func NewService(store *kvstore.Store) *Service {
	return &Service{
		store:  store,
		People: newCollection[models.Person](store, models.KeyPeople, nil),
		Journal: newCollection[models.JournalEntry](store, models.KeyJournalEntries, func(a, b models.JournalEntry) int {
			return cmp.Compare(b.Timestamp, a.Timestamp)
		}),
		Activities: newCollection[models.Activity](store, models.KeyActivities, func(a, b models.Activity) int {
			return strings.Compare(a.Time, b.Time)
		}),
		Locations: newCollection[models.SavedLocation](store, models.KeySavedLocations, nil),
	}
}

// SearchPeople fuzzy-matches query against name and relationship, best first.
func (s *Service) SearchPeople(ctx context.Context, query string) ([]models.Person, error) {
	people, err := s.People.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return people, nil
	}

	matches := fuzzy.FindFrom(query, peopleSource(people))
	return lo.Map(matches, func(match fuzzy.Match, _ int) models.Person {
		return people[match.Index]
	}), nil
}

type peopleSource []models.Person

func (p peopleSource) String(i int) string {
	return p[i].Name + " " + p[i].Relationship
}

func (p peopleSource) Len() int {
	return len(p)
}

func (s *Service) FamilyEmails(ctx context.Context) ([]string, error) {
	emails := []string{}
	if _, err := s.store.GetJSON(ctx, models.KeyFamilyEmails, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// AddFamilyEmail validates email and appends it unless an address equal to it
// ignoring case is already present. It returns the trimmed address.
func (s *Service) AddFamilyEmail(ctx context.Context, email string) (string, error) {
	trimmed, err := models.ValidateEmail(email)
	if err != nil {
		return "", err
	}

	err = s.store.Update(ctx, func(tx *kvstore.Tx) error {
		var emails []string
		if _, err := tx.GetJSON(models.KeyFamilyEmails, &emails); err != nil {
			return err
		}
		if lo.ContainsBy(emails, func(existing string) bool { return strings.EqualFold(existing, trimmed) }) {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, trimmed)
		}
		return tx.SetJSON(models.KeyFamilyEmails, append(emails, trimmed))
	})
	if err != nil {
		return "", err
	}
	return trimmed, nil
}

// RemoveFamilyEmail removes every address equal to email ignoring case.
func (s *Service) RemoveFamilyEmail(ctx context.Context, email string) error {
	target := strings.TrimSpace(email)
	return s.store.Update(ctx, func(tx *kvstore.Tx) error {
		var emails []string
		if _, err := tx.GetJSON(models.KeyFamilyEmails, &emails); err != nil {
			return err
		}
		kept := lo.Reject(emails, func(existing string, _ int) bool { return strings.EqualFold(existing, target) })
		if len(kept) == len(emails) {
			return fmt.Errorf("%w: family email %s", ErrNotFound, target)
		}
		return tx.SetJSON(models.KeyFamilyEmails, kept)
	})
}

// HomeLocation returns nil when no home has been set.
func (s *Service) HomeLocation(ctx context.Context) (*models.LocationInfo, error) {
	var home *models.LocationInfo
	if _, err := s.store.GetJSON(ctx, models.KeyHomeLocation, &home); err != nil {
		return nil, err
	}
	return home, nil
}

func (s *Service) SetHomeLocation(ctx context.Context, loc models.LocationInfo) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	return s.store.SetJSON(ctx, models.KeyHomeLocation, loc)
}

func (s *Service) ClearHomeLocation(ctx context.Context) error {
	return s.store.Delete(ctx, models.KeyHomeLocation)
}

// Language returns the stored UI language, English when unset or unreadable.
func (s *Service) Language(ctx context.Context) (models.Language, error) {
	var raw string
	found, err := s.store.GetJSON(ctx, models.KeyLanguage, &raw)
	if err != nil {
		return models.LanguageEnglish, err
	}
	if !found {
		return models.LanguageEnglish, nil
	}
	lang, err := models.ParseLanguage(raw)
	if err != nil {
		return models.LanguageEnglish, nil
	}
	return lang, nil
}

func (s *Service) SetLanguage(ctx context.Context, lang models.Language) error {
	if _, err := models.ParseLanguage(string(lang)); err != nil {
		return err
	}
	return s.store.SetJSON(ctx, models.KeyLanguage, lang)
}

// SetJournalTags replaces the tags on a journal entry.
func (s *Service) SetJournalTags(ctx context.Context, id string, tags []string) (models.JournalEntry, error) {
	return s.Journal.Modify(ctx, id, func(entry *models.JournalEntry) error {
		entry.Tags = tags
		return nil
	})
}

// SetPersonSummary stores the generated key-info summary for a person.
func (s *Service) SetPersonSummary(ctx context.Context, id string, summary string) (models.Person, error) {
	return s.People.Modify(ctx, id, func(person *models.Person) error {
		person.KeyInfoSummary = summary
		return nil
	})
}

// Package models defines the records memorycare persists and the store keys
// they live under.
package models

import (
	"fmt"
	"strings"
)

type Person struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Relationship   string `json:"relationship"`
	PhotoURL       string `json:"photoUrl"`
	KeyInfo        string `json:"keyInfo"`
	KeyInfoSummary string `json:"keyInfoSummary,omitempty"`
	VoiceNoteURL   string `json:"voiceNoteUrl,omitempty"`
}

// JournalEntry timestamps are unix milliseconds.
type JournalEntry struct {
	ID        string   `json:"id"`
	Timestamp int64    `json:"timestamp"`
	Text      string   `json:"text"`
	Mood      string   `json:"mood,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type Activity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Time        string `json:"time"`
	Description string `json:"description,omitempty"`
	IsRecurring bool   `json:"isRecurring"`
}

type LocationInfo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Validate checks that the coordinate pair is on the globe.
func (l LocationInfo) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", l.Longitude)
	}
	return nil
}

type SavedLocation struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Location LocationInfo `json:"location"`
}

func (p Person) RecordID() string        { return p.ID }
func (j JournalEntry) RecordID() string  { return j.ID }
func (a Activity) RecordID() string      { return a.ID }
func (s SavedLocation) RecordID() string { return s.ID }

func (p *Person) SetRecordID(id string)        { p.ID = id }
func (j *JournalEntry) SetRecordID(id string)  { j.ID = id }
func (a *Activity) SetRecordID(id string)      { a.ID = id }
func (s *SavedLocation) SetRecordID(id string) { s.ID = id }

type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageVietnamese Language = "vi"
)

// Name returns the language's English name, used when prompting models.
func (l Language) Name() string {
	if l == LanguageVietnamese {
		return "Vietnamese"
	}
	return "English"
}

func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageVietnamese:
		return LanguageVietnamese, nil
	}
	return "", fmt.Errorf("unsupported language %q (want en or vi)", s)
}

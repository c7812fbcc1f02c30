package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/stretchr/testify/assert"
)

func newPlain() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := Plain(&buf)
	r.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r, &buf
}

func TestNotify(t *testing.T) {
	r, buf := newPlain()

	r.Notify(Success, "Added %s", "Ann")
	r.Notify(Error, "could not save")
	r.Notify(Info, "nothing to do")

	assert.Equal(t, "✓ Added Ann\n✗ could not save\n→ nothing to do\n", buf.String())
}

func TestPeople(t *testing.T) {
	r, buf := newPlain()
	r.People(nil)
	assert.Contains(t, buf.String(), "People (0)")
	assert.Contains(t, buf.String(), "No people added yet.")

	buf.Reset()
	r.People([]models.Person{
		{ID: "0123456789abcdef", Name: "Ann", Relationship: "daughter", KeyInfo: "raw", KeyInfoSummary: "This is Ann."},
		{ID: "b", Name: "Bao", Relationship: "son", KeyInfo: "Lives in Hue"},
	})
	out := buf.String()
	assert.Contains(t, out, "01234567  Ann · daughter")
	assert.Contains(t, out, "This is Ann.")
	assert.NotContains(t, out, "raw")
	assert.Contains(t, out, "Lives in Hue")
}

func TestJournal(t *testing.T) {
	r, buf := newPlain()
	twoHoursAgo := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli()

	r.Journal([]models.JournalEntry{{ID: "e1", Timestamp: twoHoursAgo, Text: "Tea with Bao", Tags: []string{"family", "tea"}}})
	out := buf.String()
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "Tea with Bao")
	assert.Contains(t, out, "#family #tea")
}

func TestActivities(t *testing.T) {
	r, buf := newPlain()
	r.Activities([]models.Activity{{ID: "a1", Time: "08:00", Name: "Walk", Description: "lake", IsRecurring: true}})
	out := buf.String()
	assert.Contains(t, out, "08:00  Walk (daily)")
	assert.Contains(t, out, "lake")
}

func TestLocations(t *testing.T) {
	r, buf := newPlain()
	home := &models.LocationInfo{Latitude: 21.0285, Longitude: 105.8542}
	r.Locations([]models.SavedLocation{
		{ID: "l1", Name: "Lake", Location: models.LocationInfo{Latitude: 21.0287, Longitude: 105.8524}},
	}, home)
	out := buf.String()
	assert.Contains(t, out, "Home 21.028500, 105.854200")
	assert.Contains(t, out, "Lake")
	assert.Contains(t, out, "188 m from home")

	buf.Reset()
	r.Locations(nil, nil)
	assert.NotContains(t, buf.String(), "Home")
	assert.Contains(t, buf.String(), "No saved places yet.")
}

func TestEmails(t *testing.T) {
	r, buf := newPlain()
	r.Emails([]string{"a@x.co"})
	assert.Contains(t, buf.String(), "Family contacts (1)")
	assert.Contains(t, buf.String(), "  a@x.co\n")
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "188 m", FormatDistance(188.14))
	assert.Equal(t, "1.5 km", FormatDistance(1510))
	assert.Equal(t, "1143.5 km", FormatDistance(1_143_505))
}

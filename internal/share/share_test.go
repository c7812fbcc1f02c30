package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMailto(t *testing.T, link string) (recipients string, subject string, body string) {
	t.Helper()
	require.True(t, strings.HasPrefix(link, "mailto:"))
	rest := strings.TrimPrefix(link, "mailto:")
	to, rawQuery, ok := strings.Cut(rest, "?")
	require.True(t, ok)
	query, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	return to, query.Get("subject"), query.Get("body")
}

func TestPlanBody(t *testing.T) {
	activities := []models.Activity{
		{Time: "08:00", Name: "Walk", Description: "around the lake"},
		{Time: "12:00", Name: "Lunch"},
	}
	body := PlanBody(activities, models.LanguageEnglish)
	assert.Equal(t, "Here is today's plan:\n\n- 08:00: Walk (around the lake)\n- 12:00: Lunch", body)

	assert.Contains(t, PlanBody(nil, models.LanguageEnglish), "No activities planned yet.")
	assert.Contains(t, PlanBody(nil, models.LanguageVietnamese), "Chưa có hoạt động nào.")
}

func TestPlanMailto(t *testing.T) {
	_, err := PlanMailto(nil, nil, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrNoRecipients)

	link, err := PlanMailto([]string{"a@x.co", "b@x.co"}, []models.Activity{{Time: "09:30", Name: "Tea"}}, models.LanguageEnglish)
	require.NoError(t, err)
	assert.NotContains(t, link, "+")

	to, subject, body := parseMailto(t, link)
	assert.Equal(t, "a@x.co,b@x.co", to)
	assert.Equal(t, "Today's activity plan", subject)
	assert.Contains(t, body, "- 09:30: Tea")
}

func TestLocationAlertMailto(t *testing.T) {
	loc := models.LocationInfo{Latitude: 21.0285, Longitude: 105.8542}

	_, err := LocationAlertMailto(nil, loc, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = LocationAlertMailto([]string{"a@x.co"}, models.LocationInfo{Latitude: 100}, models.LanguageEnglish)
	assert.Error(t, err)

	link, err := LocationAlertMailto([]string{"a@x.co"}, loc, models.LanguageVietnamese)
	require.NoError(t, err)
	_, subject, body := parseMailto(t, link)
	assert.Contains(t, subject, "vị trí")
	assert.Contains(t, body, "21.028500")
	assert.Contains(t, body, "https://www.google.com/maps?q=21.028500%2C105.854200")
}

func TestMailto_EscapesRecipients(t *testing.T) {
	link, err := PlanMailto([]string{"a?b@x.co", "c&d@x.co", "e,f@x.co"}, nil, models.LanguageEnglish)
	require.NoError(t, err)

	to, subject, _ := parseMailto(t, link)
	assert.Equal(t, "a%3Fb@x.co,c&d@x.co,e%2Cf@x.co", to)
	assert.Equal(t, "Today's activity plan", subject)

	recipients := strings.Split(to, ",")
	require.Len(t, recipients, 3)
	for i, want := range []string{"a?b@x.co", "c&d@x.co", "e,f@x.co"} {
		got, err := url.PathUnescape(recipients[i])
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

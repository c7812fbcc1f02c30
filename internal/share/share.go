// Package share composes mailto links that hand plans and location alerts to
// the user's mail client.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/location"
	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/samber/lo"
)

var ErrNoRecipients = errors.New("no family emails configured")

type messages struct {
	planSubject  string
	planHeader   string
	noActivities string
	alertSubject string
	alertBody    string
}

var catalog = map[models.Language]messages{
	models.LanguageEnglish: {
		planSubject:  "Today's activity plan",
		planHeader:   "Here is today's plan:\n\n",
		noActivities: "No activities planned yet.",
		alertSubject: "I may need help - my current location",
		alertBody:    "I may need some help. My current location is latitude %.6f, longitude %.6f.\n\nOpen in maps: %s",
	},
	models.LanguageVietnamese: {
		planSubject:  "Kế hoạch hoạt động hôm nay",
		planHeader:   "Đây là kế hoạch hôm nay:\n\n",
		noActivities: "Chưa có hoạt động nào.",
		alertSubject: "Tôi có thể cần giúp đỡ - vị trí hiện tại của tôi",
		alertBody:    "Tôi có thể cần giúp đỡ. Vị trí hiện tại của tôi là vĩ độ %.6f, kinh độ %.6f.\n\nMở bản đồ: %s",
	},
}

func messagesFor(lang models.Language) messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[models.LanguageEnglish]
}

// PlanBody renders activities as "- HH:MM: name (description)" lines.
func PlanBody(activities []models.Activity, lang models.Language) string {
	m := messagesFor(lang)
	if len(activities) == 0 {
		return m.planHeader + m.noActivities
	}

	lines := make([]string, 0, len(activities))
	for _, activity := range activities {
		line := fmt.Sprintf("- %s: %s", activity.Time, activity.Name)
		if activity.Description != "" {
			line += fmt.Sprintf(" (%s)", activity.Description)
		}
		lines = append(lines, line)
	}
	return m.planHeader + strings.Join(lines, "\n")
}

// PlanMailto builds a mailto link sending the activity plan to emails.
func PlanMailto(emails []string, activities []models.Activity, lang models.Language) (string, error) {
	if len(emails) == 0 {
		return "", ErrNoRecipients
	}
	m := messagesFor(lang)
	return mailto(emails, m.planSubject, PlanBody(activities, lang)), nil
}

// LocationAlertMailto builds a mailto link telling family where the user is.
func LocationAlertMailto(emails []string, loc models.LocationInfo, lang models.Language) (string, error) {
	if len(emails) == 0 {
		return "", ErrNoRecipients
	}
	if err := loc.Validate(); err != nil {
		return "", err
	}
	m := messagesFor(lang)
	body := fmt.Sprintf(m.alertBody, loc.Latitude, loc.Longitude, location.MapsLink(loc))
	return mailto(emails, m.alertSubject, body), nil
}

func mailto(emails []string, subject, body string) string {
	// Spaces must be %20 rather than '+' for mail clients.
	encode := func(s string) string {
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	}
	recipients := lo.Map(emails, func(email string, _ int) string {
		return url.PathEscape(email)
	})
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		strings.Join(recipients, ","),
		encode(subject),
		encode(body),
	)
}

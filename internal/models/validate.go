package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidTime  = errors.New("invalid time of day")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail trims s and checks it has a local@domain.tld shape.
func ValidateEmail(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if !emailPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return trimmed, nil
}

// ParseTimeOfDay accepts H:MM or HH:MM on a 24 hour clock and returns HH:MM.
func ParseTimeOfDay(s string) (string, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hourPart) < 1 || len(hourPart) > 2 || len(minutePart) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || strings.ContainsAny(hourPart, "+-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || strings.ContainsAny(minutePart, "+-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FireTime is a wall-clock time of day with minute granularity.
type FireTime struct {
	Hour   int
	Minute int
}

// ParseFireTime parses "HH:MM" (24-hour) into a FireTime.
// Errors wrap ErrValidation.
func ParseFireTime(s string) (FireTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return FireTime{}, fmt.Errorf("%w: expected HH:MM, got %q", ErrValidation, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return FireTime{}, fmt.Errorf("%w: invalid hour in %q", ErrValidation, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return FireTime{}, fmt.Errorf("%w: invalid minute in %q", ErrValidation, s)
	}
	return FireTime{Hour: h, Minute: m}, nil
}

// String returns the canonical "HH:MM" form.
func (t FireTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight (0..1439).
func (t FireTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

// ParseScheduleCommand splits a schedule command payload "HH:MM | text"
// into its fire time and message body. The separator is mandatory and the
// body must be non-empty. Errors wrap ErrValidation.
func ParseScheduleCommand(payload string) (FireTime, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return FireTime{}, "", fmt.Errorf("%w: empty schedule payload", ErrValidation)
	}
	when, text, found := strings.Cut(payload, "|")
	if !found {
		return FireTime{}, "", fmt.Errorf("%w: missing | separator", ErrValidation)
	}
	ft, err := ParseFireTime(when)
	if err != nil {
		return FireTime{}, "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FireTime{}, "", fmt.Errorf("%w: empty message text", ErrValidation)
	}
	return ft, text, nil
}

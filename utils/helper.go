package utils

import (
	"fmt"
	"strings"
	"time"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			// if not exists in map, append it, otherwise do nothing
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// ParseWorkDate parses the YYYY-MM-DD dates the spreadsheet exports carry.
func ParseWorkDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseClock parses HH:MM into minutes since midnight. HH:MM:SS is
// tolerated; the seconds part is dropped, matching the converted sheets.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	var hh, mm int
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	return hh*60 + mm, nil
}

// ClockString renders minutes since midnight back to HH:MM.
func ClockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsValidClock reports whether s parses as HH:MM. Registered as the
// "clock" binding validator in main.
func IsValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

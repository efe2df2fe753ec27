// Package timegrid provides the minute-code arithmetic used for busy
// intervals and meeting windows. Clock times are "HH:MM" strings mapped to
// minutes since midnight; "24:00" is the end-of-day sentinel (1440). All
// intervals are half-open, so a range ending exactly when another starts
// does not overlap it.
package timegrid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EndOfDay is the minute code for the "24:00" sentinel.
const EndOfDay = 1440

var (
	// ErrBadClock is returned for times that are not HH:MM (or 24:00).
	ErrBadClock = errors.New("bad clock time")
	// ErrBadDate is returned for dates that are not YYYY-MM-DD.
	ErrBadDate = errors.New("bad date")
)

var (
	clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// kst is UTC+9. The bot serves a single friend group in Korea, so "today"
// always means today in Seoul no matter where the process runs.
var kst = time.FixedZone("KST", 9*60*60)

// IsClock reports whether t is a well-formed clock time.
func IsClock(t string) bool {
	return t == "24:00" || clockRe.MatchString(t)
}

// ToMinutes converts "HH:MM" to minutes since midnight. "24:00" maps to
// EndOfDay.
func ToMinutes(t string) (int, error) {
	if t == "24:00" {
		return EndOfDay, nil
	}
	if !clockRe.MatchString(t) {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, t)
	}
	h, _ := strconv.Atoi(t[:2])
	m, _ := strconv.Atoi(t[3:])
	return h*60 + m, nil
}

// FromMinutes converts a minute code back to "HH:MM", mapping EndOfDay to
// "24:00" so end boundaries round-trip.
func FromMinutes(n int) string {
	if n == EndOfDay {
		return "24:00"
	}
	return fmt.Sprintf("%02d:%02d", n/60, n%60)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one minute. Adjacent intervals do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return max(aStart, bStart) < min(aEnd, bEnd)
}

// ValidDate reports whether d is a plausible YYYY-MM-DD date.
func ValidDate(d string) bool {
	if !dateRe.MatchString(d) {
		return false
	}
	parts := strings.Split(d, "-")
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// Today returns the current date in KST as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.In(kst).Format("2006-01-02")
}

// ClockInKST returns the hour and minute of now in KST.
func ClockInKST(now time.Time) (hour, minute int) {
	t := now.In(kst)
	return t.Hour(), t.Minute()
}

// ParseDay resolves a user-supplied day into YYYY-MM-DD. An empty string,
// "today" or "오늘" is today (KST); "tomorrow" or "내일" is tomorrow.
func ParseDay(raw string, now time.Time) (string, error) {
	day := strings.TrimSpace(raw)
	switch strings.ToLower(day) {
	case "", "today", "오늘":
		return Today(now), nil
	case "tomorrow", "내일":
		return Today(now.Add(24 * time.Hour)), nil
	}
	if !ValidDate(day) {
		return "", fmt.Errorf("%w: %q", ErrBadDate, day)
	}
	return day, nil
}

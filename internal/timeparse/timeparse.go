// Package timeparse turns loosely-formatted natural-language date/time
// expressions ("tomorrow 10am", "Friday 9:30", "2026-03-15") into concrete
// instants. Wall-clock results with no explicit zone in the text are
// interpreted in the supplied location, then converted by callers as needed.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoTimeSignal is returned when the text contains no recognizable
// date or time expression. Callers treat the field as unset.
var ErrNoTimeSignal = errors.New("no date/time expression found")

var (
	isoDateRegex   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRegex = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	monthDayRegex  = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+(\d{1,2})\b`)
	weekdayRegex   = regexp.MustCompile(`(?i)\b(next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	relativeRegex  = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|yesterday|next\s+week)\b`)
	clockRegex     = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourRegex      = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
	namedTimeRegex = regexp.MustCompile(`(?i)\b(noon|midnight)\b`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse extracts the first date/time expression from text and resolves it
// against the current moment in loc. It fails with ErrNoTimeSignal rather
// than guessing when the text carries no date or time component at all.
func Parse(text string, loc *time.Location) (time.Time, error) {
	return ParseAt(text, loc, time.Now().In(loc))
}

// ParseAt is Parse with an explicit reference moment, for deterministic use.
func ParseAt(text string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	date, hasDate := findDate(text, now)
	hh, mm, hasTime := findTime(text)

	if !hasDate && !hasTime {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNoTimeSignal, text)
	}
	if !hasDate {
		// Time-only expressions resolve on the reference day.
		date = now
	}
	if !hasTime {
		hh, mm = 0, 0
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, loc), nil
}

// ToUTCISO renders an instant as ISO-8601 UTC with whole-second precision
// and a literal Z suffix (never a numeric offset).
func ToUTCISO(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

func findDate(text string, now time.Time) (time.Time, bool) {
	if m := isoDateRegex.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location()), true
	}
	if m := relativeRegex.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(collapseSpaces(m[1])) {
		case "today", "tonight":
			return now, true
		case "tomorrow":
			return now.AddDate(0, 0, 1), true
		case "yesterday":
			return now.AddDate(0, 0, -1), true
		case "next week":
			return now.AddDate(0, 0, 7), true
		}
	}
	if m := weekdayRegex.FindStringSubmatch(text); m != nil {
		target := weekdays[strings.ToLower(m[2])]
		days := int(target-now.Weekday()+7) % 7
		if m[1] != "" && days == 0 {
			// "next monday" on a Monday means a week out
			days = 7
		}
		return now.AddDate(0, 0, days), true
	}
	if m := monthDayRegex.FindStringSubmatch(text); m != nil {
		mo := months[strings.ToLower(m[1])[:3]]
		d, _ := strconv.Atoi(m[2])
		return time.Date(now.Year(), mo, d, 0, 0, 0, 0, now.Location()), true
	}
	if m := slashDateRegex.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		if mo < 1 || mo > 12 || d < 1 || d > 31 {
			return time.Time{}, false
		}
		y := now.Year()
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
		}
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

func findTime(text string) (hh, mm int, ok bool) {
	if m := clockRegex.FindStringSubmatch(text); m != nil {
		hh, _ = strconv.Atoi(m[1])
		mm, _ = strconv.Atoi(m[2])
		if hh > 23 || mm > 59 {
			return 0, 0, false
		}
		return adjustMeridiem(hh, m[3]), mm, true
	}
	if m := hourRegex.FindStringSubmatch(text); m != nil {
		hh, _ = strconv.Atoi(m[1])
		if hh > 12 {
			return 0, 0, false
		}
		return adjustMeridiem(hh, m[2]), 0, true
	}
	if m := namedTimeRegex.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "noon") {
			return 12, 0, true
		}
		return 0, 0, true
	}
	return 0, 0, false
}

func adjustMeridiem(hh int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hh < 12 {
			hh += 12
		}
	case "am":
		if hh == 12 {
			hh = 0
		}
	}
	return hh
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

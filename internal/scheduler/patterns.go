package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Last-resort extraction for when every completion provider is down.
// A handful of regex shapes cover the common "thing at time" phrasings.

const timeExpr = `(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`

var (
	andPattern   = regexp.MustCompile(`(\w+(?:\s+\w+)*?)\s+at\s+` + timeExpr + `\s+and\s+(\w+(?:\s+\w+)*?)\s+at\s+` + timeExpr)
	listPattern  = regexp.MustCompile(`(\w+(?:\s+\w+)*?)\s+at\s+` + timeExpr)
	singleShapes = []*regexp.Regexp{
		regexp.MustCompile(`(?:i have|got|scheduled|planning)\s+(?:a\s+)?(\w+(?:\s+\w+)*?)\s+at\s+` + timeExpr),
		regexp.MustCompile(`(\w+(?:\s+\w+)*?)\s+(?:appointment|meeting|call|session)\s+at\s+` + timeExpr),
		listPattern,
	}
	clockPattern  = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	fillerPattern = regexp.MustCompile(`\b(i have|got|scheduled|planning|a|an|the|and|then|also)\b`)
)

var titleCanon = []struct{ key, title string }{
	{"meeting", "Meeting"},
	{"lunch", "Lunch"},
	{"dinner", "Dinner"},
	{"gym", "Gym workout"},
	{"dentist", "Dentist appointment"},
	{"doctor", "Doctor appointment"},
	{"call", "Phone call"},
	{"conference", "Conference"},
	{"appointment", "Appointment"},
}

var weekdayWords = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseClock turns a loose time phrase into HH:MM. Without an am/pm
// marker an hour before 8 is assumed to be afternoon or evening.
func ParseClock(s string) (string, bool) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return "", false
	}

	switch m[3] {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		if hour < 8 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// CleanTitle strips filler words and canonicalizes well-known event kinds
func CleanTitle(title string) string {
	cleaned := strings.TrimSpace(fillerPattern.ReplaceAllString(strings.ToLower(title), ""))

	for _, c := range titleCanon {
		if strings.Contains(cleaned, c.key) {
			return c.title
		}
	}

	words := strings.Fields(cleaned)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// extractDate resolves today/tomorrow/weekday words, defaulting to today
func extractDate(lower string, today time.Time) string {
	if strings.Contains(lower, "today") {
		return today.Format(dateLayout)
	}
	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1).Format(dateLayout)
	}
	for word, wd := range weekdayWords {
		if strings.Contains(lower, word) {
			return NextWeekday(today, wd).Format(dateLayout)
		}
	}
	return today.Format(dateLayout)
}

// ExtractWithPatterns pulls events out of a message without any model,
// using regex shapes only. Returns nil when nothing matches.
func ExtractWithPatterns(message string, today time.Time) []EventDraft {
	lower := strings.ToLower(message)
	date := extractDate(lower, today)
	description := "Event created from: " + message

	var drafts []EventDraft
	add := func(title, clockPhrase string) {
		clock, ok := ParseClock(clockPhrase)
		if !ok {
			return
		}
		cleaned := CleanTitle(title)
		if cleaned == "" {
			return
		}
		for _, d := range drafts {
			if d.Title == cleaned && d.Time == clock {
				return
			}
		}
		drafts = append(drafts, NormalizeDraft(EventDraft{
			Title:       cleaned,
			Description: description,
			Date:        date,
			Time:        clock,
		}, today))
	}

	// "x at T and y at T"
	for _, m := range andPattern.FindAllStringSubmatch(lower, -1) {
		add(m[1], m[2])
		add(m[3], m[4])
	}

	// "x at T, y at T, z at T"
	if len(drafts) == 0 {
		matches := listPattern.FindAllStringSubmatch(lower, -1)
		if len(matches) > 1 {
			for _, m := range matches {
				add(m[1], m[2])
			}
		}
	}

	// Single event shapes, most specific first
	if len(drafts) == 0 {
		for _, shape := range singleShapes {
			matches := shape.FindAllStringSubmatch(lower, -1)
			if len(matches) == 0 {
				continue
			}
			for _, m := range matches {
				add(m[1], m[2])
			}
			break
		}
	}

	return drafts
}

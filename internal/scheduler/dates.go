package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	onDayPattern    = regexp.MustCompile(`\bon\s+(\d+)\b`)
	monthDayPattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\s+(\d+)\b`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func formatDate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ResolveDate corrects the model's date against explicit day references in
// the user's message. Models routinely answer "today" for a message like
// "dinner on 15"; when the proposed date is today and the message names a
// different day of the month, the date rolls forward to the next month
// that actually contains that day. Explicit month+day mentions always win,
// rolling to next year when the named date has already passed.
func ResolveDate(message, proposed string, today time.Time) string {
	lower := strings.ToLower(message)
	todayStr := today.Format(dateLayout)

	if m := onDayPattern.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		if proposed == todayStr && day != today.Day() && day >= 1 && day <= 31 {
			year, month := today.Year(), today.Month()

			// Past or impossible in the current month means next month
			if day < today.Day() || day > daysInMonth(year, month) {
				year, month = rollMonth(year, month)
			}
			// Skip a month that is too short for the named day
			if day > daysInMonth(year, month) {
				year, month = rollMonth(year, month)
			}
			if day <= daysInMonth(year, month) {
				return formatDate(year, month, day)
			}
		}
	}

	if m := monthDayPattern.FindStringSubmatch(lower); m != nil {
		month := monthNames[m[1]]
		day, _ := strconv.Atoi(m[2])

		year := today.Year()
		if month < today.Month() || (month == today.Month() && day < today.Day()) {
			year++
		}
		if day >= 1 && day <= daysInMonth(year, month) {
			return formatDate(year, month, day)
		}
	}

	return proposed
}

func rollMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// NextWeekday returns the next occurrence of the named weekday strictly
// after today. A weekday equal to today's means the same day next week.
func NextWeekday(today time.Time, weekday time.Weekday) time.Time {
	ahead := int(weekday) - int(today.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return today.AddDate(0, 0, ahead)
}

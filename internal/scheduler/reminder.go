package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReminderUnit is the unit component of a reminder lead time
type ReminderUnit string

const (
	UnitMinute ReminderUnit = "minute"
	UnitHour   ReminderUnit = "hour"
	UnitDay    ReminderUnit = "day"
	UnitWeek   ReminderUnit = "week"
)

// Reminder is a lead time before an event at which the user should be
// notified. It round-trips to the legacy string form ("15 minutes",
// "1 hour", "2 days") used in storage and on the wire.
type Reminder struct {
	Amount int
	Unit   ReminderUnit
}

// DefaultReminder is used when nothing about the event suggests otherwise
var DefaultReminder = Reminder{15, UnitMinute}

// String renders the legacy storage form, pluralizing the unit
func (r Reminder) String() string {
	unit := string(r.Unit)
	if r.Amount != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", r.Amount, unit)
}

// LeadTime converts the reminder into a duration before the event
func (r Reminder) LeadTime() time.Duration {
	switch r.Unit {
	case UnitMinute:
		return time.Duration(r.Amount) * time.Minute
	case UnitHour:
		return time.Duration(r.Amount) * time.Hour
	case UnitDay:
		return time.Duration(r.Amount) * 24 * time.Hour
	case UnitWeek:
		return time.Duration(r.Amount) * 7 * 24 * time.Hour
	}
	return 0
}

// ParseReminder reads the legacy string form. Unrecognized input falls
// back to the default lead time rather than failing.
func ParseReminder(s string) Reminder {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return DefaultReminder
	}
	amount, err := strconv.Atoi(fields[0])
	if err != nil || amount <= 0 {
		return DefaultReminder
	}
	switch strings.TrimSuffix(fields[1], "s") {
	case "minute", "min":
		return Reminder{amount, UnitMinute}
	case "hour", "hr":
		return Reminder{amount, UnitHour}
	case "day":
		return Reminder{amount, UnitDay}
	case "week":
		return Reminder{amount, UnitWeek}
	}
	return DefaultReminder
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// InferReminder derives a reminder lead time from the event's text and
// category. Rules are ordered by precedence: the first match wins. Each
// rule fires on its category or on keywords in the title; critical
// events also match on the description.
func InferReminder(title, description, category string) Reminder {
	t := strings.ToLower(title)
	desc := strings.ToLower(description)
	cat := strings.ToLower(category)

	switch {
	case containsAny(t+" "+desc, "flight", "interview", "exam", "surgery", "wedding", "deadline", "presentation"):
		return Reminder{1, UnitDay}
	case cat == "health" || containsAny(t, "doctor", "dentist", "hospital", "clinic", "appointment"):
		return Reminder{2, UnitHour}
	case cat == "work" || containsAny(t, "meeting", "conference", "call", "standup"):
		if containsAny(desc, "important", "urgent") {
			return Reminder{2, UnitHour}
		}
		return Reminder{1, UnitHour}
	case cat == "travel" || containsAny(t, "flight", "train", "bus", "trip", "travel"):
		return Reminder{4, UnitHour}
	case cat == "fitness" || containsAny(t, "gym", "workout", "exercise", "run", "yoga"):
		return Reminder{30, UnitMinute}
	case cat == "education" || containsAny(t, "class", "course", "study", "learn", "training"):
		return Reminder{30, UnitMinute}
	case cat == "social" || containsAny(t, "party", "dinner", "lunch", "hangout", "date"):
		return Reminder{1, UnitHour}
	case cat == "shopping" || containsAny(t, "shop", "buy", "grocery", "market"):
		return Reminder{1, UnitHour}
	case cat == "maintenance" || containsAny(t, "repair", "fix", "service", "maintenance"):
		return Reminder{2, UnitHour}
	case cat == "finance" || containsAny(t, "bank", "payment", "tax", "budget"):
		return Reminder{1, UnitHour}
	}
	return DefaultReminder
}

// ReminderDatetime computes the absolute trigger timestamp for an event
// at date (YYYY-MM-DD) and clock (HH:MM) in the civil timezone loc.
func ReminderDatetime(date, clock string, r Reminder, loc *time.Location) (*time.Time, error) {
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return nil, err
	}
	trigger := at.Add(-r.LeadTime())
	return &trigger, nil
}

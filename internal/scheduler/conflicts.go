package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scoutcal/scout/internal/repository"
)

// Two events closer together than this on the same day count as a clash
const conflictWindowMinutes = 120

// Conflict pairs an existing event with its distance from the candidate
type Conflict struct {
	Event      repository.Event
	GapMinutes int
}

func minuteOfDay(clock string) (int, bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// FindConflicts checks a candidate time against the existing events of the
// same day. Events whose time will not parse are skipped rather than
// flagged.
func FindConflicts(candidateTime string, existing []repository.Event) []Conflict {
	candidate, ok := minuteOfDay(candidateTime)
	if !ok {
		return nil
	}

	var conflicts []Conflict
	for _, ev := range existing {
		minute, ok := minuteOfDay(ev.Time)
		if !ok {
			continue
		}
		gap := candidate - minute
		if gap < 0 {
			gap = -gap
		}
		if gap <= conflictWindowMinutes {
			conflicts = append(conflicts, Conflict{Event: ev, GapMinutes: gap})
		}
	}
	return conflicts
}

// ConflictWarning builds the user-facing message describing the clash and
// asking for confirmation.
func ConflictWarning(title, date, clock string, conflicts []Conflict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Scheduling conflict detected for \"%s\" on %s at %s:\n", title, date, clock)
	for _, c := range conflicts {
		fmt.Fprintf(&b, "• \"%s\" at %s (%d minutes apart)\n", c.Event.Title, c.Event.Time, c.GapMinutes)
	}
	b.WriteString("Do you want to schedule it anyway?")
	return b.String()
}

package scheduler

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/scoutcal/scout/internal/errors"
)

// EventDraft is one event as extracted from a model response, before
// persistence. All fields are the wire strings the pipeline works with.
type EventDraft struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	ReminderSetting string `json:"reminder_setting"`
}

// Deletion identifies one stored event the model matched for removal
type Deletion struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

var (
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	adjacentObjs  = regexp.MustCompile(`\}\s*\{`)
	idField       = regexp.MustCompile(`"id"\s*:\s*(\d+)`)
)

// ExtractJSON cuts the JSON payload out of a raw model response. Models
// wrap JSON in markdown fences and prose; this strips the fences, bounds
// the payload by the outermost braces or brackets, and repairs the common
// breakages (literal newlines inside the payload, adjacent objects with a
// missing comma, trailing commas).
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", errors.ErrUnparsable
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return "", errors.ErrUnparsable
	}
	s = s[start : end+1]

	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = adjacentObjs.ReplaceAllString(s, "},{")
	s = trailingComma.ReplaceAllString(s, "$1")

	return s, nil
}

// categoryAliases maps loose model vocabulary onto the canonical category
// set. Unknown categories become "personal".
var categoryAliases = map[string]string{
	"work": "work", "business": "work", "office": "work", "job": "work",
	"personal": "personal", "misc": "personal", "other": "personal", "general": "personal",
	"health": "health", "medical": "health", "wellness": "health",
	"fitness": "fitness", "exercise": "fitness", "sport": "fitness", "sports": "fitness",
	"education": "education", "study": "education", "school": "education", "learning": "education",
	"social": "social", "family": "social", "friends": "social", "entertainment": "social",
	"travel": "travel", "trip": "travel", "vacation": "travel",
	"shopping": "shopping", "errands": "shopping", "errand": "shopping",
	"finance": "finance", "financial": "finance", "money": "finance", "bills": "finance",
	"maintenance": "maintenance", "chores": "maintenance", "chore": "maintenance",
	"household": "maintenance", "repair": "maintenance",
}

// CanonicalCategory folds a model-supplied category onto the canonical set
func CanonicalCategory(category string) string {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(category))]; ok {
		return c
	}
	return "personal"
}

// SanitizeTime enforces the HH:MM form. Placeholder answers ("TBD",
// empty, anything without a colon) become the 09:00 default; a
// single-digit hour is zero-padded.
func SanitizeTime(clock string) string {
	clock = strings.TrimSpace(clock)
	if clock == "" || strings.EqualFold(clock, "TBD") || !strings.Contains(clock, ":") {
		return "09:00"
	}
	if idx := strings.Index(clock, ":"); idx == 1 {
		clock = "0" + clock
	}
	return clock
}

// NormalizeDraft fills defaults for missing fields and sanitizes what is
// present. Today's date in the civil timezone backstops a missing date.
func NormalizeDraft(d EventDraft, today time.Time) EventDraft {
	if strings.TrimSpace(d.Title) == "" {
		d.Title = "Untitled Task"
	}
	if strings.TrimSpace(d.Description) == "" {
		d.Description = "No description provided"
	}
	d.Category = CanonicalCategory(d.Category)
	if strings.TrimSpace(d.Date) == "" {
		d.Date = today.Format(dateLayout)
	}
	d.Time = SanitizeTime(d.Time)
	if strings.TrimSpace(d.ReminderSetting) == "" {
		d.ReminderSetting = InferReminder(d.Title, d.Description, d.Category).String()
	}
	return d
}

// ParseDrafts reads a model response carrying either a bare array of
// events or an object with an "events" key, then normalizes every draft.
func ParseDrafts(raw string, today time.Time) ([]EventDraft, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var drafts []EventDraft
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
			return nil, errors.ErrUnparsable
		}
	} else {
		var wrapper struct {
			Events []EventDraft `json:"events"`
			Tasks  []EventDraft `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, errors.ErrUnparsable
		}
		drafts = wrapper.Events
		if drafts == nil {
			drafts = wrapper.Tasks
		}
	}

	for i := range drafts {
		drafts[i] = NormalizeDraft(drafts[i], today)
	}
	return drafts, nil
}

// ParseDeletions reads the deletion-matching response. When the payload
// will not parse even after repair, any "id": N fields found by regex are
// still honored; deletion is safe to over-approximate this way because
// ids are scoped to the requesting user.
func ParseDeletions(raw string) ([]Deletion, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		DeleteEvents []Deletion `json:"delete_events"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err == nil {
		return wrapper.DeleteEvents, nil
	}

	var deletions []Deletion
	for _, m := range idField.FindAllStringSubmatch(payload, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		deletions = append(deletions, Deletion{ID: id})
	}
	if deletions == nil {
		return nil, errors.ErrUnparsable
	}
	return deletions, nil
}

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutcal/scout/internal/errors"
)

func TestExtractJSONFences(t *testing.T) {
	raw := "```json\n{\"events\": [{\"title\": \"Lunch\"}]}\n```"
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events": [{"title": "Lunch"}]}`, got)
}

func TestExtractJSONProseAroundPayload(t *testing.T) {
	raw := `Sure! Here is your schedule: {"events": []} Let me know if you need more.`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"events": []}`, got)
}

func TestExtractJSONRepairs(t *testing.T) {
	// Missing comma between adjacent objects
	got, err := ExtractJSON(`[{"title": "A"} {"title": "B"}]`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title": "A"}, {"title": "B"}]`, got)

	// Trailing comma and literal newlines
	got, err = ExtractJSON("{\"events\": [\n{\"title\": \"A\"},\n]}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"events": [{"title": "A"}]}`, got)
}

func TestExtractJSONNoPayload(t *testing.T) {
	_, err := ExtractJSON("I could not find any events in your message.")
	assert.ErrorIs(t, err, errors.ErrUnparsable)

	_, err = ExtractJSON("unbalanced { only")
	assert.ErrorIs(t, err, errors.ErrUnparsable)
}

func TestCanonicalCategory(t *testing.T) {
	assert.Equal(t, "work", CanonicalCategory("Business"))
	assert.Equal(t, "fitness", CanonicalCategory("exercise"))
	assert.Equal(t, "maintenance", CanonicalCategory("chores"))
	assert.Equal(t, "social", CanonicalCategory("family"))
	assert.Equal(t, "personal", CanonicalCategory("quantum"))
	assert.Equal(t, "personal", CanonicalCategory(""))
}

func TestSanitizeTime(t *testing.T) {
	assert.Equal(t, "09:00", SanitizeTime("TBD"))
	assert.Equal(t, "09:00", SanitizeTime(""))
	assert.Equal(t, "09:00", SanitizeTime("morning"))
	assert.Equal(t, "09:30", SanitizeTime("9:30"))
	assert.Equal(t, "14:00", SanitizeTime("14:00"))
}

func TestNormalizeDraftDefaults(t *testing.T) {
	today := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	d := NormalizeDraft(EventDraft{}, today)
	assert.Equal(t, "Untitled Task", d.Title)
	assert.Equal(t, "No description provided", d.Description)
	assert.Equal(t, "personal", d.Category)
	assert.Equal(t, "2025-10-01", d.Date)
	assert.Equal(t, "09:00", d.Time)
	assert.Equal(t, "15 minutes", d.ReminderSetting)

	// Reminder inference uses the normalized category
	d = NormalizeDraft(EventDraft{Title: "Checkup", Category: "medical"}, today)
	assert.Equal(t, "health", d.Category)
	assert.Equal(t, "2 hours", d.ReminderSetting)
}

func TestParseDraftsObjectAndArrayForms(t *testing.T) {
	today := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	drafts, err := ParseDrafts(`{"events": [{"title": "Lunch", "date": "2025-10-02", "time": "13:00"}]}`, today)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Lunch", drafts[0].Title)
	assert.Equal(t, "13:00", drafts[0].Time)

	drafts, err = ParseDrafts(`[{"title": "Gym", "category": "fitness"}]`, today)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "30 minutes", drafts[0].ReminderSetting)

	drafts, err = ParseDrafts(`{"tasks": [{"title": "Study"}]}`, today)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Study", drafts[0].Title)
}

func TestParseDeletions(t *testing.T) {
	dels, err := ParseDeletions(`{"delete_events": [{"id": 7, "title": "Lunch"}]}`)
	require.NoError(t, err)
	require.Len(t, dels, 1)
	assert.Equal(t, int64(7), dels[0].ID)
	assert.Equal(t, "Lunch", dels[0].Title)
}

func TestParseDeletionsIDFallback(t *testing.T) {
	// Broken JSON but ids are still recoverable
	raw := `{"delete_events": [{"id": 3, "title": unquoted}]}`
	dels, err := ParseDeletions(raw)
	require.NoError(t, err)
	require.Len(t, dels, 1)
	assert.Equal(t, int64(3), dels[0].ID)
}

func TestParseDeletionsUnparsable(t *testing.T) {
	_, err := ParseDeletions("no structured content here")
	assert.ErrorIs(t, err, errors.ErrUnparsable)
}

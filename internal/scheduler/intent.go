package scheduler

import "strings"

// Intent is what the detection pass decided the user's message is asking for
type Intent string

const (
	IntentCreate   Intent = "EVENTS_FOUND"
	IntentDelete   Intent = "DELETE_EVENTS"
	IntentNone     Intent = "NO_EVENTS"
	IntentQuestion Intent = "QUESTION"
)

// ClassifyIntent reads the detection response. Models pad the label with
// prose, so this is a substring match; deletion is checked first because
// a verbose answer can mention both labels.
func ClassifyIntent(response string) Intent {
	switch {
	case strings.Contains(response, string(IntentDelete)):
		return IntentDelete
	case strings.Contains(response, string(IntentNone)):
		return IntentNone
	case strings.Contains(response, string(IntentQuestion)):
		return IntentQuestion
	case strings.Contains(response, string(IntentCreate)):
		return IntentCreate
	}
	return IntentNone
}

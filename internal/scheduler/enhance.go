package scheduler

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Enhancement is the model's improved description and category for a task
type Enhancement struct {
	Description string `json:"enhanced_description"`
	Category    string `json:"enhanced_category"`
}

// ParseEnhancement reads the enhancement response. The enhanced result is
// only accepted when it actually says more than the original; otherwise
// the deterministic fallback applies.
func ParseEnhancement(raw, originalDescription string) (Enhancement, bool) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return Enhancement{}, false
	}

	var e Enhancement
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Enhancement{}, false
	}
	if e.Description == "" || e.Category == "" {
		return Enhancement{}, false
	}

	if len(strings.Fields(e.Description)) < len(strings.Fields(originalDescription)) ||
		len(e.Description) <= len(originalDescription) {
		return Enhancement{}, false
	}

	e.Category = CanonicalCategory(e.Category)
	return e, true
}

// FallbackEnhancement improves a task description without any model:
// prefix the title when missing, append category-specific prep notes and
// a duration estimate.
func FallbackEnhancement(title, description, category string) string {
	enhanced := description
	if !strings.Contains(strings.ToLower(description), strings.ToLower(title)) {
		enhanced = fmt.Sprintf("%s: %s", title, description)
	}

	lowerTitle := strings.ToLower(title)
	lowerEnhanced := strings.ToLower(enhanced)

	switch CanonicalCategory(category) {
	case "fitness":
		if !strings.Contains(lowerEnhanced, "workout") && !strings.Contains(lowerEnhanced, "exercise") {
			enhanced += ". Remember to bring water bottle and towel for the workout session."
		}
	case "work":
		if strings.Contains(lowerTitle, "meeting") || strings.Contains(lowerEnhanced, "meeting") {
			enhanced += ". Prepare agenda items and review relevant materials beforehand."
		}
	case "health":
		if strings.Contains(lowerEnhanced, "appointment") {
			enhanced += ". Bring insurance card and list of current medications."
		}
	case "shopping":
		enhanced += ". Make a list of needed items and check for any available discounts."
	case "travel":
		enhanced += ". Verify all necessary documents and bookings are ready."
	}

	if !strings.Contains(enhanced, "minute") && !strings.Contains(enhanced, "hour") {
		switch CanonicalCategory(category) {
		case "fitness":
			enhanced += " (Estimated duration: 1 hour)"
		case "work":
			if strings.Contains(lowerTitle, "meeting") {
				enhanced += " (Estimated duration: 30-60 minutes)"
			}
		case "health":
			enhanced += " (Plan for 30 minutes plus travel time)"
		}
	}

	return enhanced
}

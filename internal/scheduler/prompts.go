package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/scoutcal/scout/internal/repository"
)

// Prompt builders for every completion pass. Each takes the civil "now"
// so date anchoring is deterministic and testable.

const promptDateLayout = "Monday, 2006-01-02"

func generationPrompt(prompt string, now time.Time) string {
	today := now.Format(promptDateLayout)
	date := now.Format(dateLayout)
	return fmt.Sprintf(`You are an intelligent task scheduler. Today is %s and current time is %s.

Based on this user prompt: "%s"

Generate a comprehensive list of calendar events/tasks in JSON format. Each task MUST have ALL these fields:
- title: Clear, concise task title
- description: Detailed, actionable description with context
- date: Date in YYYY-MM-DD format (use %s if not specified)
- time: Time in HH:MM format (24-hour, use appropriate default times)
- category: Choose from: work, personal, health, fitness, education, shopping, social, travel, maintenance, finance
- reminder_setting: Intelligent reminder based on task importance and type

REMINDER SETTING RULES:
- Important meetings/appointments: "1 hour" or "2 hours"
- Medical appointments: "2 hours" (need time to prepare/travel)
- Work tasks/deadlines: "1 day" or "4 hours"
- Gym/fitness: "30 minutes"
- Social events: "1 hour" or "30 minutes"
- Travel/flights: "4 hours" or "1 day"
- Education/learning: "30 minutes"
- Shopping/errands: "1 hour"
- Personal tasks: "15 minutes" or "30 minutes"
- Maintenance/repairs: "2 hours"

TIME DEFAULTS if not specified:
- Morning activities: 09:00
- Work meetings: 10:00, 14:00
- Lunch: 12:30
- Gym/fitness: 07:00 or 18:00
- Dinner: 19:30
- Medical appointments: 10:00 or 15:00
- Social events: 19:00

CRITICAL: Return ONLY the JSON array, no additional text or formatting.`,
		today, now.Format("15:04"), prompt, date)
}

func detectionPrompt(message string, now time.Time) string {
	return fmt.Sprintf(`You are an AI assistant that determines if a user message contains calendar events or event operations.

Today is %s.

User message: "%s"

Events include: meetings, appointments, calls, lunch, dinner, workouts, classes, etc.
Deletion keywords: cancel, delete, remove, clear, cancel my, remove my, delete my, etc.

NOT events: questions, help requests, general conversation, reminders without specific events

Respond with ONLY one of these:
- "EVENTS_FOUND" if the message contains events to schedule
- "DELETE_EVENTS" if the message contains requests to delete/cancel events
- "NO_EVENTS" if no events are found
- "QUESTION" if it's a question or help request`,
		now.Format(promptDateLayout), message)
}

func extractionPrompt(message string, now time.Time) string {
	return fmt.Sprintf(`You are an AI assistant that extracts event details from user messages.

Today is %s.
Current time: %s

User message: "%s"

Extract ALL events mentioned in this message. For each event determine:
1. Title (what is the event)
2. Description (brief relevant description with context)
3. Category (choose from: work, personal, health, fitness, education, shopping, social, travel, maintenance, finance)
4. Date (convert relative dates like "tomorrow", "next week" to YYYY-MM-DD format)
5. Time (MUST be in HH:MM format, NEVER use "TBD")
6. Reminder setting (default "15 minutes" unless specified)

Rules:
- If no date specified, assume today (%s)
- If no time specified, ALWAYS use "09:00" as default (NEVER use "TBD" or empty time)
- Handle multiple events in one message
- Convert times like "2pm" to "14:00"
- For "on [number]", interpret as that EXACT day number of the current or next month
- NEVER use today's date unless the user says "today"
- Use "health" for doctor/dentist appointments
- Use "fitness" for gym/workout activities
- Use "education" for school, class, learning events

Respond with ONLY this JSON format:
{
    "events": [
        {
            "title": "Event Title",
            "description": "Detailed description with context",
            "category": "work",
            "date": "YYYY-MM-DD",
            "time": "HH:MM",
            "reminder_setting": "15 minutes"
        }
    ]
}`,
		now.Format(promptDateLayout), now.Format("15:04"), message, now.Format(dateLayout))
}

func deletionPrompt(message string, events []repository.Event, now time.Time) string {
	var ctx strings.Builder
	ctx.WriteString("Current events:\n")
	for _, ev := range events {
		fmt.Fprintf(&ctx, "ID %d: %s - %s at %s\n", ev.ID, ev.Title, ev.Date, ev.Time)
	}

	return fmt.Sprintf(`You are an AI assistant that identifies which events to delete based on user requests.

Today is %s.

User message: "%s"

%s
The user wants to delete/cancel events. Based on their message, determine which events should be deleted.

IMPORTANT: Use the actual database ID numbers shown above.

Consider:
- Specific titles mentioned
- Time references (today, tomorrow, this week)
- Event types (meeting, appointment, etc.)
- Partial matches (user says "cancel meeting" matches any event with "meeting" in title)

Respond with ONLY this JSON format using the ACTUAL database IDs:
{
    "delete_events": [
        {
            "id": actual_database_id_number,
            "title": "Event Title",
            "reason": "Why this event matches the deletion request"
        }
    ]
}

If no events match the deletion criteria, respond with:
{"delete_events": []}`,
		now.Format(promptDateLayout), message, ctx.String())
}

func chatSystemPrompt(scheduleContext string, now time.Time) string {
	return fmt.Sprintf(`You are Scout, a friendly and professional AI assistant.
Your goal is to help users organize their work, plan tasks, and manage schedules effectively.

IMPORTANT: You have AUTOMATIC event detection enabled. When users mention events naturally in conversation
(like "I have a meeting at 10am and lunch at 1pm tomorrow"), you automatically create them in their calendar.

- Be concise, encouraging, and clear in your responses.
- When asked to generate lists, always use markdown bullet points.
- Use the current date of %s for any time-related questions.
- You can handle multiple events in a single message automatically.

---
CURRENT SCHEDULE:
%s
---`,
		now.Format(promptDateLayout), scheduleContext)
}

func enhancementPrompt(title, description, category string) string {
	return fmt.Sprintf(`You are a professional productivity assistant. Enhance this task data to make it extremely useful, actionable, and well-organized:

Title: "%s"
Description: "%s"
Category: "%s"

TASK: Create an enhanced version that is:
1. MORE DETAILED: Add specific, actionable details that make the task clearer
2. MORE PROFESSIONAL: Use clear, concise, professional language
3. MORE HELPFUL: Include context, tips, or important reminders when relevant
4. MORE STRUCTURED: Organize information logically

CATEGORY VALIDATION:
Choose the MOST APPROPRIATE category from these options:
work, personal, health, fitness, education, shopping, social, travel, maintenance, finance

Return ONLY a JSON object with this exact format:
{
    "enhanced_description": "detailed, actionable, and professional description here",
    "enhanced_category": "most_appropriate_category_here"
}`,
		title, description, category)
}

// scheduleContext renders the user's next-7-days events for the chat
// system prompt.
func scheduleContext(events []repository.Event) string {
	if len(events) == 0 {
		return "The user's schedule for the next 7 days is clear."
	}
	var b strings.Builder
	b.WriteString("Here is the user's schedule for the next 7 days:\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "- On %s at %s: %s\n", ev.Date, ev.Time, ev.Title)
	}
	return b.String()
}

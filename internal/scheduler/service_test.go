package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutcal/scout/internal/errors"
	"github.com/scoutcal/scout/internal/repository"
	"github.com/scoutcal/scout/pkg/llm"
)

var testLoc = time.FixedZone("UTC+05:30", 330*60)

func fixedNow() time.Time {
	// Wednesday 2025-10-01 10:00 IST
	return time.Date(2025, 10, 1, 10, 0, 0, 0, testLoc)
}

// fakeAI routes each completion to a handler chosen by prompt content
type fakeAI struct {
	handler func(req llm.CompletionRequest) (string, error)
}

func (f *fakeAI) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	return f.handler(req)
}

func downAI() *fakeAI {
	return &fakeAI{handler: func(llm.CompletionRequest) (string, error) {
		return "", llm.ErrAllUnavailable
	}}
}

// fakeEventStore keeps events in memory
type fakeEventStore struct {
	events []repository.Event
	nextID int64
}

func (f *fakeEventStore) Create(_ context.Context, ev repository.Event) (int64, error) {
	f.nextID++
	ev.ID = f.nextID
	f.events = append(f.events, ev)
	return ev.ID, nil
}

func (f *fakeEventStore) CreateBatch(ctx context.Context, events []repository.Event) ([]int64, error) {
	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		id, _ := f.Create(ctx, ev)
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeEventStore) ListAll(_ context.Context, userID string) ([]repository.Event, error) {
	var out []repository.Event
	for _, ev := range f.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) ListOnDate(_ context.Context, userID, date string) ([]repository.Event, error) {
	var out []repository.Event
	for _, ev := range f.events {
		if ev.UserID == userID && ev.Date == date && !ev.Done {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) ListUpcoming(_ context.Context, userID, fromDate string, limit int) ([]repository.Event, error) {
	var out []repository.Event
	for _, ev := range f.events {
		if ev.UserID == userID && ev.Date >= fromDate && !ev.Done {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventStore) ListBetween(_ context.Context, userID, fromDate, toDate string) ([]repository.Event, error) {
	var out []repository.Event
	for _, ev := range f.events {
		if ev.UserID == userID && ev.Date >= fromDate && ev.Date <= toDate && !ev.Done {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeEventStore) Delete(_ context.Context, userID string, eventID int64) (int64, error) {
	for i, ev := range f.events {
		if ev.ID == eventID && ev.UserID == userID {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// fakeProposalStore keeps proposals in memory
type fakeProposalStore struct {
	proposals map[string]repository.Proposal
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{proposals: make(map[string]repository.Proposal)}
}

func (f *fakeProposalStore) Put(_ context.Context, userID string, event repository.Event, warning string) (string, error) {
	id := uuid.New().String()
	f.proposals[userID+"/"+id] = repository.Proposal{ID: id, UserID: userID, Event: event, Warning: warning}
	return id, nil
}

func (f *fakeProposalStore) Get(_ context.Context, userID, id string) (*repository.Proposal, error) {
	p, ok := f.proposals[userID+"/"+id]
	if !ok {
		return nil, errors.ErrProposalNotFound
	}
	return &p, nil
}

func (f *fakeProposalStore) Remove(_ context.Context, userID, id string) error {
	delete(f.proposals, userID+"/"+id)
	return nil
}

func newTestService(ai llm.Completer, events *fakeEventStore, proposals *fakeProposalStore) *Service {
	return NewService(ai, events, proposals, testLoc, zerolog.Nop()).
		WithNow(fixedNow)
}

func schedulingAI(t *testing.T, extractionJSON string) *fakeAI {
	t.Helper()
	return &fakeAI{handler: func(req llm.CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "determines if a user message"):
			return "EVENTS_FOUND", nil
		case strings.Contains(req.Prompt, "extracts event details"):
			return extractionJSON, nil
		case req.System != "":
			return "You're all set!", nil
		}
		t.Fatalf("unexpected completion request: %q", req.Prompt)
		return "", nil
	}}
}

func TestChatCreatesEvent(t *testing.T) {
	events := &fakeEventStore{}
	ai := schedulingAI(t, `{"events": [{"title": "Doctor appointment", "description": "Visit the clinic", "category": "health", "date": "2025-10-02", "time": "14:00"}]}`)
	svc := newTestService(ai, events, newFakeProposalStore())

	result, err := svc.Chat(context.Background(), "user-1", "doctor appointment tomorrow at 2pm")
	require.NoError(t, err)

	assert.True(t, result.EventsCreated)
	assert.False(t, result.ConflictDetected)
	assert.Contains(t, result.Reply, "Successfully created 1 event(s)")
	assert.Contains(t, result.Reply, "You're all set!")

	require.Len(t, events.events, 1)
	ev := events.events[0]
	assert.Equal(t, "user-1", ev.UserID)
	assert.Equal(t, "Doctor appointment", ev.Title)
	assert.Equal(t, "health", ev.Category)
	assert.Equal(t, "2025-10-02", ev.Date)
	assert.Equal(t, "14:00", ev.Time)
	assert.Equal(t, "2 hours", ev.ReminderSetting)
	require.NotNil(t, ev.ReminderDatetime)
	assert.Equal(t, time.Date(2025, 10, 2, 12, 0, 0, 0, testLoc), *ev.ReminderDatetime)
}

func TestChatCorrectsDateFromMessage(t *testing.T) {
	events := &fakeEventStore{}
	// Model ignored "on 15" and answered today
	ai := schedulingAI(t, `{"events": [{"title": "Dinner", "category": "social", "date": "2025-10-01", "time": "19:00"}]}`)
	svc := newTestService(ai, events, newFakeProposalStore())

	result, err := svc.Chat(context.Background(), "user-1", "dinner on 15")
	require.NoError(t, err)

	assert.True(t, result.EventsCreated)
	require.Len(t, events.events, 1)
	assert.Equal(t, "2025-10-15", events.events[0].Date)
}

func TestChatConflictBecomesProposal(t *testing.T) {
	events := &fakeEventStore{}
	proposals := newFakeProposalStore()
	_, err := events.Create(context.Background(), repository.Event{
		UserID: "user-1", Title: "Standup", Date: "2025-10-02", Time: "13:00",
	})
	require.NoError(t, err)

	ai := schedulingAI(t, `{"events": [{"title": "Client demo", "category": "work", "date": "2025-10-02", "time": "14:00"}]}`)
	svc := newTestService(ai, events, proposals)

	result, err := svc.Chat(context.Background(), "user-1", "client demo tomorrow at 2pm")
	require.NoError(t, err)

	assert.False(t, result.EventsCreated)
	assert.True(t, result.ConflictDetected)
	assert.NotEmpty(t, result.ProposalID)
	assert.Contains(t, result.Reply, "Standup")
	assert.Contains(t, result.Reply, "60 minutes apart")

	// Nothing persisted beyond the pre-existing event
	require.Len(t, events.events, 1)

	// Confirming the proposal persists the held event and removes the proposal
	ev, err := svc.ConfirmProposal(context.Background(), "user-1", result.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, "Client demo", ev.Title)
	require.Len(t, events.events, 2)

	_, err = svc.ConfirmProposal(context.Background(), "user-1", result.ProposalID)
	assert.ErrorIs(t, err, errors.ErrProposalNotFound)
}

func TestDeclineProposal(t *testing.T) {
	events := &fakeEventStore{}
	proposals := newFakeProposalStore()
	svc := newTestService(downAI(), events, proposals)

	id, err := proposals.Put(context.Background(), "user-1", repository.Event{Title: "Held"}, "warning")
	require.NoError(t, err)

	require.NoError(t, svc.DeclineProposal(context.Background(), "user-1", id))
	assert.Empty(t, events.events)

	err = svc.DeclineProposal(context.Background(), "user-1", id)
	assert.ErrorIs(t, err, errors.ErrProposalNotFound)

	// Proposals are scoped to their owner
	id, err = proposals.Put(context.Background(), "user-1", repository.Event{Title: "Held"}, "warning")
	require.NoError(t, err)
	err = svc.DeclineProposal(context.Background(), "user-2", id)
	assert.ErrorIs(t, err, errors.ErrProposalNotFound)
}

func TestChatDeletesEvents(t *testing.T) {
	events := &fakeEventStore{}
	_, err := events.Create(context.Background(), repository.Event{
		UserID: "user-1", Title: "Team meeting", Date: "2025-10-03", Time: "10:00",
	})
	require.NoError(t, err)
	_, err = events.Create(context.Background(), repository.Event{
		UserID: "user-1", Title: "Lunch", Date: "2025-10-03", Time: "13:00",
	})
	require.NoError(t, err)

	ai := &fakeAI{handler: func(req llm.CompletionRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "determines if a user message"):
			return "DELETE_EVENTS", nil
		case strings.Contains(req.Prompt, "identifies which events to delete"):
			assert.Contains(t, req.Prompt, "ID 1: Team meeting")
			return `{"delete_events": [{"id": 1, "title": "Team meeting"}]}`, nil
		}
		return "", llm.ErrAllUnavailable
	}}
	svc := newTestService(ai, events, newFakeProposalStore())

	result, err := svc.Chat(context.Background(), "user-1", "cancel my meeting")
	require.NoError(t, err)

	assert.Contains(t, result.Reply, "deleted 1 event(s)")
	assert.Contains(t, result.Reply, "Team meeting")
	require.Len(t, events.events, 1)
	assert.Equal(t, "Lunch", events.events[0].Title)
}

func TestChatDeletionIgnoresUnknownIDs(t *testing.T) {
	events := &fakeEventStore{}
	_, err := events.Create(context.Background(), repository.Event{
		UserID: "user-1", Title: "Lunch", Date: "2025-10-03", Time: "13:00",
	})
	require.NoError(t, err)

	ai := &fakeAI{handler: func(req llm.CompletionRequest) (string, error) {
		if strings.Contains(req.Prompt, "determines if a user message") {
			return "DELETE_EVENTS", nil
		}
		// Hallucinated id that was never shown to the model
		return `{"delete_events": [{"id": 999, "title": "Ghost"}]}`, nil
	}}
	svc := newTestService(ai, events, newFakeProposalStore())

	result, err := svc.Chat(context.Background(), "user-1", "cancel my ghost event")
	require.NoError(t, err)
	assert.Contains(t, result.Reply, "No matching events")
	require.Len(t, events.events, 1)
}

func TestChatQuestionReply(t *testing.T) {
	events := &fakeEventStore{}
	_, err := events.Create(context.Background(), repository.Event{
		UserID: "user-1", Title: "Standup", Date: "2025-10-02", Time: "10:00",
	})
	require.NoError(t, err)

	ai := &fakeAI{handler: func(req llm.CompletionRequest) (string, error) {
		if strings.Contains(req.Prompt, "determines if a user message") {
			return "QUESTION", nil
		}
		// The reply pass must carry the schedule as system context
		assert.Contains(t, req.System, "Standup")
		return "You have a standup tomorrow at 10:00.", nil
	}}
	svc := newTestService(ai, events, newFakeProposalStore())

	result, err := svc.Chat(context.Background(), "user-1", "what's on my schedule this week?")
	require.NoError(t, err)
	assert.False(t, result.EventsCreated)
	assert.Equal(t, "You have a standup tomorrow at 10:00.", result.Reply)
}

func TestChatPatternFallbackWhenProvidersDown(t *testing.T) {
	events := &fakeEventStore{}
	svc := newTestService(downAI(), events, newFakeProposalStore())

	result, err := svc.Chat(context.Background(), "user-1", "gym at 7am and dentist at 9am tomorrow")
	require.NoError(t, err)

	assert.True(t, result.EventsCreated)
	assert.Contains(t, result.Reply, "Successfully created 2 event(s)")

	require.Len(t, events.events, 2)
	assert.Equal(t, "Gym workout", events.events[0].Title)
	assert.Equal(t, "07:00", events.events[0].Time)
	assert.Equal(t, "2025-10-02", events.events[0].Date)
	assert.Equal(t, "Dentist appointment", events.events[1].Title)
	assert.Equal(t, "09:00", events.events[1].Time)
}

func TestChatProvidersDownNoPatterns(t *testing.T) {
	svc := newTestService(downAI(), &fakeEventStore{}, newFakeProposalStore())

	_, err := svc.Chat(context.Background(), "user-1", "what should I do this week?")
	assert.ErrorIs(t, err, errors.ErrAIUnavailable)
}

func TestChatValidation(t *testing.T) {
	svc := newTestService(downAI(), &fakeEventStore{}, newFakeProposalStore())

	_, err := svc.Chat(context.Background(), "", "hello")
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)

	_, err = svc.Chat(context.Background(), "user-1", "  ")
	require.True(t, errors.As(err, &appErr))
}

func TestGenerateTasks(t *testing.T) {
	ai := &fakeAI{handler: func(req llm.CompletionRequest) (string, error) {
		assert.Contains(t, req.Prompt, "intelligent task scheduler")
		return "```json\n[{\"title\": \"Team Meeting\", \"category\": \"work\", \"date\": \"2025-10-01\", \"time\": \"10:00\"}]\n```", nil
	}}
	svc := newTestService(ai, &fakeEventStore{}, newFakeProposalStore())

	drafts, err := svc.GenerateTasks(context.Background(), "plan my workday")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Team Meeting", drafts[0].Title)
	assert.Equal(t, "1 hour", drafts[0].ReminderSetting)
	assert.Equal(t, "No description provided", drafts[0].Description)
}

func TestGenerateTasksUnavailable(t *testing.T) {
	svc := newTestService(downAI(), &fakeEventStore{}, newFakeProposalStore())

	_, err := svc.GenerateTasks(context.Background(), "plan my workday")
	assert.ErrorIs(t, err, errors.ErrAIUnavailable)

	_, err = svc.GenerateTasks(context.Background(), "")
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
}

func TestAddTaskEnhanced(t *testing.T) {
	events := &fakeEventStore{}
	ai := &fakeAI{handler: func(req llm.CompletionRequest) (string, error) {
		return `{"enhanced_description": "Complete 60-minute full-body workout including cardio warm-up and strength training. Bring water bottle and towel.", "enhanced_category": "fitness"}`, nil
	}}
	svc := newTestService(ai, events, newFakeProposalStore())

	created, err := svc.AddTask(context.Background(), "user-1", TaskInput{
		Title:           "Gym Session",
		Description:     "Go to gym",
		Category:        "fitness",
		Date:            "2025-10-02",
		Time:            "18:00",
		ReminderSetting: "30 minutes",
	})
	require.NoError(t, err)

	assert.True(t, created.AIEnhanced)
	assert.Contains(t, created.Event.Description, "full-body workout")
	assert.Equal(t, "fitness", created.Event.Category)
	require.NotNil(t, created.Event.ReminderDatetime)
	assert.Equal(t, time.Date(2025, 10, 2, 17, 30, 0, 0, testLoc), *created.Event.ReminderDatetime)
	require.Len(t, events.events, 1)
}

func TestAddTaskFallbackEnhancement(t *testing.T) {
	events := &fakeEventStore{}
	svc := newTestService(downAI(), events, newFakeProposalStore())

	created, err := svc.AddTask(context.Background(), "user-1", TaskInput{
		Title:           "Gym Session",
		Description:     "Go to gym",
		Category:        "fitness",
		Date:            "2025-10-02",
		Time:            "18:00",
		ReminderSetting: "30 minutes",
	})
	require.NoError(t, err)

	assert.False(t, created.AIEnhanced)
	assert.Contains(t, created.Event.Description, "Gym Session: Go to gym")
	assert.Contains(t, created.Event.Description, "water bottle")
}

func TestAddTaskValidation(t *testing.T) {
	svc := newTestService(downAI(), &fakeEventStore{}, newFakeProposalStore())

	_, err := svc.AddTask(context.Background(), "user-1", TaskInput{Title: "Only title"})
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Contains(t, appErr.Details, "description")
	assert.Contains(t, appErr.Details, "reminder_setting")

	_, err = svc.AddTask(context.Background(), "user-1", TaskInput{
		Title:           "Bad date",
		Description:     "x",
		Category:        "personal",
		Date:            "02-10-2025",
		Time:            "18:00",
		ReminderSetting: "15 minutes",
	})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
}

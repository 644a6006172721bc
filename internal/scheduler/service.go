package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scoutcal/scout/internal/errors"
	"github.com/scoutcal/scout/internal/repository"
	"github.com/scoutcal/scout/pkg/llm"
)

// EventStore is the persistence surface the service needs for events
type EventStore interface {
	Create(ctx context.Context, ev repository.Event) (int64, error)
	CreateBatch(ctx context.Context, events []repository.Event) ([]int64, error)
	ListAll(ctx context.Context, userID string) ([]repository.Event, error)
	ListOnDate(ctx context.Context, userID, date string) ([]repository.Event, error)
	ListUpcoming(ctx context.Context, userID, fromDate string, limit int) ([]repository.Event, error)
	ListBetween(ctx context.Context, userID, fromDate, toDate string) ([]repository.Event, error)
	Delete(ctx context.Context, userID string, eventID int64) (int64, error)
}

// ProposalStore holds pending conflict proposals awaiting confirmation
type ProposalStore interface {
	Put(ctx context.Context, userID string, event repository.Event, warning string) (string, error)
	Get(ctx context.Context, userID, id string) (*repository.Proposal, error)
	Remove(ctx context.Context, userID, id string) error
}

// Service runs the scheduling pipeline: completion passes, response
// normalization, date and conflict resolution, and persistence.
type Service struct {
	ai        llm.Completer
	events    EventStore
	proposals ProposalStore
	loc       *time.Location
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates a scheduling service
func NewService(ai llm.Completer, events EventStore, proposals ProposalStore, loc *time.Location, logger zerolog.Logger) *Service {
	return &Service{
		ai:        ai,
		events:    events,
		proposals: proposals,
		loc:       loc,
		now:       time.Now,
		log:       logger,
	}
}

// WithNow overrides the clock, for tests
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) civilNow() time.Time {
	return s.now().In(s.loc)
}

// ChatResult is the outcome of one chat turn
type ChatResult struct {
	Reply            string
	EventsCreated    bool
	CreationMessage  string
	ConflictDetected bool
	ProposalID       string
}

// TaskInput is a fully specified task submitted for creation
type TaskInput struct {
	Title           string
	Description     string
	Category        string
	Date            string
	Time            string
	ReminderSetting string
}

// CreatedTask is the persisted result of AddTask
type CreatedTask struct {
	Event      repository.Event
	AIEnhanced bool
}

// GenerateTasks turns a free-form prompt into a list of normalized event
// drafts. Nothing is persisted; the caller reviews the drafts first.
func (s *Service) GenerateTasks(ctx context.Context, prompt string) ([]EventDraft, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.BadRequest("prompt is required")
	}

	now := s.civilNow()
	raw, err := s.ai.Complete(ctx, llm.CompletionRequest{
		Prompt:      generationPrompt(prompt, now),
		MaxTokens:   1000,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, errors.ErrAIUnavailable
	}

	drafts, err := ParseDrafts(raw, now)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, errors.ErrUnparsable
	}
	return drafts, nil
}

// Chat processes one conversational message: detects intent, creates or
// deletes events accordingly, and produces an assistant reply grounded in
// the user's upcoming schedule. When every provider is down the
// pattern-based extractor still handles plain "thing at time" messages.
func (s *Service) Chat(ctx context.Context, userID, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" || strings.TrimSpace(userID) == "" {
		return nil, errors.BadRequest("message and user_id are required")
	}

	now := s.civilNow()

	detection, err := s.ai.Complete(ctx, llm.CompletionRequest{
		Prompt:      detectionPrompt(message, now),
		MaxTokens:   20,
		Temperature: 0.1,
	})
	if err != nil {
		return s.chatWithoutProviders(ctx, userID, message, now)
	}

	switch ClassifyIntent(detection) {
	case IntentDelete:
		return s.handleDeletion(ctx, userID, message, now)
	case IntentCreate:
		return s.handleCreation(ctx, userID, message, now)
	default:
		reply, err := s.chatReply(ctx, userID, message, now)
		if err != nil {
			return nil, err
		}
		return &ChatResult{Reply: reply}, nil
	}
}

// chatWithoutProviders is the degraded path: regex extraction only. A
// message that yields no events cannot be answered at all.
func (s *Service) chatWithoutProviders(ctx context.Context, userID, message string, now time.Time) (*ChatResult, error) {
	drafts := ExtractWithPatterns(message, now)
	if len(drafts) == 0 {
		return nil, errors.ErrAIUnavailable
	}

	s.log.Warn().Str("user_id", userID).Int("events", len(drafts)).
		Msg("providers unavailable, using pattern extraction")

	result, err := s.persistDrafts(ctx, userID, drafts)
	if err != nil {
		return nil, err
	}
	if result.ConflictDetected {
		return result, nil
	}
	result.Reply = result.CreationMessage
	return result, nil
}

func (s *Service) handleCreation(ctx context.Context, userID, message string, now time.Time) (*ChatResult, error) {
	raw, err := s.ai.Complete(ctx, llm.CompletionRequest{
		Prompt:      extractionPrompt(message, now),
		MaxTokens:   500,
		Temperature: 0.1,
	})
	if err != nil {
		return s.chatWithoutProviders(ctx, userID, message, now)
	}

	drafts, err := ParseDrafts(raw, now)
	if err != nil || len(drafts) == 0 {
		// The model said events exist but produced nothing usable
		drafts = ExtractWithPatterns(message, now)
		if len(drafts) == 0 {
			return nil, errors.ErrUnparsable
		}
	}

	for i := range drafts {
		resolved := ResolveDate(message, drafts[i].Date, now)
		if resolved != drafts[i].Date {
			s.log.Info().Str("from", drafts[i].Date).Str("to", resolved).
				Msg("corrected model date against message")
			drafts[i].Date = resolved
		}
	}

	result, err := s.persistDrafts(ctx, userID, drafts)
	if err != nil {
		return nil, err
	}
	if result.ConflictDetected {
		return result, nil
	}

	reply, err := s.chatReply(ctx, userID, message, now)
	if err != nil {
		// Events are already saved; a failed reply pass must not hide that
		result.Reply = result.CreationMessage
		return result, nil
	}
	result.Reply = fmt.Sprintf("✅ %s\n\n%s", result.CreationMessage, reply)
	return result, nil
}

// persistDrafts checks each draft for schedule conflicts and stores the
// batch. The first conflicting draft becomes a proposal and stops the
// batch; confirmation is the user's call.
func (s *Service) persistDrafts(ctx context.Context, userID string, drafts []EventDraft) (*ChatResult, error) {
	events := make([]repository.Event, 0, len(drafts))
	for _, d := range drafts {
		ev, err := s.toEvent(userID, d)
		if err != nil {
			// A draft with an unusable date/time is dropped, not fatal to
			// the rest of the batch
			s.log.Warn().Str("title", d.Title).Str("date", d.Date).Str("time", d.Time).
				Msg("dropping event draft with invalid date or time")
			continue
		}

		existing, err := s.events.ListOnDate(ctx, userID, ev.Date)
		if err != nil {
			return nil, err
		}
		if conflicts := FindConflicts(ev.Time, existing); len(conflicts) > 0 {
			warning := ConflictWarning(ev.Title, ev.Date, ev.Time, conflicts)
			proposalID, err := s.proposals.Put(ctx, userID, ev, warning)
			if err != nil {
				return nil, err
			}
			return &ChatResult{
				Reply:            warning,
				ConflictDetected: true,
				ProposalID:       proposalID,
			}, nil
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil, errors.ErrUnparsable
	}
	if _, err := s.events.CreateBatch(ctx, events); err != nil {
		return nil, err
	}

	return &ChatResult{
		EventsCreated:   true,
		CreationMessage: fmt.Sprintf("Successfully created %d event(s) automatically!", len(events)),
	}, nil
}

func (s *Service) toEvent(userID string, d EventDraft) (repository.Event, error) {
	reminder := ParseReminder(d.ReminderSetting)
	trigger, err := ReminderDatetime(d.Date, d.Time, reminder, s.loc)
	if err != nil {
		return repository.Event{}, err
	}
	return repository.Event{
		UserID:           userID,
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Date:             d.Date,
		Time:             d.Time,
		ReminderSetting:  reminder.String(),
		ReminderDatetime: trigger,
	}, nil
}

func (s *Service) handleDeletion(ctx context.Context, userID, message string, now time.Time) (*ChatResult, error) {
	today := now.Format(dateLayout)
	candidates, err := s.events.ListUpcoming(ctx, userID, today, 20)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &ChatResult{Reply: "No events found to delete."}, nil
	}

	raw, err := s.ai.Complete(ctx, llm.CompletionRequest{
		Prompt:      deletionPrompt(message, candidates, now),
		MaxTokens:   500,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, errors.ErrAIUnavailable
	}

	deletions, err := ParseDeletions(raw)
	if err != nil {
		return nil, err
	}
	if len(deletions) == 0 {
		return &ChatResult{Reply: "No matching events found to delete."}, nil
	}

	titleByID := make(map[int64]string, len(candidates))
	for _, ev := range candidates {
		titleByID[ev.ID] = ev.Title
	}

	var deletedTitles []string
	for _, del := range deletions {
		// Only ids the model was shown are honored
		title, shown := titleByID[del.ID]
		if !shown {
			continue
		}
		n, err := s.events.Delete(ctx, userID, del.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			deletedTitles = append(deletedTitles, title)
		}
	}

	if len(deletedTitles) == 0 {
		return &ChatResult{Reply: "No matching events found to delete."}, nil
	}
	return &ChatResult{
		Reply: fmt.Sprintf("✅ Successfully deleted %d event(s): %s",
			len(deletedTitles), strings.Join(deletedTitles, ", ")),
	}, nil
}

// chatReply runs the conversational pass with the user's next 7 days of
// schedule as system context.
func (s *Service) chatReply(ctx context.Context, userID, message string, now time.Time) (string, error) {
	today := now.Format(dateLayout)
	weekOut := now.AddDate(0, 0, 7).Format(dateLayout)

	upcoming, err := s.events.ListBetween(ctx, userID, today, weekOut)
	if err != nil {
		return "", err
	}

	reply, err := s.ai.Complete(ctx, llm.CompletionRequest{
		Prompt:      message,
		System:      chatSystemPrompt(scheduleContext(upcoming), now),
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		return "", errors.ErrAIUnavailable
	}
	return reply, nil
}

// AddTask validates and persists a fully specified task, running an
// enhancement pass over its description and category first. Enhancement
// never blocks creation; when no provider improves the text a
// deterministic fallback does.
func (s *Service) AddTask(ctx context.Context, userID string, in TaskInput) (*CreatedTask, error) {
	missing := map[string]string{}
	for field, value := range map[string]string{
		"title":            in.Title,
		"description":      in.Description,
		"category":         in.Category,
		"date":             in.Date,
		"time":             in.Time,
		"reminder_setting": in.ReminderSetting,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return nil, errors.ValidationError("missing required fields", missing)
	}

	if _, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, s.loc); err != nil {
		return nil, errors.BadRequest("invalid date or time format, use YYYY-MM-DD and HH:MM")
	}

	description := in.Description
	category := CanonicalCategory(in.Category)
	aiEnhanced := false

	raw, err := s.ai.Complete(ctx, llm.CompletionRequest{
		Prompt:      enhancementPrompt(in.Title, in.Description, in.Category),
		MaxTokens:   500,
		Temperature: 0.4,
	})
	if err == nil {
		if enhanced, ok := ParseEnhancement(raw, in.Description); ok {
			description = enhanced.Description
			category = enhanced.Category
			aiEnhanced = true
		}
	}
	if !aiEnhanced {
		description = FallbackEnhancement(in.Title, in.Description, in.Category)
	}

	reminder := ParseReminder(in.ReminderSetting)
	trigger, err := ReminderDatetime(in.Date, in.Time, reminder, s.loc)
	if err != nil {
		return nil, errors.BadRequest("invalid date or time format, use YYYY-MM-DD and HH:MM")
	}

	ev := repository.Event{
		UserID:           userID,
		Title:            in.Title,
		Description:      description,
		Category:         category,
		Date:             in.Date,
		Time:             in.Time,
		ReminderSetting:  reminder.String(),
		ReminderDatetime: trigger,
	}
	id, err := s.events.Create(ctx, ev)
	if err != nil {
		return nil, err
	}
	ev.ID = id

	return &CreatedTask{Event: ev, AIEnhanced: aiEnhanced}, nil
}

// ConfirmProposal persists the held-back event of a pending conflict
// proposal and discards the proposal.
func (s *Service) ConfirmProposal(ctx context.Context, userID, proposalID string) (*repository.Event, error) {
	p, err := s.proposals.Get(ctx, userID, proposalID)
	if err != nil {
		return nil, err
	}

	ev := p.Event
	id, err := s.events.Create(ctx, ev)
	if err != nil {
		return nil, err
	}
	ev.ID = id

	if err := s.proposals.Remove(ctx, userID, proposalID); err != nil {
		s.log.Warn().Err(err).Str("proposal_id", proposalID).
			Msg("failed to remove confirmed proposal")
	}
	return &ev, nil
}

// DeclineProposal discards a pending conflict proposal without creating
// its event.
func (s *Service) DeclineProposal(ctx context.Context, userID, proposalID string) error {
	if _, err := s.proposals.Get(ctx, userID, proposalID); err != nil {
		return err
	}
	return s.proposals.Remove(ctx, userID, proposalID)
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scoutcal/scout/internal/dto"
	"github.com/scoutcal/scout/internal/scheduler"
	"github.com/scoutcal/scout/pkg/httputil"
)

// AIHandler exposes the model-backed scheduling operations
type AIHandler struct {
	svc *scheduler.Service
}

// NewAIHandler creates a new AI handler
func NewAIHandler(svc *scheduler.Service) *AIHandler {
	return &AIHandler{svc: svc}
}

// GenerateSchedule turns a free-form prompt into event drafts without
// persisting anything.
// POST /api/v1/users/:userID/ai/generate-schedule
func (h *AIHandler) GenerateSchedule(c *fiber.Ctx) error {
	if c.Params("userID") == "" {
		return httputil.BadRequest(c, "user id is required")
	}

	var req dto.GenerateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.BadRequest(c, "invalid request body")
	}

	drafts, err := h.svc.GenerateTasks(c.Context(), req.Prompt)
	if err != nil {
		return httputil.Error(c, err)
	}

	tasks := make([]dto.GeneratedTask, 0, len(drafts))
	for _, d := range drafts {
		tasks = append(tasks, dto.GeneratedTask{
			Title:           d.Title,
			Description:     d.Description,
			Category:        d.Category,
			Date:            d.Date,
			Time:            d.Time,
			ReminderSetting: d.ReminderSetting,
		})
	}

	return httputil.Success(c, fiber.Map{"tasks": tasks})
}

// Chat processes one conversational message, creating or deleting events
// as the message asks.
// POST /api/v1/ai/scheduler/chat
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.BadRequest(c, "invalid request body")
	}

	result, err := h.svc.Chat(c.Context(), req.UserID, req.Message)
	if err != nil {
		return httputil.Error(c, err)
	}

	return httputil.Success(c, dto.ChatResponse{
		Reply:            result.Reply,
		EventsCreated:    result.EventsCreated,
		CreationMessage:  result.CreationMessage,
		ConflictDetected: result.ConflictDetected,
		ProposalID:       result.ProposalID,
	})
}

// AddTask validates, enhances, and persists one fully specified task.
// POST /api/v1/users/:userID/ai/add-task
func (h *AIHandler) AddTask(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return httputil.BadRequest(c, "user id is required")
	}

	var req dto.AddTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.BadRequest(c, "invalid request body")
	}

	created, err := h.svc.AddTask(c.Context(), userID, scheduler.TaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Date:            req.Date,
		Time:            req.Time,
		ReminderSetting: req.ReminderSetting,
	})
	if err != nil {
		return httputil.Error(c, err)
	}

	return httputil.Created(c, fiber.Map{
		"task":        toTaskResponse(created.Event),
		"ai_enhanced": created.AIEnhanced,
	})
}

// ConfirmProposal schedules the event held back by a conflict proposal.
// POST /api/v1/users/:userID/ai/proposals/:proposalID/confirm
func (h *AIHandler) ConfirmProposal(c *fiber.Ctx) error {
	userID := c.Params("userID")
	proposalID := c.Params("proposalID")
	if userID == "" || proposalID == "" {
		return httputil.BadRequest(c, "user id and proposal id are required")
	}

	ev, err := h.svc.ConfirmProposal(c.Context(), userID, proposalID)
	if err != nil {
		return httputil.Error(c, err)
	}

	return httputil.Created(c, fiber.Map{"task": toTaskResponse(*ev)})
}

// DeclineProposal discards a conflict proposal without scheduling.
// POST /api/v1/users/:userID/ai/proposals/:proposalID/decline
func (h *AIHandler) DeclineProposal(c *fiber.Ctx) error {
	userID := c.Params("userID")
	proposalID := c.Params("proposalID")
	if userID == "" || proposalID == "" {
		return httputil.BadRequest(c, "user id and proposal id are required")
	}

	if err := h.svc.DeclineProposal(c.Context(), userID, proposalID); err != nil {
		return httputil.Error(c, err)
	}

	return httputil.Success(c, fiber.Map{"declined": true})
}

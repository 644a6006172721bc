package server

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/scoutcal/scout/internal/dto"
	"github.com/scoutcal/scout/internal/repository"
	"github.com/scoutcal/scout/pkg/httputil"
)

// TaskStore is the event access the task handler needs
type TaskStore interface {
	ListAll(ctx context.Context, userID string) ([]repository.Event, error)
	MonthView(ctx context.Context, userID string, year, month int) (map[int]repository.DayStatus, error)
	Delete(ctx context.Context, userID string, eventID int64) (int64, error)
}

// TaskHandler exposes read and delete access to stored events
type TaskHandler struct {
	events TaskStore
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(events TaskStore) *TaskHandler {
	return &TaskHandler{events: events}
}

// List returns every event for a user, ordered by date then time.
// GET /api/v1/users/:userID/tasks
func (h *TaskHandler) List(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return httputil.BadRequest(c, "user id is required")
	}

	events, err := h.events.ListAll(c.Context(), userID)
	if err != nil {
		return httputil.Error(c, err)
	}

	tasks := make([]dto.TaskResponse, 0, len(events))
	for _, ev := range events {
		tasks = append(tasks, toTaskResponse(ev))
	}
	return httputil.Success(c, fiber.Map{"tasks": tasks})
}

// MonthView returns per-day pending/completed flags for a month.
// GET /api/v1/users/:userID/schedule/month?year=2025&month=10
func (h *TaskHandler) MonthView(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return httputil.BadRequest(c, "user id is required")
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 1970 || year > 9999 {
		return httputil.BadRequest(c, "year must be a four-digit number")
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		return httputil.BadRequest(c, "month must be between 1 and 12")
	}

	days, err := h.events.MonthView(c.Context(), userID, year, month)
	if err != nil {
		return httputil.Error(c, err)
	}

	view := make(map[string]dto.MonthDay, len(days))
	for day, status := range days {
		view[strconv.Itoa(day)] = dto.MonthDay{
			HasPending:   status.HasPending,
			HasCompleted: status.HasCompleted,
		}
	}
	return httputil.Success(c, fiber.Map{"year": year, "month": month, "days": view})
}

// Delete removes one event owned by the user. Deleting an id that no
// longer exists reports zero rows affected rather than an error, so
// repeating a delete is safe.
// DELETE /api/v1/users/:userID/tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return httputil.BadRequest(c, "user id is required")
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return httputil.BadRequest(c, "invalid event id")
	}

	n, err := h.events.Delete(c.Context(), userID, id)
	if err != nil {
		return httputil.Error(c, err)
	}
	return httputil.Success(c, fiber.Map{"deleted": n > 0, "deleted_count": n})
}

func toTaskResponse(ev repository.Event) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:              ev.ID,
		UserID:          ev.UserID,
		Title:           ev.Title,
		Description:     ev.Description,
		Category:        ev.Category,
		Date:            ev.Date,
		Time:            ev.Time,
		Done:            ev.Done,
		ReminderSetting: ev.ReminderSetting,
	}
	if ev.ReminderDatetime != nil {
		resp.ReminderDatetime = ev.ReminderDatetime.Format("2006-01-02 15:04:05")
	}
	return resp
}

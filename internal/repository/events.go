package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scoutcal/scout/internal/errors"
)

// Event is a single calendar entry owned by one user. Date and Time are
// kept as the wire strings (YYYY-MM-DD, HH:MM) the whole pipeline works
// with; ReminderDatetime is the computed absolute trigger timestamp.
type Event struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"user_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	Done             bool       `json:"done"`
	ReminderSetting  string     `json:"reminder_setting"`
	ReminderDatetime *time.Time `json:"reminder_datetime,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DayStatus carries pending/completed flags for one day of the month view
type DayStatus struct {
	HasPending   bool
	HasCompleted bool
}

// EventStore provides CRUD access to the events relation, always scoped by
// user id.
type EventStore struct {
	db *pgxpool.Pool
}

// NewEventStore creates a new event store
func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, user_id, title, description, category, date, time, done, reminder_setting, reminder_datetime, created_at`

func scanEvent(row pgx.Row) (Event, error) {
	var ev Event
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.Title, &ev.Description, &ev.Category,
		&ev.Date, &ev.Time, &ev.Done, &ev.ReminderSetting,
		&ev.ReminderDatetime, &ev.CreatedAt,
	)
	return ev, err
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Create inserts one event and returns its assigned id
func (s *EventStore) Create(ctx context.Context, ev Event) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO events (user_id, title, description, category, date, time, done, reminder_setting, reminder_datetime)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)
		RETURNING id
	`, ev.UserID, ev.Title, ev.Description, ev.Category, ev.Date, ev.Time, ev.ReminderSetting, ev.ReminderDatetime).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create event")
	}
	return id, nil
}

// CreateBatch inserts a batch of events in one transaction. Either every
// event in the batch is persisted or none is.
func (s *EventStore) CreateBatch(ctx context.Context, events []Event) ([]int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO events (user_id, title, description, category, date, time, done, reminder_setting, reminder_datetime)
			VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)
			RETURNING id
		`, ev.UserID, ev.Title, ev.Description, ev.Category, ev.Date, ev.Time, ev.ReminderSetting, ev.ReminderDatetime).Scan(&id)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create event")
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit events")
	}
	return ids, nil
}

// ListAll returns every event for a user, ordered by date then time
func (s *EventStore) ListAll(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = $1
		ORDER BY date, time
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return collectEvents(rows)
}

// ListOnDate returns the user's non-done events on one exact date, ordered
// by time. This is the conflict-detection query.
func (s *EventStore) ListOnDate(ctx context.Context, userID, date string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = $1 AND date = $2 AND done = false
		ORDER BY time
	`, userID, date)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events for date")
	}
	return collectEvents(rows)
}

// ListUpcoming returns the user's non-done events from a date onward,
// limited. Used as deletion-matching context.
func (s *EventStore) ListUpcoming(ctx context.Context, userID, fromDate string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = $1 AND date >= $2 AND done = false
		ORDER BY date, time
		LIMIT $3
	`, userID, fromDate, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list upcoming events")
	}
	return collectEvents(rows)
}

// ListBetween returns the user's non-done events within a date range,
// inclusive. Used to build the chat schedule context.
func (s *EventStore) ListBetween(ctx context.Context, userID, fromDate, toDate string) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = $1 AND date >= $2 AND date <= $3 AND done = false
		ORDER BY date, time
	`, userID, fromDate, toDate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events in range")
	}
	return collectEvents(rows)
}

// Delete removes one event owned by the user. Returns the number of rows
// removed; deleting an id that no longer exists is not an error.
func (s *EventStore) Delete(ctx context.Context, userID string, eventID int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM events WHERE id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete event")
	}
	return tag.RowsAffected(), nil
}

// MonthView returns per-day pending/completed flags for a month. Keys are
// day-of-month numbers.
func (s *EventStore) MonthView(ctx context.Context, userID string, year, month int) (map[int]DayStatus, error) {
	rows, err := s.db.Query(ctx, `
		SELECT date, done
		FROM events
		WHERE user_id = $1 AND date >= $2 AND date < $3
	`, userID, monthStart(year, month), monthStart(nextMonth(year, month)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query month view")
	}
	defer rows.Close()

	days := make(map[int]DayStatus)
	for rows.Next() {
		var date string
		var done bool
		if err := rows.Scan(&date, &done); err != nil {
			return nil, err
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		status := days[d.Day()]
		if done {
			status.HasCompleted = true
		} else {
			status.HasPending = true
		}
		days[d.Day()] = status
	}
	return days, rows.Err()
}

func monthStart(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

package dto

// APIResponse is the standard API response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error in the API response
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// TaskResponse represents a persisted calendar event in API responses
type TaskResponse struct {
	ID               int64  `json:"id"`
	UserID           string `json:"user_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Done             bool   `json:"done"`
	ReminderSetting  string `json:"reminder_setting"`
	ReminderDatetime string `json:"reminder_datetime,omitempty"`
}

// GenerateScheduleRequest is the body for the generate-schedule endpoint
type GenerateScheduleRequest struct {
	Prompt string `json:"prompt"`
}

// GeneratedTask is one event draft returned by the schedule generator.
// Nothing is persisted at this stage.
type GeneratedTask struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	ReminderSetting string `json:"reminder_setting"`
}

// ChatRequest is the body for the scheduler chat endpoint
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatResponse is the reply from the scheduler chat endpoint
type ChatResponse struct {
	Reply            string `json:"reply"`
	EventsCreated    bool   `json:"events_created"`
	CreationMessage  string `json:"creation_message,omitempty"`
	ConflictDetected bool   `json:"conflict_detected,omitempty"`
	ProposalID       string `json:"proposal_id,omitempty"`
}

// AddTaskRequest is the body for the add-task endpoint
type AddTaskRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	ReminderSetting string `json:"reminder_setting"`
}

// MonthDay carries per-day flags for the month view
type MonthDay struct {
	HasPending   bool `json:"hasPending"`
	HasCompleted bool `json:"hasCompleted"`
}

// Success creates a successful API response
func Success(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// Error creates an error API response
func Error(code, message string) APIResponse {
	return APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error API response with details
func ErrorWithDetails(code, message string, details map[string]interface{}) APIResponse {
	return APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

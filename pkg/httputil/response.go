package httputil

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scoutcal/scout/internal/dto"
	"github.com/scoutcal/scout/internal/errors"
)

// Success sends a successful JSON response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(dto.Success(data))
}

// Created sends a 201 Created response
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(dto.Success(data))
}

// Error sends an error JSON response
func Error(c *fiber.Ctx, err error) error {
	statusCode := errors.HTTPStatusCode(err)

	var appErr *errors.AppError
	if errors.IsAppError(err, &appErr) {
		response := dto.APIResponse{
			Success: false,
			Error: &dto.APIError{
				Code:    errorCode(statusCode),
				Message: appErr.Message,
				Details: appErr.Details,
			},
		}
		return c.Status(statusCode).JSON(response)
	}

	return c.Status(statusCode).JSON(dto.Error(errorCode(statusCode), err.Error()))
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Error("BAD_REQUEST", message))
}

// NotFound sends a 404 Not Found response
func NotFound(c *fiber.Ctx, resource string) error {
	message := "resource not found"
	if resource != "" {
		message = resource + " not found"
	}
	return c.Status(fiber.StatusNotFound).JSON(dto.Error("NOT_FOUND", message))
}

// ValidationError sends a 400 Bad Request response with validation details
func ValidationError(c *fiber.Ctx, message string, fields map[string]string) error {
	details := make(map[string]interface{})
	for k, v := range fields {
		details[k] = v
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorWithDetails("VALIDATION_ERROR", message, details))
}

// InternalError sends a 500 Internal Server Error response
func InternalError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "internal server error"
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("INTERNAL_ERROR", message))
}

// ServiceUnavailable sends a 503 Service Unavailable response
func ServiceUnavailable(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "service temporarily unavailable"
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Error("SERVICE_UNAVAILABLE", message))
}

// errorCode maps HTTP status codes to error codes
func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse wraps every successful API payload. Meta carries request-level
// extras such as the storage key a progress listing was read from.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the body of every failed API call. Error is the status text,
// Message the user-facing reason.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success writes data with status. An optional first meta value is attached as is.
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	body := SuccessResponse{Success: true, Data: data}
	if len(meta) > 0 {
		body.Meta = meta[0]
	}
	return c.Status(status).JSON(body)
}

// Error writes err's message under status. An optional first details value is
// attached as is.
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	body := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}
	if len(details) > 0 {
		body.Details = details[0]
	}
	return c.Status(status).JSON(body)
}

// ValidationError answers 422 with a field → reason map.
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Success: false,
		Error:   "Validation Error",
		Details: fields,
	})
}

// NoContent answers 204 with an empty body, used after log out.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// NotFound answers 404, used for unknown API endpoints.
func NotFound(c *fiber.Ctx, message string) error {
	return withStatus(c, fiber.StatusNotFound, message)
}

// BadRequest answers 400 for bodies that could not be parsed.
func BadRequest(c *fiber.Ctx, message string) error {
	return withStatus(c, fiber.StatusBadRequest, message)
}

// InternalServerError answers 500.
func InternalServerError(c *fiber.Ctx, message string) error {
	return withStatus(c, fiber.StatusInternalServerError, message)
}

// ServiceUnavailable answers 503 when storage cannot be reached.
func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return withStatus(c, fiber.StatusServiceUnavailable, message)
}

func withStatus(c *fiber.Ctx, status int, message string) error {
	return Error(c, status, fiber.NewError(status, message))
}

package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/alerts"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// AlertResponse sends an error response carrying a user-facing alert in
// place of the underlying error text
func AlertResponse(c *fiber.Ctx, alert alerts.Alert, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   alert.Title,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
		Alert:     &alert,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "")
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int           `json:"status"`
	Message   string        `json:"message"`
	Ok        bool          `json:"ok"`
	Timestamp string        `json:"timestamp"`
	URL       string        `json:"url"`
	Type      string        `json:"type,omitempty"`
	Alert     *alerts.Alert `json:"alert,omitempty"`
}

// SaveResponseStruct defines the schema for profile save responses
type SaveResponseStruct struct {
	Ok       bool          `json:"ok"`
	Outcome  string        `json:"outcome"`
	Profile  interface{}   `json:"profile,omitempty"`
	Problems []string      `json:"problems,omitempty"`
	Alert    *alerts.Alert `json:"alert,omitempty"`
}

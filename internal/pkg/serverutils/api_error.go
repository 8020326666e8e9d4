package serverutils

import "github.com/gofiber/fiber/v2"

// APIError is an error that knows how to render itself as an HTTP response.
// Details carries structured diagnostics (e.g. the full "not found" payload).
type APIError struct {
	StatusCode int
	Message    string
	Details    interface{}
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Body() fiber.Map {
	body := fiber.Map{
		"status":  "error",
		"message": e.Message,
	}
	if e.Details != nil {
		body["details"] = e.Details
	}
	return body
}

func NewNotFoundError(message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: fiber.StatusNotFound,
		Message:    message,
		Details:    details,
	}
}

func NewValidationError(details interface{}) *APIError {
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Message:    "Validation failed",
		Details:    details,
	}
}

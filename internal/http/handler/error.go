package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
	"docvault/internal/validate"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// ExistingDocumentID references the winning document on duplicate-content
	// conflicts so clients can link to it instead of re-uploading.
	ExistingDocumentID string `json:"existing_document_id,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "FORBIDDEN", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps the service failure taxonomy onto HTTP statuses in
// one place. Handlers call it for any error coming out of the service layer.
func writeServiceError(c *fiber.Ctx, err error) error {
	var vErr *validate.Error
	if errors.As(err, &vErr) {
		return writeError(c, vErr.Status, string(vErr.Kind), vErr.Message)
	}

	var dup *service.DuplicateError
	if errors.As(err, &dup) {
		res := errorPayload{
			RequestID: requestIDFromCtx(c),
			Error: errorEnvelope{
				Code:               "DUPLICATE_FILE",
				Message:            "identical file content already exists in this offering",
				ExistingDocumentID: dup.Existing.ID,
			},
		}
		return c.Status(fiber.StatusConflict).JSON(res)
	}

	switch {
	case errors.Is(err, service.ErrBadRequest):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient role for this operation")
	case errors.Is(err, service.ErrOfferingNotFound):
		return writeError(c, fiber.StatusNotFound, "OFFERING_NOT_FOUND", "offering not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		return writeError(c, fiber.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrBlobNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "stored file not found")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

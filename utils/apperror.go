package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorKind classifies API errors independently of their HTTP status.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindPrecondition
	KindNotFound
	KindUnauthenticated
)

// APIError is the error type every controller and service returns for
// request-level failures. The fiber error handler maps it to a status code.
type APIError struct {
	Kind    ErrorKind
	Message string
}

func (e *APIError) Error() string { return e.Message }

// StatusCode maps the kind to an HTTP status. Precondition failures use
// 400 to stay wire-compatible with existing clients.
func (e *APIError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusBadRequest
	}
}

func BadRequest(msg string) *APIError {
	return &APIError{Kind: KindValidation, Message: msg}
}

func Precondition(msg string) *APIError {
	return &APIError{Kind: KindPrecondition, Message: msg}
}

func NotFound(msg string) *APIError {
	return &APIError{Kind: KindNotFound, Message: msg}
}

func Unauthenticated(msg string) *APIError {
	return &APIError{Kind: KindUnauthenticated, Message: msg}
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// TranslateStorage converts storage-layer failures into taxonomy errors so
// callers never see driver-specific errors.
func TranslateStorage(err error, notFoundMsg, duplicateMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Precondition(duplicateMsg)
	default:
		return err
	}
}

// ErrorHandler is installed on the fiber app and serializes every error the
// handlers return. Unclassified errors become opaque 500s.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.StatusCode()).JSON(fiber.Map{"error": apiErr.Message})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	LogError("unhandled_error", err, map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong, try again later",
	})
}

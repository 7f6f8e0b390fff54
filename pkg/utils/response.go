package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Machine-readable error reason codes carried in the `error` field.
const (
	ErrCodeInsufficientPermissions = "insufficient_permissions"
	ErrCodeProjectInvalid          = "tablo_project_invalid"
	ErrCodeFinalizeRequiresFull    = "finalization_requires_full_access"
	ErrCodeAlreadyResolved         = "already_resolved"
	ErrCodeNotFound                = "not_found"
)

// SuccessResponse writes the fixed {success, message, data} envelope.
func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

// ErrorResponse writes the fixed error envelope with an HTTP status.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// ErrorCodeResponse writes an error envelope whose error field is a
// machine-readable reason code.
func ErrorCodeResponse(c *fiber.Ctx, status int, message, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   code,
	})
}

// UnauthorizedResponse is the generic 401. The message never confirms
// whether a presented identifier existed.
func UnauthorizedResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   "unauthenticated",
	})
}

// ValidationErrorResponse writes the 422 envelope with field-level detail.
func ValidationErrorResponse(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"error":   "validation_error",
		"fields":  fields,
	})
}

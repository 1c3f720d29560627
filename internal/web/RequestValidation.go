// This file contains the actual validator implementation for incoming http requests.
//
// You can implement custom validators for each field in this file and reference them in the request structs.

package web

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate *validator.Validate

// Initialize the custom validator
func init() {
	validate = validator.New()
	validate.RegisterValidation("materialhandle", validateMaterialHandle)
}

// ValidateRequest validates a request using a Fiber context and a request struct.
// It parses the request differently based on HTTP method.
func ValidateRequest(c *fiber.Ctx, req interface{}) error {
	method := c.Method()

	switch method {
	case "GET", "DELETE":
		// Query and path parameters only
		if err := c.QueryParser(req); err != nil {
			return err
		}
		if err := c.ParamsParser(req); err != nil {
			return err
		}
	case "POST", "PUT", "PATCH":
		// For requests with potential body content. Path parameters are still
		// parsed: the scene routes carry scene_id/object_id in the path.
		if len(c.Body()) > 0 {
			if err := c.BodyParser(req); err != nil {
				return err
			}
		}
		if err := c.QueryParser(req); err != nil {
			return err
		}
		if err := c.ParamsParser(req); err != nil {
			return err
		}
	default:
		// Unsupported HTTP method
	}

	return validate.Struct(req)
}

// validateMaterialHandle is a custom validator for material name handles.
// Handles are identity keys, so they must be trimmed, printable UTF-8.
func validateMaterialHandle(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || strings.TrimSpace(name) != name {
		return false
	}
	return utf8.ValidString(name) && !strings.ContainsRune(name, '\x00')
}

package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/fault"
)

// writeFault renders a classified failure as JSON. Unclassified errors are
// surfaced as SERVICE_UNAVAILABLE: retry-able and non-fatal to local state,
// exactly like a recoverable validation error.
func writeFault(c *fiber.Ctx, err error) error {
	var f *fault.Fault
	if !errors.As(err, &f) {
		f = fault.New(fault.KindServiceUnavailable, "service temporarily unavailable")
	}

	body := fiber.Map{"kind": f.Kind, "message": f.Message}
	if len(f.Fields) > 0 {
		body["fields"] = f.Fields
	}
	return c.Status(statusFor(f.Kind)).JSON(fiber.Map{"error": body})
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.KindValidationFailed, fault.KindMismatch, fault.KindWrongCode:
		return http.StatusBadRequest
	case fault.KindInvalidCredentials:
		return http.StatusUnauthorized
	case fault.KindAccountDisabled:
		return http.StatusForbidden
	case fault.KindDuplicateIdentifier, fault.KindInvalidState, fault.KindFlowBusy:
		return http.StatusConflict
	case fault.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

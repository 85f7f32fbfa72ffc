package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/recovery"
	"github.com/labportal/labportal/internal/session"
)

// RegisterRecoveryRoutes wires the three-step password recovery flow.
func RegisterRecoveryRoutes(r fiber.Router, flow *recovery.Flow, verifyLimiter fiber.Handler) {
	group := r.Group("/recovery")

	group.Get("/state", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"state": flow.State()})
	})

	group.Post("/request", func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		// Re-entering the recovery screen after a completed flow starts over.
		if flow.State() == recovery.StateSecretChanged {
			flow.Abandon()
		}
		if err := flow.RequestCode(c.UserContext(), req.Email); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusAccepted).JSON(fiber.Map{"state": flow.State()})
	})

	group.Post("/resend", func(c *fiber.Ctx) error {
		if err := flow.ResendCode(c.UserContext()); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusAccepted).JSON(fiber.Map{"state": flow.State()})
	})

	verify := func(c *fiber.Ctx) error {
		var req struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := flow.VerifyCode(c.UserContext(), req.Code); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"state": flow.State()})
	}
	if verifyLimiter != nil {
		group.Post("/verify", verifyLimiter, verify)
	} else {
		group.Post("/verify", verify)
	}

	group.Post("/secret", func(c *fiber.Ctx) error {
		var req struct {
			NewSecret     string `json:"newSecret"`
			ConfirmSecret string `json:"confirmSecret"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := flow.SetNewSecret(c.UserContext(), req.NewSecret, req.ConfirmSecret); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"state": flow.State(), "redirect": session.RouteSignIn})
	})

	group.Post("/abandon", func(c *fiber.Ctx) error {
		flow.Abandon()
		return c.Status(http.StatusOK).JSON(fiber.Map{"state": flow.State()})
	})
}

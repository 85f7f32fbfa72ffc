package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/middleware"
)

// RegisterDashboardRoutes wires the role-gated dashboard entry points. The
// dashboards themselves only echo the session; their data tables live
// outside this service.
func RegisterDashboardRoutes(r fiber.Router, accounts *account.Service) {
	admin := r.Group("/admin", middleware.RequireRole(account.RoleAdministrator))
	admin.Get("/dashboard", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{"session": sess})
	})
	admin.Get("/accounts", func(c *fiber.Ctx) error {
		list, err := accounts.List(c.UserContext())
		if err != nil {
			return writeFault(c, err)
		}
		out := make([]fiber.Map, 0, len(list))
		for _, acc := range list {
			out = append(out, fiber.Map{
				"id":     acc.ID,
				"email":  acc.Email,
				"name":   acc.DisplayName(),
				"role":   acc.Role,
				"active": acc.Active,
			})
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"accounts": out})
	})
	admin.Patch("/accounts/:id/active", func(c *fiber.Ctx) error {
		var req struct {
			Active bool `json:"active"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := accounts.SetActive(c.UserContext(), c.Params("id"), req.Active); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"id": c.Params("id"), "active": req.Active})
	})

	clinician := r.Group("/clinician", middleware.RequireRole(account.RoleClinician))
	clinician.Get("/dashboard", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{"session": sess})
	})

	patient := r.Group("/patient", middleware.RequireRole(account.RolePatient))
	patient.Get("/dashboard", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{"session": sess})
	})
}

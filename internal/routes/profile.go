package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/middleware"
	"github.com/labportal/labportal/internal/session"
)

type profileResponse struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	NationalID string `json:"nationalId"`
	Address    string `json:"address"`
	Role       string `json:"role"`
}

// RegisterProfileRoutes wires the signed-in user's profile screen: read,
// edit, and in-place secret change.
func RegisterProfileRoutes(r fiber.Router, accounts *account.Service, sessions *session.Manager) {
	r.Get("/profile", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		acc, err := accounts.Repo().FindByEmail(c.UserContext(), sess.Identifier)
		if err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(toProfile(acc))
	})

	r.Put("/profile", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		var req struct {
			Name       string `json:"name"`
			Surname    string `json:"surname"`
			Email      string `json:"email"`
			Phone      string `json:"phone"`
			NationalID string `json:"nationalId"`
			Address    string `json:"address"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acc, err := accounts.UpdateProfile(c.UserContext(), sess.Identifier, account.ProfileInput{
			Name:       req.Name,
			Surname:    req.Surname,
			Email:      req.Email,
			Phone:      req.Phone,
			NationalID: req.NationalID,
			Address:    req.Address,
		})
		if err != nil {
			return writeFault(c, err)
		}
		// Keep the persisted session copy in step with the account.
		updated, err := sessions.Refresh(c.UserContext(), acc)
		if err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"profile": toProfile(acc),
			"session": updated,
		})
	})

	r.Post("/profile/secret", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		var req struct {
			CurrentSecret string `json:"currentSecret"`
			NewSecret     string `json:"newSecret"`
			ConfirmSecret string `json:"confirmSecret"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := accounts.ChangeSecret(c.UserContext(), sess.Identifier, req.CurrentSecret, req.NewSecret, req.ConfirmSecret); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "secret_changed"})
	})
}

func toProfile(acc account.Account) profileResponse {
	return profileResponse{
		Name:       acc.Name,
		Surname:    acc.Surname,
		Email:      acc.Email,
		Phone:      acc.Phone,
		NationalID: acc.NationalID,
		Address:    acc.Address,
		Role:       string(acc.Role),
	}
}

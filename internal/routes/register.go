package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/session"
)

type registerRequest struct {
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	NationalID    string `json:"nationalId"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Secret        string `json:"secret"`
	ConfirmSecret string `json:"confirmSecret"`
	AcceptTerms   bool   `json:"acceptTerms"`
}

// RegisterRegistrationRoutes wires patient self-registration. Registration
// never opens a session: the caller is routed to sign-in.
func RegisterRegistrationRoutes(r fiber.Router, accounts *account.Service, logger *slog.Logger) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acc, err := accounts.Register(c.UserContext(), account.RegisterInput{
			Name:          req.Name,
			Surname:       req.Surname,
			NationalID:    req.NationalID,
			Phone:         req.Phone,
			Email:         req.Email,
			Secret:        req.Secret,
			ConfirmSecret: req.ConfirmSecret,
			AcceptTerms:   req.AcceptTerms,
		})
		if err != nil {
			return writeFault(c, err)
		}
		if logger != nil {
			logger.Info("account registered",
				slog.String("account_id", acc.ID),
				slog.String("email", acc.Email),
				slog.String("role", string(acc.Role)),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":       acc.ID,
			"email":    acc.Email,
			"role":     acc.Role,
			"name":     acc.DisplayName(),
			"redirect": session.RouteSignIn,
		})
	})
}

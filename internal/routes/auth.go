package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/session"
	"github.com/labportal/labportal/internal/token"
)

type loginRequest struct {
	Email    string `json:"email"`
	Secret   string `json:"secret"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	Session      session.Session `json:"session"`
	Redirect     string          `json:"redirect"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
}

// RegisterAuthRoutes wires sign-in, token refresh and sign-out.
func RegisterAuthRoutes(r fiber.Router, accounts *account.Service, sessions *session.Manager, tokens *token.Manager, rateLimiter fiber.Handler) {
	group := r.Group("/auth")

	login := func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acc, err := accounts.Authenticate(c.UserContext(), req.Email, req.Secret)
		if err != nil {
			return writeFault(c, err)
		}
		sess, err := sessions.SignIn(c.UserContext(), acc, req.Remember)
		if err != nil {
			return writeFault(c, err)
		}
		pair, err := tokens.Issue(sess.Identifier, string(sess.Role), sess.DisplayName)
		if err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(loginResponse{
			Session:      sess,
			Redirect:     session.RouteForRole(sess.Role),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresIn:    pair.ExpiresIn,
		})
	}
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, login)
	} else {
		group.Post("/login", login)
	}

	group.Post("/refresh", func(c *fiber.Ctx) error {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		access, expiresIn, err := tokens.Refresh(req.RefreshToken)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid refresh token")
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": access, "expires_in": expiresIn})
	})

	// Sign-out destroys the persisted session unconditionally.
	group.Post("/logout", func(c *fiber.Ctx) error {
		if err := sessions.SignOut(c.UserContext()); err != nil {
			return writeFault(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "signed_out", "redirect": session.RouteSignIn})
	})
}

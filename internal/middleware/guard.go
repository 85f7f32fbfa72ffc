package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/session"
	"github.com/labportal/labportal/internal/token"
)

// SessionLocal is the fiber.Ctx locals key under which the guard stores the
// authenticated session.
const SessionLocal = "session"

// SessionGuard gates protected destinations. It verifies the bearer token
// and requires the persisted session slot to hold a matching session; a
// missing session is not an error but a redirect to sign-in.
func SessionGuard(tokens *token.Manager, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return c.Redirect(session.RouteSignIn, fiber.StatusFound)
		}
		claims, err := tokens.ParseAccess(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return c.Redirect(session.RouteSignIn, fiber.StatusFound)
		}

		sess, ok, err := sessions.Current(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		if !ok || sess.Identifier != claims.Subject {
			return c.Redirect(session.RouteSignIn, fiber.StatusFound)
		}

		c.Locals(SessionLocal, sess)
		return c.Next()
	}
}

// CurrentSession returns the session stored by SessionGuard.
func CurrentSession(c *fiber.Ctx) (session.Session, bool) {
	sess, ok := c.Locals(SessionLocal).(session.Session)
	return sess, ok
}

// RequireRole gates a dashboard area to one role. A signed-in user with a
// different role is sent to their own dashboard instead of an error page.
func RequireRole(role account.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := CurrentSession(c)
		if !ok {
			return c.Redirect(session.RouteSignIn, fiber.StatusFound)
		}
		if sess.Role != role {
			return c.Redirect(session.RouteForRole(sess.Role), fiber.StatusFound)
		}
		return c.Next()
	}
}

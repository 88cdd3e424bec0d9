package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/internal/service"
)

// SessionCookie is the cookie carrying the session token
const SessionCookie = "farmsight_session"

// localUserKey is where the middleware stores the authenticated user
const localUserKey = "currentUser"

// RequireAuth guards API routes. Requests without a valid session receive a
// 401 JSON error.
func RequireAuth(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authSvc.CurrentUser(c.Context(), sessionToken(c))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}
		c.Locals(localUserKey, user)
		return c.Next()
	}
}

// RequirePageSession guards page routes. Requests without a valid session are
// redirected to the login page instead of seeing the page payload.
func RequirePageSession(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authSvc.CurrentUser(c.Context(), sessionToken(c))
		if err != nil {
			return c.Redirect("/login", fiber.StatusFound)
		}
		c.Locals(localUserKey, user)
		return c.Next()
	}
}

// sessionToken extracts the token from the session cookie, falling back to a
// bearer Authorization header for API clients.
func sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// currentUser returns the user stored by the auth middleware
func currentUser(c *fiber.Ctx) domain.User {
	user, _ := c.Locals(localUserKey).(domain.User)
	return user
}

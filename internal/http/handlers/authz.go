package handlers

import (
	applog "shopfront/internal/log"
	"shopfront/internal/services"

	"github.com/gofiber/fiber/v2"
)

const tokenCookie = "jwt"

// AttachUser resolves the jwt cookie once per request and stores the user id
// in request locals. Core operations only ever see the explicit id.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tok := c.Cookies(tokenCookie); tok != "" {
			if u, err := auth.CurrentUser(tok); err == nil && u != nil {
				c.Locals("userID", u.ID)
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser redirects to login when no valid session is present.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := auth.ResolveUserID(c.Cookies(tokenCookie))
		if err != nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Redirect("/login")
		}
		c.Locals("userID", uid)
		return c.Next()
	}
}

// userID returns the request's resolved user id, empty when anonymous.
func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}

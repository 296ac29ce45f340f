package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"github.com/localnerve/jurados-presence/internal/services"
	"github.com/localnerve/jurados-presence/internal/types"
)

// LocalUserID is the fiber Locals key holding the signed-in user's id
const LocalUserID = "userID"

// AuthUser validates that the request has user role authorization. The user
// id is stored in Locals and in the request context for the record store.
func AuthUser(validator services.SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, validator, []string{"user"}, "data.authorization.user")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, validator services.SessionValidator, roles []string, errorType string) error {
	session := c.Cookies("cookie_session")
	if session == "" {
		return types.Forbidden("Authorizer cookie \"cookie_session\" not found", errorType)
	}

	redirectURL := fmt.Sprintf("%s://%s", c.Protocol(), c.Hostname())
	userID, err := validator.ValidateSession(redirectURL, session, roles)
	if err != nil {
		return types.Forbidden(fmt.Sprintf("Invalid session: %v", err), errorType)
	}

	c.Locals(LocalUserID, userID)
	c.SetUserContext(recordstore.WithUserID(c.UserContext(), userID))

	return c.Next()
}

// UserID returns the id stored by AuthUser
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

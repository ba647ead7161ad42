package middleware

import (
	"time"

	"coursetrack/backend/config"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClientIDKey is the fiber.Locals key holding the resolved client id.
const ClientIDKey = "client_id"

// ClientMiddleware binds every request to a client: the id comes from the signed
// session cookie, and a fresh one is issued when the cookie is missing or invalid.
func ClientMiddleware(cfg *config.Config, logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID, err := utils.ParseClientToken(c.Cookies(utils.ClientCookie), cfg)
		if err != nil {
			clientID = uuid.NewString()
			token, err := utils.GenerateClientToken(clientID, cfg)
			if err != nil {
				logger.Error("could not sign client token", "error", err)
				return utils.InternalServerError(c, "Could not start session")
			}
			c.Cookie(&fiber.Cookie{
				Name:     utils.ClientCookie,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(time.Duration(cfg.SessionTTLHours) * time.Hour),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(ClientIDKey, clientID)
		return c.Next()
	}
}

// ClientID returns the id stored by ClientMiddleware.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(ClientIDKey).(string)
	return id
}

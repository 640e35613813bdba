package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resume-render/internal/domain"
	"resume-render/internal/logger"
)

const (
	// DeviceCookie names the browser device whose store a request uses.
	DeviceCookie   = "device_id"
	deviceMaxAge   = 365 * 24 * time.Hour
	sessionLocal   = "session"
	bearerPrefix   = "Bearer "
	maxDeviceIDLen = 64
)

// TokenVerifier resolves an identity token to a user id.
type TokenVerifier interface {
	UserID(token string) (string, error)
}

// SessionMiddleware attaches a domain.Session to every request. The device id
// comes from the device cookie, minted when absent; the user id comes from a
// bearer identity token. A token that fails verification is rejected rather
// than treated as anonymous.
func SessionMiddleware(verifier TokenVerifier, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deviceID := c.Cookies(DeviceCookie)
		if deviceID == "" || len(deviceID) > maxDeviceIDLen {
			deviceID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     DeviceCookie,
				Value:    deviceID,
				Path:     "/",
				Expires:  time.Now().Add(deviceMaxAge),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		sess := domain.Session{DeviceID: deviceID}
		if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
			if !strings.HasPrefix(auth, bearerPrefix) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unsupported authorization scheme"})
			}
			userID, err := verifier.UserID(strings.TrimPrefix(auth, bearerPrefix))
			if err != nil {
				log.Debug("rejected identity token", "error", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid identity token"})
			}
			sess.UserID = userID
		}

		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) domain.Session {
	sess, _ := c.Locals(sessionLocal).(domain.Session)
	return sess
}

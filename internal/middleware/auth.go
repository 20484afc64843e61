package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/token-ledger/backend/internal/auth"
	"github.com/token-ledger/backend/internal/config"
	"go.uber.org/zap"
)

const CtxUserID = "user_id"

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.Address)
		return c.Next()
	}
}

// GetUserID returns the ledger user key of the authenticated wallet.
func GetUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxUserID).(string)
	return id
}

package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
)

// SessionChecker reports whether a session is still live.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// AuthRequired validates a Bearer PASETO access token and checks the session in Redis.
// On success, stores *pasetotoken.Claims in c.Locals(pasetotoken.CtxKeyClaims)
// and on the request context.
func AuthRequired(mgr *pasetotoken.Manager, sessions SessionChecker) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.ErrUnauthorized
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.ErrUnauthorized
		}

		// Only access tokens are accepted on protected routes
		claims, err := mgr.VerifyType(strings.TrimSpace(parts[1]), pasetotoken.TokenTypeAccess)
		if err != nil || claims.SessionID == nil {
			return fiber.ErrUnauthorized
		}

		live, err := sessions.Exists(c.Context(), *claims.SessionID)
		if err != nil || !live {
			return fiber.ErrUnauthorized
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}

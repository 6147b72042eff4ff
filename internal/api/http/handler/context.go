package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
)

// callerID returns the authenticated user. Routes using it sit behind
// AuthRequired.
func callerID(c fiber.Ctx) (uuid.UUID, bool) {
	claims, ok := pasetotoken.ClaimsFromFiber(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

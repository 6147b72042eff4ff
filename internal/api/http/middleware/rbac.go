package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
)

// RequirePermission checks the caller's platform roles in the sys domain.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return enforce(auth, resource, action, func(*pasetotoken.Claims) authorize.Domain {
		return authorize.DomainSys
	})
}

// RequireSelf checks the caller's rights over their own account, held in
// the private user:<id> domain.
func RequireSelf(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return enforce(auth, resource, action, func(cl *pasetotoken.Claims) authorize.Domain {
		return authorize.UserDomain(cl.UserID.String())
	})
}

func enforce(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action, domainOf func(*pasetotoken.Claims) authorize.Domain) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		subject := authorize.GroupSubject(claims.UserID.String())
		if err := auth.MustEnforce(c.Context(), subject, domainOf(claims), resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}

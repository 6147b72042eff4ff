package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/service/auth"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// GET /api/v1/auth/google/url?redirect_uri=
func (h *AuthHandler) GoogleURL(c fiber.Ctx) error {
	url, err := h.svc.GoogleAuthURL(c.Context(), c.Query("redirect_uri"))
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, fiber.Map{"url": url})
}

// POST /api/v1/auth/google
func (h *AuthHandler) Google(c fiber.Ctx) error {
	var body struct {
		Code        string `json:"code" validate:"required"`
		RedirectURI string `json:"redirect_uri" validate:"required"`
		State       string `json:"state"`
	}
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}

	res, err := h.svc.GoogleLogin(c.Context(), auth.GoogleLoginRequest{
		Code:        body.Code,
		RedirectURI: body.RedirectURI,
		State:       body.State,
	})
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, res)
}

// POST /api/v1/auth/dev-login
func (h *AuthHandler) DevLogin(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}

	res, err := h.svc.DevLogin(c.Context(), body.Email, body.Password)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, res)
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}

	tokens, err := h.svc.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, tokens)
}

// POST /api/v1/auth/logout  (requires AuthRequired middleware)
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	claims, valid := pasetotoken.ClaimsFromFiber(c)
	if !valid || claims.SessionID == nil {
		return unauthorized(c)
	}

	if err := h.svc.Logout(c.Context(), *claims.SessionID); err != nil {
		return internalError(c)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingRedirect),
		errors.Is(err, auth.ErrMissingCode),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrInvalidState),
		errors.Is(err, auth.ErrEmailNotVerified),
		errors.Is(err, auth.ErrGoogleFailed):
		return badRequest(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, auth.ErrDevLoginDisabled):
		return notFound(c, "not found")
	case errors.Is(err, google.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "google sign-in is not configured"})
	default:
		return internalError(c)
	}
}

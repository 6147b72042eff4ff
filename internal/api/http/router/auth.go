package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler) {
	group := api.Group("/auth")
	group.Get("/google/url", h.GoogleURL)
	group.Post("/google", h.Google)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authRequired, h.Logout)

	if r.p.Cfg.Authentication.DevLogin && r.p.Cfg.Server.Environment != "production" {
		group.Post("/dev-login", h.DevLogin)
	}
}

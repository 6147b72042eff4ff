package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
)

// Reference data is public.
func (r *Router) registerCatalogRoutes(api fiber.Router, h *handler.CatalogHandler) {
	api.Get("/industries", h.Industries)
	api.Get("/objectives", h.Objectives)
	api.Get("/stages", h.Stages)
}

package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
)

func (r *Router) registerAvailabilityRoutes(
	api fiber.Router,
	h *handler.AvailabilityHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	rules := api.Group("/availability/rules", authRequired)
	rules.Get("/", requirePerm(authorize.ResourceAvailabilityRule, authorize.ActionList), h.ListRules)
	rules.Post("/", requirePerm(authorize.ResourceAvailabilityRule, authorize.ActionCreate), h.CreateRule)
	rules.Put("/:id", requirePerm(authorize.ResourceAvailabilityRule, authorize.ActionUpdate), h.UpdateRule)
	rules.Delete("/:id", requirePerm(authorize.ResourceAvailabilityRule, authorize.ActionDelete), h.DeleteRule)
}

package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
)

func (r *Router) registerProfileRoutes(
	api fiber.Router,
	h *handler.ProfileHandler,
	slots *handler.AvailabilityHandler,
	authRequired fiber.Handler,
	requireSelf func(authorize.Resource, authorize.Action) fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	me := api.Group("/profiles/me", authRequired)
	me.Get("/", requireSelf(authorize.ResourceProfile, authorize.ActionRead), h.GetMine)
	me.Put("/", requireSelf(authorize.ResourceProfile, authorize.ActionUpdate), h.UpdateMine)

	mentors := api.Group("/mentors", authRequired)
	mentors.Get("/", requirePerm(authorize.ResourceMentor, authorize.ActionList), h.ListMentors)
	mentors.Get("/:id", requirePerm(authorize.ResourceMentor, authorize.ActionRead), h.GetMentor)
	mentors.Get("/:id/slots", requirePerm(authorize.ResourceSlot, authorize.ActionRead), slots.Slots)

	founders := api.Group("/founders", authRequired)
	founders.Get("/", requirePerm(authorize.ResourceFounder, authorize.ActionList), h.ListFounders)
	founders.Get("/:id", requirePerm(authorize.ResourceFounder, authorize.ActionRead), h.GetFounder)
}

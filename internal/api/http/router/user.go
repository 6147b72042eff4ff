package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(
	api fiber.Router,
	h *handler.UserHandler,
	authRequired fiber.Handler,
	requireSelf func(authorize.Resource, authorize.Action) fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	users := api.Group("/users/me", authRequired)
	users.Get("/", requireSelf(authorize.ResourceUser, authorize.ActionRead), h.Me)
	users.Patch("/", requireSelf(authorize.ResourceUser, authorize.ActionUpdate), h.UpdateMe)
	users.Post("/complete-profile", requireSelf(authorize.ResourceProfile, authorize.ActionUpdate), h.CompleteProfile)
	users.Post("/photo", requireSelf(authorize.ResourceUser, authorize.ActionUpdate), h.UploadPhoto)

	admin := api.Group("/admin", authRequired)
	admin.Post("/mentors/:id/approve", requirePerm(authorize.ResourceMentor, authorize.ActionApprove), h.ApproveMentor)
}

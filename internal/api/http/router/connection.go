package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
)

func (r *Router) registerConnectionRoutes(
	api fiber.Router,
	h *handler.ConnectionHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	conns := api.Group("/connections", authRequired)
	conns.Get("/", requirePerm(authorize.ResourceConnection, authorize.ActionList), h.List)

	reqs := conns.Group("/requests")
	reqs.Post("/", requirePerm(authorize.ResourceConnection, authorize.ActionCreate), h.Send)
	reqs.Get("/sent", requirePerm(authorize.ResourceConnection, authorize.ActionList), h.Sent)
	reqs.Get("/received", requirePerm(authorize.ResourceConnection, authorize.ActionList), h.Received)
	reqs.Post("/:id/accept", requirePerm(authorize.ResourceConnection, authorize.ActionRespond), h.Accept)
	reqs.Post("/:id/decline", requirePerm(authorize.ResourceConnection, authorize.ActionRespond), h.Decline)
}

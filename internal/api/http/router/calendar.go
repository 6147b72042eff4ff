package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
)

func (r *Router) registerCalendarRoutes(
	api fiber.Router,
	h *handler.CalendarHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	cal := api.Group("/calendar", authRequired)
	cal.Get("/auth-url", requirePerm(authorize.ResourceCalendar, authorize.ActionCreate), h.AuthURL)
	cal.Post("/callback", requirePerm(authorize.ResourceCalendar, authorize.ActionCreate), h.Callback)
	cal.Get("/status", requirePerm(authorize.ResourceCalendar, authorize.ActionRead), h.Status)
	cal.Delete("/disconnect", requirePerm(authorize.ResourceCalendar, authorize.ActionDelete), h.Disconnect)
}

package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
)

func (r *Router) registerBookingRoutes(
	api fiber.Router,
	h *handler.BookingHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	bookings := api.Group("/bookings", authRequired)
	bookings.Post("/", requirePerm(authorize.ResourceBooking, authorize.ActionCreate), h.Create)
	bookings.Get("/", requirePerm(authorize.ResourceBooking, authorize.ActionList), h.List)
	bookings.Get("/:id", requirePerm(authorize.ResourceBooking, authorize.ActionRead), h.Get)
	bookings.Post("/:id/cancel", requirePerm(authorize.ResourceBooking, authorize.ActionCancel), h.Cancel)
	bookings.Post("/:id/complete", requirePerm(authorize.ResourceBooking, authorize.ActionComplete), h.Complete)
}

package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/service/calendar"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
)

type CalendarHandler struct {
	svc calendar.Service
}

func NewCalendarHandler(svc calendar.Service) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

// GET /api/v1/calendar/auth-url?redirect_uri=
func (h *CalendarHandler) AuthURL(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	url, err := h.svc.AuthURL(c.Context(), uid, c.Query("redirect_uri"))
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, fiber.Map{"url": url})
}

// POST /api/v1/calendar/callback
func (h *CalendarHandler) Callback(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body calendar.CallbackRequest
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}
	st, err := h.svc.Callback(c.Context(), uid, body)
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, st)
}

// GET /api/v1/calendar/status
func (h *CalendarHandler) Status(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	st, err := h.svc.Status(c.Context(), uid)
	if err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, st)
}

// DELETE /api/v1/calendar/disconnect
func (h *CalendarHandler) Disconnect(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	if err := h.svc.Disconnect(c.Context(), uid); err != nil {
		return mapCalendarError(c, err)
	}
	return ok(c, fiber.Map{"message": "Calendar disconnected"})
}

func mapCalendarError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, calendar.ErrNotConnected):
		return notFound(c, "No calendar connection found")
	case errors.Is(err, calendar.ErrConnectFailed):
		reason := strings.TrimPrefix(err.Error(), calendar.ErrConnectFailed.Error()+": ")
		return badRequest(c, "Failed to connect calendar: "+reason)
	case errors.Is(err, calendar.ErrMissingRedirect),
		errors.Is(err, calendar.ErrMissingCode),
		errors.Is(err, calendar.ErrInvalidState):
		return badRequest(c, err.Error())
	case errors.Is(err, google.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "google calendar is not configured"})
	default:
		return internalError(c)
	}
}

package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/booking"
)

type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// POST /api/v1/bookings
func (h *BookingHandler) Create(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body struct {
		MentorID  uuid.UUID `json:"mentor_id" validate:"required"`
		StartTime time.Time `json:"start_time" validate:"required"`
		EndTime   time.Time `json:"end_time" validate:"required"`
		Agenda    string    `json:"agenda" validate:"max=2000"`
	}
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}

	b, err := h.svc.Create(c.Context(), booking.CreateRequest{
		MentorID:  body.MentorID,
		FounderID: uid,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Agenda:    body.Agenda,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return created(c, b)
}

// GET /api/v1/bookings
func (h *BookingHandler) List(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	bs, err := h.svc.List(c.Context(), uid)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, bs)
}

// GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c fiber.Ctx) error {
	return h.act(c, h.svc.Get)
}

// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c fiber.Ctx) error {
	return h.act(c, h.svc.Cancel)
}

// POST /api/v1/bookings/:id/complete
func (h *BookingHandler) Complete(c fiber.Ctx) error {
	return h.act(c, h.svc.Complete)
}

func (h *BookingHandler) act(c fiber.Ctx, fn func(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error)) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, booking.ErrNotFound.Error())
	}
	b, err := fn(c.Context(), id, uid)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, b)
}

func mapBookingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, booking.ErrMentorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, booking.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, booking.ErrSlotNotAvailable):
		return conflict(c, "This slot is no longer available")
	case errors.Is(err, booking.ErrNotCancellable),
		errors.Is(err, booking.ErrNotCompletable):
		return conflict(c, err.Error())
	case errors.Is(err, booking.ErrInvalidTimeRange),
		errors.Is(err, booking.ErrStartInPast),
		errors.Is(err, booking.ErrSelfBooking):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

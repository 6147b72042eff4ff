package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/service/availability"
)

const dateLayout = "2006-01-02"

type AvailabilityHandler struct {
	svc availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

type ruleBody struct {
	Weekday             *int    `json:"weekday" validate:"required"`
	StartTime           string  `json:"start_time" validate:"required"`
	EndTime             string  `json:"end_time" validate:"required"`
	SlotDurationMinutes *int    `json:"slot_duration_minutes"`
	Timezone            *string `json:"timezone"`
	IsActive            *bool   `json:"is_active"`
}

func (b ruleBody) input() availability.RuleInput {
	return availability.RuleInput{
		Weekday:             *b.Weekday,
		StartTime:           b.StartTime,
		EndTime:             b.EndTime,
		SlotDurationMinutes: b.SlotDurationMinutes,
		Timezone:            b.Timezone,
		IsActive:            b.IsActive,
	}
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

// GET /api/v1/availability/rules
func (h *AvailabilityHandler) ListRules(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	rules, err := h.svc.ListRules(c.Context(), uid)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, rules)
}

// POST /api/v1/availability/rules
func (h *AvailabilityHandler) CreateRule(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body ruleBody
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}
	rule, err := h.svc.CreateRule(c.Context(), uid, body.input())
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return created(c, rule)
}

// PUT /api/v1/availability/rules/:id
func (h *AvailabilityHandler) UpdateRule(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, availability.ErrRuleNotFound.Error())
	}
	var body ruleBody
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}
	rule, err := h.svc.UpdateRule(c.Context(), uid, id, body.input())
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, rule)
}

// DELETE /api/v1/availability/rules/:id
func (h *AvailabilityHandler) DeleteRule(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, availability.ErrRuleNotFound.Error())
	}
	if err := h.svc.DeleteRule(c.Context(), uid, id); err != nil {
		return mapAvailabilityError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

// GET /api/v1/mentors/:id/slots?date=YYYY-MM-DD&days=N
func (h *AvailabilityHandler) Slots(c fiber.Ctx) error {
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, availability.ErrMentorNotFound.Error())
	}

	var start time.Time
	if d := c.Query("date"); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return badRequest(c, "Invalid date format. Use YYYY-MM-DD")
		}
		start = t
	}
	days := 0
	if d := c.Query("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			return badRequest(c, availability.ErrInvalidDays.Error())
		}
		days = n
	}

	res, err := h.svc.ListSlots(c.Context(), id, start, days)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, res)
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, availability.ErrNotMentor):
		return forbidden(c, err.Error())
	case errors.Is(err, availability.ErrMentorNotFound),
		errors.Is(err, availability.ErrRuleNotFound):
		return notFound(c, err.Error())
	case availability.IsValidation(err):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

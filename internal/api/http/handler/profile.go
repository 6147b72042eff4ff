package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/profile"
)

type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// GET /api/v1/profiles/me
func (h *ProfileHandler) GetMine(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	p, err := h.svc.GetMine(c.Context(), uid)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, p)
}

// PUT /api/v1/profiles/me
func (h *ProfileHandler) UpdateMine(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body profile.Update
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}
	p, err := h.svc.UpdateMine(c.Context(), uid, body)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, p)
}

// GET /api/v1/mentors?industry=&objective=&search=
func (h *ProfileHandler) ListMentors(c fiber.Ctx) error {
	industry, okI := int64Query(c, "industry")
	objective, okO := int64Query(c, "objective")
	if !okI || !okO {
		return badRequest(c, "industry and objective must be numeric ids")
	}
	ms, err := h.svc.ListMentors(c.Context(), repo.MentorFilter{
		IndustryID:  industry,
		ObjectiveID: objective,
		Search:      c.Query("search"),
	})
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, ms)
}

// GET /api/v1/mentors/:id
func (h *ProfileHandler) GetMentor(c fiber.Ctx) error {
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, profile.ErrMentorNotFound.Error())
	}
	m, err := h.svc.GetMentor(c.Context(), id)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, m)
}

// GET /api/v1/founders?industry=&stage=&objective=&search=
func (h *ProfileHandler) ListFounders(c fiber.Ctx) error {
	industry, okI := int64Query(c, "industry")
	objective, okO := int64Query(c, "objective")
	if !okI || !okO {
		return badRequest(c, "industry and objective must be numeric ids")
	}
	fs, err := h.svc.ListFounders(c.Context(), repo.FounderFilter{
		IndustryID:  industry,
		Stage:       repo.Stage(c.Query("stage")),
		ObjectiveID: objective,
		Search:      c.Query("search"),
	})
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, fs)
}

// GET /api/v1/founders/:id
func (h *ProfileHandler) GetFounder(c fiber.Ctx) error {
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, profile.ErrFounderNotFound.Error())
	}
	f, err := h.svc.GetFounder(c.Context(), id)
	if err != nil {
		return mapProfileError(c, err)
	}
	return ok(c, f)
}

func int64Query(c fiber.Ctx, key string) (int64, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return n, err == nil
}

func mapProfileError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, profile.ErrProfileIncomplete):
		return badRequest(c, "Complete your profile first")
	case errors.Is(err, profile.ErrMentorNotFound),
		errors.Is(err, profile.ErrFounderNotFound):
		return notFound(c, err.Error())
	case profile.IsValidation(err):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

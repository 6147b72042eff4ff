package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/user"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// GET /api/v1/users/me
func (h *UserHandler) Me(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	me, err := h.svc.GetMe(c.Context(), uid)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, me)
}

// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body user.UpdateRequest
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}
	me, err := h.svc.UpdateMe(c.Context(), uid, body)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, me)
}

// POST /api/v1/users/me/complete-profile
func (h *UserHandler) CompleteProfile(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body struct {
		UserType string `json:"user_type" validate:"required,oneof=founder mentor"`
	}
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}
	me, err := h.svc.CompleteProfile(c.Context(), uid, repo.UserType(body.UserType))
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, me)
}

// POST /api/v1/users/me/photo  (multipart field "photo")
func (h *UserHandler) UploadPhoto(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return badRequest(c, user.ErrPhotoRequired.Error())
	}
	if fh.Size > user.MaxPhotoBytes {
		return mapUserError(c, user.ErrPhotoTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "could not read photo")
	}
	defer f.Close()

	url, err := h.svc.UploadPhoto(c.Context(), uid, user.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, fiber.Map{"profile_photo_url": url})
}

// POST /api/v1/admin/mentors/:id/approve
func (h *UserHandler) ApproveMentor(c fiber.Ctx) error {
	id, valid := uuidParam(c, "id")
	if !valid {
		return badRequest(c, "invalid mentor id")
	}
	u, err := h.svc.ApproveMentor(c.Context(), id)
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, u)
}

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, user.ErrNotMentor):
		return notFound(c, "mentor not found")
	case errors.Is(err, user.ErrUserTypeAlreadySet):
		return conflict(c, err.Error())
	case errors.Is(err, user.ErrPhotoTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, user.ErrStorageDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case user.IsValidation(err):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

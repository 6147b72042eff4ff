package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/connection"
)

type ConnectionHandler struct {
	svc connection.Service
}

func NewConnectionHandler(svc connection.Service) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

// POST /api/v1/connections/requests
func (h *ConnectionHandler) Send(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	var body struct {
		ToUserID uuid.UUID `json:"to_user_id" validate:"required"`
		Intent   string    `json:"intent" validate:"omitempty,oneof=mentor_me collaborate peer_network"`
		Message  string    `json:"message" validate:"max=2000"`
	}
	if cont, err := bindJSON(c, &body); !cont {
		return err
	}

	cr, err := h.svc.Send(c.Context(), connection.SendRequest{
		FromUserID: uid,
		ToUserID:   body.ToUserID,
		Intent:     repo.ConnectionIntent(body.Intent),
		Message:    body.Message,
	})
	if err != nil {
		return mapConnectionError(c, err)
	}
	return created(c, cr)
}

// POST /api/v1/connections/requests/:id/accept
func (h *ConnectionHandler) Accept(c fiber.Ctx) error {
	return h.respond(c, h.svc.Accept)
}

// POST /api/v1/connections/requests/:id/decline
func (h *ConnectionHandler) Decline(c fiber.Ctx) error {
	return h.respond(c, h.svc.Decline)
}

func (h *ConnectionHandler) respond(c fiber.Ctx, fn func(ctx context.Context, id, userID uuid.UUID) (*repo.ConnectionRequest, error)) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := uuidParam(c, "id")
	if !valid {
		return notFound(c, "Request not found")
	}
	cr, err := fn(c.Context(), id, uid)
	if err != nil {
		return mapConnectionError(c, err)
	}
	return ok(c, cr)
}

// GET /api/v1/connections
func (h *ConnectionHandler) List(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	conns, err := h.svc.ListConnections(c.Context(), uid)
	if err != nil {
		return mapConnectionError(c, err)
	}
	return ok(c, conns)
}

// GET /api/v1/connections/requests/sent
func (h *ConnectionHandler) Sent(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	crs, err := h.svc.ListSent(c.Context(), uid)
	if err != nil {
		return mapConnectionError(c, err)
	}
	return ok(c, crs)
}

// GET /api/v1/connections/requests/received
func (h *ConnectionHandler) Received(c fiber.Ctx) error {
	uid, valid := callerID(c)
	if !valid {
		return unauthorized(c)
	}
	crs, err := h.svc.ListReceived(c.Context(), uid)
	if err != nil {
		return mapConnectionError(c, err)
	}
	return ok(c, crs)
}

func mapConnectionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, connection.ErrAlreadyExists):
		return conflict(c, "Connection request already exists")
	case errors.Is(err, connection.ErrReverseRequestPending):
		return conflict(c, "They have already sent you a request")
	case errors.Is(err, connection.ErrRequestNotFound):
		return notFound(c, "Request not found")
	case errors.Is(err, connection.ErrTargetNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, connection.ErrNotFounder),
		errors.Is(err, connection.ErrSelfRequest),
		errors.Is(err, connection.ErrInvalidIntent):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

package connection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.ConnectionRequest, error)
	Create(ctx context.Context, cr *repo.ConnectionRequest) error
	Exists(ctx context.Context, from, to uuid.UUID, status repo.ConnectionStatus) (bool, error)
	ListSent(ctx context.Context, from uuid.UUID) ([]*repo.ConnectionRequest, error)
	ListReceived(ctx context.Context, to uuid.UUID) ([]*repo.ConnectionRequest, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]*repo.ConnectionRequest, error)
	Respond(ctx context.Context, id, toUser uuid.UUID, status repo.ConnectionStatus, at time.Time) error
}

type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SendRequest struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	Intent     repo.ConnectionIntent
	Message    string
}

// Connection is an accepted request seen from one side.
type Connection struct {
	ID            uuid.UUID             `json:"id"`
	Intent        repo.ConnectionIntent `json:"intent"`
	ConnectedUser *repo.UserSummary     `json:"connected_user"`
	ConnectedAt   *time.Time            `json:"connected_at"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Send(ctx context.Context, req SendRequest) (*repo.ConnectionRequest, error)
	Accept(ctx context.Context, id, userID uuid.UUID) (*repo.ConnectionRequest, error)
	Decline(ctx context.Context, id, userID uuid.UUID) (*repo.ConnectionRequest, error)

	ListConnections(ctx context.Context, userID uuid.UUID) ([]Connection, error)
	ListSent(ctx context.Context, userID uuid.UUID) ([]*repo.ConnectionRequest, error)
	ListReceived(ctx context.Context, userID uuid.UUID) ([]*repo.ConnectionRequest, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type connectionService struct {
	store Store
	users UserReader
	now   func() time.Time
}

func New(store Store, users UserReader, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &connectionService{store: store, users: users, now: now}
}

func (s *connectionService) Send(ctx context.Context, req SendRequest) (*repo.ConnectionRequest, error) {
	if req.FromUserID == req.ToUserID {
		return nil, ErrSelfRequest
	}
	if req.Intent == "" {
		req.Intent = repo.IntentPeerNetwork
	}
	if !req.Intent.Valid() {
		return nil, ErrInvalidIntent
	}

	from, err := s.users.Get(ctx, req.FromUserID)
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}
	if from.UserType != repo.UserTypeFounder {
		return nil, ErrNotFounder
	}

	to, err := s.users.Get(ctx, req.ToUserID)
	switch {
	case repo.IsNotFound(err):
		return nil, ErrTargetNotFound
	case err != nil:
		return nil, fmt.Errorf("get recipient: %w", err)
	case to.UserType != repo.UserTypeMentor || !to.IsApproved:
		return nil, ErrTargetNotFound
	}

	exists, err := s.store.Exists(ctx, req.FromUserID, req.ToUserID, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}
	reverse, err := s.store.Exists(ctx, req.ToUserID, req.FromUserID, repo.ConnectionPending)
	if err != nil {
		return nil, err
	}
	if reverse {
		return nil, ErrReverseRequestPending
	}

	cr := &repo.ConnectionRequest{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Intent:     req.Intent,
		Message:    strings.TrimSpace(req.Message),
		Status:     repo.ConnectionPending,
	}
	if err := s.store.Create(ctx, cr); err != nil {
		if repo.IsUniqueViolation(err, "") {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create connection request: %w", err)
	}
	fromSummary, toSummary := from.Summary(), to.Summary()
	cr.FromUser, cr.ToUser = &fromSummary, &toSummary
	return cr, nil
}

func (s *connectionService) Accept(ctx context.Context, id, userID uuid.UUID) (*repo.ConnectionRequest, error) {
	return s.respond(ctx, id, userID, repo.ConnectionAccepted)
}

func (s *connectionService) Decline(ctx context.Context, id, userID uuid.UUID) (*repo.ConnectionRequest, error) {
	return s.respond(ctx, id, userID, repo.ConnectionDeclined)
}

// respond only succeeds for a pending request addressed to userID. Anything
// else, including requests the user sent, reads as not found.
func (s *connectionService) respond(ctx context.Context, id, userID uuid.UUID, status repo.ConnectionStatus) (*repo.ConnectionRequest, error) {
	if err := s.store.Respond(ctx, id, userID, status, s.now()); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	cr, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload connection request: %w", err)
	}
	return cr, nil
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func (s *connectionService) ListConnections(ctx context.Context, userID uuid.UUID) ([]Connection, error) {
	crs, err := s.store.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Connection, 0, len(crs))
	for _, cr := range crs {
		other := cr.ToUser
		if cr.ToUserID == userID {
			other = cr.FromUser
		}
		out = append(out, Connection{
			ID:            cr.ID,
			Intent:        cr.Intent,
			ConnectedUser: other,
			ConnectedAt:   cr.RespondedAt,
		})
	}
	return out, nil
}

func (s *connectionService) ListSent(ctx context.Context, userID uuid.UUID) ([]*repo.ConnectionRequest, error) {
	crs, err := s.store.ListSent(ctx, userID)
	return orEmpty(crs), err
}

func (s *connectionService) ListReceived(ctx context.Context, userID uuid.UUID) ([]*repo.ConnectionRequest, error) {
	crs, err := s.store.ListReceived(ctx, userID)
	return orEmpty(crs), err
}

func orEmpty(crs []*repo.ConnectionRequest) []*repo.ConnectionRequest {
	if crs == nil {
		return []*repo.ConnectionRequest{}
	}
	return crs
}

package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
	"github.com/Alijeyrad/sapan_backend/pkg/util/codes"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Booking, error)
	ConfirmedExists(ctx context.Context, mentorID uuid.UUID, start time.Time) (bool, error)
	Create(ctx context.Context, b *repo.Booking) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*repo.Booking, error)
	Transition(ctx context.Context, id uuid.UUID, from, to repo.BookingStatus) error
}

type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// Notifier is fire-and-forget: implementations log their own failures.
type Notifier interface {
	SendConfirmation(ctx context.Context, b *repo.Booking)
	SendCancellation(ctx context.Context, b *repo.Booking, cancelledBy repo.UserType)
}

type Metrics interface {
	Created(ctx context.Context)
	Conflict(ctx context.Context)
	Cancelled(ctx context.Context, by string)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	MentorID  uuid.UUID
	FounderID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Agenda    string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*repo.Booking, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error)
	List(ctx context.Context, userID uuid.UUID) ([]*repo.Booking, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error)
	Complete(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Options struct {
	MeetLinkBase string
	Now          func() time.Time
}

type bookingService struct {
	store    Store
	users    UserReader
	notifier Notifier
	metrics  Metrics
	opts     Options
}

func New(store Store, users UserReader, notifier Notifier, metrics Metrics, opts Options) Service {
	if opts.MeetLinkBase == "" {
		opts.MeetLinkBase = "https://meet.google.com/"
	}
	if !strings.HasSuffix(opts.MeetLinkBase, "/") {
		opts.MeetLinkBase += "/"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &bookingService{store: store, users: users, notifier: notifier, metrics: metrics, opts: opts}
}

// MeetLink derives the meeting URL for a booking id.
func MeetLink(base string, id uuid.UUID) string {
	return base + codes.MeetCode("sapan-"+id.String())
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *bookingService) Create(ctx context.Context, req CreateRequest) (*repo.Booking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if !req.StartTime.After(s.opts.Now()) {
		return nil, ErrStartInPast
	}
	if req.MentorID == req.FounderID {
		return nil, ErrSelfBooking
	}

	mentor, err := s.users.Get(ctx, req.MentorID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if mentor.UserType != repo.UserTypeMentor {
		return nil, ErrMentorNotFound
	}

	taken, err := s.store.ConfirmedExists(ctx, req.MentorID, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken {
		s.conflict(ctx)
		return nil, ErrSlotNotAvailable
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("booking id: %w", err)
	}
	b := &repo.Booking{
		ID:             id,
		MentorID:       req.MentorID,
		FounderID:      req.FounderID,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Agenda:         strings.TrimSpace(req.Agenda),
		GoogleMeetLink: MeetLink(s.opts.MeetLinkBase, id),
		Status:         repo.BookingConfirmed,
	}

	// The pre-check above is advisory. The partial unique index decides
	// between concurrent inserts.
	if err := s.store.Create(ctx, b); err != nil {
		if repo.IsUniqueViolation(err, repo.ConstraintOneConfirmedPerStart) {
			s.conflict(ctx)
			return nil, ErrSlotNotAvailable
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Created(ctx)
	}

	full, err := s.store.Get(ctx, b.ID)
	if err != nil {
		reqctx.Logger(ctx).Warn("reload of created booking failed, returning inserted row",
			slog.String("booking_id", b.ID.String()),
			slog.String("error", err.Error()),
		)
		full = b
	}
	if s.notifier != nil {
		s.notifier.SendConfirmation(ctx, full)
	}
	return full, nil
}

func (s *bookingService) conflict(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.Conflict(ctx)
	}
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func (s *bookingService) Get(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.MentorID != userID && b.FounderID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, userID uuid.UUID) ([]*repo.Booking, error) {
	bs, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bs == nil {
		bs = []*repo.Booking{}
	}
	return bs, nil
}

func (s *bookingService) load(ctx context.Context, id uuid.UUID) (*repo.Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func (s *bookingService) Cancel(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		to repo.BookingStatus
		by repo.UserType
	)
	switch userID {
	case b.FounderID:
		to, by = repo.BookingCancelledByFounder, repo.UserTypeFounder
	case b.MentorID:
		to, by = repo.BookingCancelledByMentor, repo.UserTypeMentor
	default:
		return nil, ErrForbidden
	}
	if b.Status != repo.BookingConfirmed {
		return nil, ErrNotCancellable
	}

	if err := s.store.Transition(ctx, b.ID, repo.BookingConfirmed, to); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotCancellable
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	b.Status = to

	if s.metrics != nil {
		s.metrics.Cancelled(ctx, string(by))
	}
	if s.notifier != nil {
		s.notifier.SendCancellation(ctx, b, by)
	}
	return b, nil
}

func (s *bookingService) Complete(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.MentorID != userID {
		return nil, ErrForbidden
	}
	if b.Status != repo.BookingConfirmed || b.StartTime.After(s.opts.Now()) {
		return nil, ErrNotCompletable
	}
	if err := s.store.Transition(ctx, b.ID, repo.BookingConfirmed, repo.BookingCompleted); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotCompletable
		}
		return nil, fmt.Errorf("complete booking: %w", err)
	}
	b.Status = repo.BookingCompleted
	return b, nil
}

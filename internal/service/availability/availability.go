package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/config"
	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// RuleStore persists availability rules.
type RuleStore interface {
	List(ctx context.Context, mentorID uuid.UUID, activeOnly bool) ([]*repo.AvailabilityRule, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.AvailabilityRule, error)
	Create(ctx context.Context, r *repo.AvailabilityRule) error
	Update(ctx context.Context, r *repo.AvailabilityRule) error
	Delete(ctx context.Context, id, mentorID uuid.UUID) error
}

// BookingReader returns confirmed booking starts for a mentor.
type BookingReader interface {
	ConfirmedStarts(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]time.Time, error)
}

type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// BusyTimeProvider reports external calendar busy periods. Any error is
// treated as "no busy periods" by the slot listing.
type BusyTimeProvider interface {
	BusyIntervals(ctx context.Context, userID uuid.UUID, min, max time.Time) ([]Interval, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// RuleInput is a create/update payload. Nil optionals take defaults on
// create and keep the stored value on update.
type RuleInput struct {
	Weekday             int
	StartTime           string
	EndTime             string
	SlotDurationMinutes *int
	Timezone            *string
	IsActive            *bool
}

type SlotsResult struct {
	MentorID uuid.UUID `json:"mentor_id"`
	Slots    []Slot    `json:"slots"`
	Message  string    `json:"message,omitempty"`
}

const NoAvailabilityMessage = "Mentor has no availability set"

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	ListRules(ctx context.Context, mentorID uuid.UUID) ([]*repo.AvailabilityRule, error)
	CreateRule(ctx context.Context, mentorID uuid.UUID, in RuleInput) (*repo.AvailabilityRule, error)
	UpdateRule(ctx context.Context, mentorID, ruleID uuid.UUID, in RuleInput) (*repo.AvailabilityRule, error)
	DeleteRule(ctx context.Context, mentorID, ruleID uuid.UUID) error

	// ListSlots is read-only and idempotent for a fixed clock.
	ListSlots(ctx context.Context, mentorID uuid.UUID, startDate time.Time, days int) (*SlotsResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Options struct {
	DefaultTimezone string
	DefaultDays     int
	MaxDays         int
	Now             func() time.Time
}

func OptionsFromConfig(c config.BookingConfig) Options {
	return Options{
		DefaultTimezone: c.DefaultTimezone,
		DefaultDays:     c.DefaultWindowDays,
		MaxDays:         c.MaxWindowDays,
	}
}

type availabilityService struct {
	rules    RuleStore
	bookings BookingReader
	users    UserReader
	busy     BusyTimeProvider
	opts     Options
}

// New builds the service. busy may be nil when no calendar integration is
// configured.
func New(rules RuleStore, bookings BookingReader, users UserReader, busy BusyTimeProvider, opts Options) Service {
	if opts.DefaultTimezone == "" {
		opts.DefaultTimezone = "Asia/Bangkok"
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 14
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 60
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &availabilityService{rules: rules, bookings: bookings, users: users, busy: busy, opts: opts}
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

func (s *availabilityService) requireMentor(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrNotMentor
		}
		return fmt.Errorf("get user: %w", err)
	}
	if u.UserType != repo.UserTypeMentor {
		return ErrNotMentor
	}
	return nil
}

func (s *availabilityService) ListRules(ctx context.Context, mentorID uuid.UUID) ([]*repo.AvailabilityRule, error) {
	if err := s.requireMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	rules, err := s.rules.List(ctx, mentorID, false)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if rules == nil {
		rules = []*repo.AvailabilityRule{}
	}
	return rules, nil
}

func (s *availabilityService) CreateRule(ctx context.Context, mentorID uuid.UUID, in RuleInput) (*repo.AvailabilityRule, error) {
	if err := s.requireMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	rule := &repo.AvailabilityRule{
		MentorID:            mentorID,
		SlotDurationMinutes: 30,
		Timezone:            s.opts.DefaultTimezone,
		IsActive:            true,
	}
	if err := applyRuleInput(rule, in); err != nil {
		return nil, err
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	return rule, nil
}

func (s *availabilityService) UpdateRule(ctx context.Context, mentorID, ruleID uuid.UUID, in RuleInput) (*repo.AvailabilityRule, error) {
	if err := s.requireMentor(ctx, mentorID); err != nil {
		return nil, err
	}
	rule, err := s.rules.Get(ctx, ruleID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get rule: %w", err)
	}
	if rule.MentorID != mentorID {
		return nil, ErrRuleNotFound
	}
	if err := applyRuleInput(rule, in); err != nil {
		return nil, err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("update rule: %w", err)
	}
	return rule, nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, mentorID, ruleID uuid.UUID) error {
	if err := s.requireMentor(ctx, mentorID); err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, ruleID, mentorID); err != nil {
		if repo.IsNotFound(err) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

func applyRuleInput(r *repo.AvailabilityRule, in RuleInput) error {
	if in.Weekday < 0 || in.Weekday > 6 {
		return ErrInvalidWeekday
	}
	start, err := repo.ParseTimeOfDay(strings.TrimSpace(in.StartTime))
	if err != nil {
		return ErrInvalidTime
	}
	end, err := repo.ParseTimeOfDay(strings.TrimSpace(in.EndTime))
	if err != nil {
		return ErrInvalidTime
	}
	if !start.Before(end) {
		return ErrInvalidTimeRange
	}
	dur := r.SlotDurationMinutes
	if in.SlotDurationMinutes != nil {
		dur = *in.SlotDurationMinutes
	}
	if dur < 15 || dur > 120 {
		return ErrInvalidDuration
	}
	tz := r.Timezone
	if in.Timezone != nil {
		tz = strings.TrimSpace(*in.Timezone)
	}
	if _, err := loadLocation(tz); err != nil {
		return ErrInvalidTimezone
	}

	r.Weekday = in.Weekday
	r.StartTime = start
	r.EndTime = end
	r.SlotDurationMinutes = dur
	r.Timezone = tz
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	return nil
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

func (s *availabilityService) ListSlots(ctx context.Context, mentorID uuid.UUID, startDate time.Time, days int) (*SlotsResult, error) {
	now := s.opts.Now()
	if startDate.IsZero() {
		startDate = now.UTC()
	}
	if days == 0 {
		days = s.opts.DefaultDays
	}
	if days < 1 || days > s.opts.MaxDays {
		return nil, ErrInvalidDays
	}

	mentor, err := s.users.Get(ctx, mentorID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if mentor.UserType != repo.UserTypeMentor {
		return nil, ErrMentorNotFound
	}

	rules, err := s.rules.List(ctx, mentorID, true)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if len(rules) == 0 {
		return &SlotsResult{MentorID: mentorID, Slots: []Slot{}, Message: NoAvailabilityMessage}, nil
	}

	y, m, d := startDate.Date()
	endDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)

	slots := GenerateSlots(rules, startDate, days, now)

	booked, err := s.bookings.ConfirmedStarts(ctx, mentorID, now, endDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list booked starts: %w", err)
	}

	busyMax := endDate.Add(24*time.Hour - time.Millisecond)
	busy := s.busyIntervals(ctx, mentorID, now, busyMax)

	out := Resolve(slots, booked, busy)
	if out == nil {
		out = []Slot{}
	}
	return &SlotsResult{MentorID: mentorID, Slots: out}, nil
}

// busyIntervals never fails: calendar errors degrade to booking-only
// conflict detection.
func (s *availabilityService) busyIntervals(ctx context.Context, mentorID uuid.UUID, min, max time.Time) []Interval {
	if s.busy == nil {
		return nil
	}
	busy, err := s.busy.BusyIntervals(ctx, mentorID, min, max)
	if err != nil {
		log := reqctx.Logger(ctx)
		if errors.Is(err, ErrNoCalendar) {
			log.Debug("mentor has no calendar connected, using bookings only", slog.String("mentor_id", mentorID.String()))
		} else {
			log.Warn("calendar busy lookup failed, using bookings only",
				slog.String("mentor_id", mentorID.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return busy
}

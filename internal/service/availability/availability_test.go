package availability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type fakeRules struct {
	mu    sync.Mutex
	rules map[uuid.UUID]*repo.AvailabilityRule
}

func newFakeRules() *fakeRules { return &fakeRules{rules: map[uuid.UUID]*repo.AvailabilityRule{}} }

func (f *fakeRules) List(_ context.Context, mentorID uuid.UUID, activeOnly bool) ([]*repo.AvailabilityRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repo.AvailabilityRule
	for _, r := range f.rules {
		if r.MentorID == mentorID && (!activeOnly || r.IsActive) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRules) Get(_ context.Context, id uuid.UUID) (*repo.AvailabilityRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[id]
	if !ok {
		return nil, &repo.NotFoundError{}
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRules) Create(_ context.Context, r *repo.AvailabilityRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = uuid.New()
	cp := *r
	f.rules[r.ID] = &cp
	return nil
}

func (f *fakeRules) Update(_ context.Context, r *repo.AvailabilityRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rules[r.ID]
	if !ok || cur.MentorID != r.MentorID {
		return &repo.NotFoundError{}
	}
	cp := *r
	f.rules[r.ID] = &cp
	return nil
}

func (f *fakeRules) Delete(_ context.Context, id, mentorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rules[id]
	if !ok || cur.MentorID != mentorID {
		return &repo.NotFoundError{}
	}
	delete(f.rules, id)
	return nil
}

type fakeBookings struct {
	starts   []time.Time
	from, to time.Time
}

func (f *fakeBookings) ConfirmedStarts(_ context.Context, _ uuid.UUID, from, to time.Time) ([]time.Time, error) {
	f.from, f.to = from, to
	return f.starts, nil
}

type fakeUsers map[uuid.UUID]*repo.User

func (f fakeUsers) Get(_ context.Context, id uuid.UUID) (*repo.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, &repo.NotFoundError{}
	}
	return u, nil
}

type fakeBusy struct {
	intervals []Interval
	err       error
	min, max  time.Time
}

func (f *fakeBusy) BusyIntervals(_ context.Context, _ uuid.UUID, min, max time.Time) ([]Interval, error) {
	f.min, f.max = min, max
	return f.intervals, f.err
}

type fixture struct {
	svc      Service
	rules    *fakeRules
	bookings *fakeBookings
	busy     *fakeBusy
	mentor   uuid.UUID
	founder  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mentor, founder := uuid.New(), uuid.New()
	users := fakeUsers{
		mentor:  {ID: mentor, UserType: repo.UserTypeMentor},
		founder: {ID: founder, UserType: repo.UserTypeFounder},
	}
	f := &fixture{
		rules:    newFakeRules(),
		bookings: &fakeBookings{},
		busy:     &fakeBusy{},
		mentor:   mentor,
		founder:  founder,
	}
	f.svc = New(f.rules, f.bookings, users, f.busy, Options{
		DefaultTimezone: "UTC",
		Now:             func() time.Time { return satNoon },
	})
	return f
}

func ptr[T any](v T) *T { return &v }

func TestCreateRule_Defaults(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.CreateRule(context.Background(), f.mentor, RuleInput{Weekday: 0, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, 30, r.SlotDurationMinutes)
	assert.Equal(t, "UTC", r.Timezone)
	assert.True(t, r.IsActive)
	assert.NotEqual(t, uuid.Nil, r.ID)
}

func TestCreateRule_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RuleInput
		want error
	}{
		{"weekday", RuleInput{Weekday: 7, StartTime: "09:00", EndTime: "10:00"}, ErrInvalidWeekday},
		{"bad time", RuleInput{StartTime: "9am", EndTime: "10:00"}, ErrInvalidTime},
		{"reversed", RuleInput{StartTime: "10:00", EndTime: "09:00"}, ErrInvalidTimeRange},
		{"equal", RuleInput{StartTime: "10:00", EndTime: "10:00"}, ErrInvalidTimeRange},
		{"short", RuleInput{StartTime: "09:00", EndTime: "10:00", SlotDurationMinutes: ptr(10)}, ErrInvalidDuration},
		{"long", RuleInput{StartTime: "09:00", EndTime: "12:00", SlotDurationMinutes: ptr(121)}, ErrInvalidDuration},
		{"zone", RuleInput{StartTime: "09:00", EndTime: "10:00", Timezone: ptr("Nowhere/City")}, ErrInvalidTimezone},
		{"server zone", RuleInput{StartTime: "09:00", EndTime: "10:00", Timezone: ptr("Local")}, ErrInvalidTimezone},
		{"blank zone", RuleInput{StartTime: "09:00", EndTime: "10:00", Timezone: ptr("  ")}, ErrInvalidTimezone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateRule(ctx, f.mentor, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestCreateRule_FounderRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateRule(context.Background(), f.founder, RuleInput{StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrNotMentor)
}

func TestUpdateAndDeleteRule_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateRule(ctx, f.mentor, RuleInput{StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateRule(ctx, f.mentor, r.ID, RuleInput{Weekday: 2, StartTime: "13:00", EndTime: "15:00", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Weekday)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 30, updated.SlotDurationMinutes)

	_, err = f.svc.UpdateRule(ctx, f.mentor, uuid.New(), RuleInput{StartTime: "13:00", EndTime: "15:00"})
	assert.ErrorIs(t, err, ErrRuleNotFound)

	require.NoError(t, f.svc.DeleteRule(ctx, f.mentor, r.ID))
	assert.ErrorIs(t, f.svc.DeleteRule(ctx, f.mentor, r.ID), ErrRuleNotFound)
}

func TestListSlots_NoRules(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ListSlots(context.Background(), f.mentor, saturday, 3)
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
	assert.Equal(t, NoAvailabilityMessage, res.Message)
}

func TestListSlots_UnknownMentor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListSlots(ctx, uuid.New(), saturday, 3)
	assert.ErrorIs(t, err, ErrMentorNotFound)

	_, err = f.svc.ListSlots(ctx, f.founder, saturday, 3)
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestListSlots_DaysBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListSlots(ctx, f.mentor, saturday, -1)
	assert.ErrorIs(t, err, ErrInvalidDays)
	_, err = f.svc.ListSlots(ctx, f.mentor, saturday, 61)
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestListSlots_BookingsAndBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateRule(ctx, f.mentor, RuleInput{Weekday: 0, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	f.bookings.starts = []time.Time{time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}

	res, err := f.svc.ListSlots(ctx, f.mentor, saturday, 3)
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	assert.False(t, res.Slots[0].IsAvailable)
	assert.True(t, res.Slots[1].IsAvailable)

	// endDate = Jan 7; bookings are read up to Jan 8 and busy up to the last
	// millisecond of Jan 7.
	assert.Equal(t, satNoon, f.bookings.from)
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), f.bookings.to)
	assert.Equal(t, satNoon, f.busy.min)
	assert.Equal(t, time.Date(2025, 1, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC), f.busy.max)

	f.bookings.starts = nil
	f.busy.intervals = []Interval{{
		Start: time.Date(2025, 1, 6, 9, 15, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 6, 9, 45, 0, 0, time.UTC),
	}}
	res, err = f.svc.ListSlots(ctx, f.mentor, saturday, 3)
	require.NoError(t, err)
	assert.False(t, res.Slots[0].IsAvailable)
	assert.False(t, res.Slots[1].IsAvailable)
}

func TestListSlots_CalendarFailureDegrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateRule(ctx, f.mentor, RuleInput{Weekday: 0, StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	f.busy.intervals = []Interval{{Start: monday, End: monday.Add(48 * time.Hour)}}
	f.busy.err = errors.New("google says no")

	res, err := f.svc.ListSlots(ctx, f.mentor, saturday, 3)
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	assert.True(t, res.Slots[0].IsAvailable)
	assert.True(t, res.Slots[1].IsAvailable)
}

func TestListSlots_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateRule(ctx, f.mentor, RuleInput{Weekday: 0, StartTime: "09:00", EndTime: "12:00", SlotDurationMinutes: ptr(45)})
	require.NoError(t, err)
	f.bookings.starts = []time.Time{time.Date(2025, 1, 6, 9, 45, 0, 0, time.UTC)}

	first, err := f.svc.ListSlots(ctx, f.mentor, saturday, 14)
	require.NoError(t, err)
	second, err := f.svc.ListSlots(ctx, f.mentor, saturday, 14)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

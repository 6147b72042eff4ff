package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/availability"
	"github.com/Alijeyrad/sapan_backend/internal/service/booking"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockAvailability struct{ mock.Mock }

func (m *mockAvailability) ListRules(ctx context.Context, mentorID uuid.UUID) ([]*repo.AvailabilityRule, error) {
	args := m.Called(ctx, mentorID)
	rules, _ := args.Get(0).([]*repo.AvailabilityRule)
	return rules, args.Error(1)
}

func (m *mockAvailability) CreateRule(ctx context.Context, mentorID uuid.UUID, in availability.RuleInput) (*repo.AvailabilityRule, error) {
	args := m.Called(ctx, mentorID, in)
	r, _ := args.Get(0).(*repo.AvailabilityRule)
	return r, args.Error(1)
}

func (m *mockAvailability) UpdateRule(ctx context.Context, mentorID, ruleID uuid.UUID, in availability.RuleInput) (*repo.AvailabilityRule, error) {
	args := m.Called(ctx, mentorID, ruleID, in)
	r, _ := args.Get(0).(*repo.AvailabilityRule)
	return r, args.Error(1)
}

func (m *mockAvailability) DeleteRule(ctx context.Context, mentorID, ruleID uuid.UUID) error {
	return m.Called(ctx, mentorID, ruleID).Error(0)
}

func (m *mockAvailability) ListSlots(ctx context.Context, mentorID uuid.UUID, startDate time.Time, days int) (*availability.SlotsResult, error) {
	args := m.Called(ctx, mentorID, startDate, days)
	r, _ := args.Get(0).(*availability.SlotsResult)
	return r, args.Error(1)
}

type mockBooking struct{ mock.Mock }

func (m *mockBooking) Create(ctx context.Context, req booking.CreateRequest) (*repo.Booking, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*repo.Booking)
	return b, args.Error(1)
}

func (m *mockBooking) Get(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error) {
	args := m.Called(ctx, id, userID)
	b, _ := args.Get(0).(*repo.Booking)
	return b, args.Error(1)
}

func (m *mockBooking) List(ctx context.Context, userID uuid.UUID) ([]*repo.Booking, error) {
	args := m.Called(ctx, userID)
	bs, _ := args.Get(0).([]*repo.Booking)
	return bs, args.Error(1)
}

func (m *mockBooking) Cancel(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error) {
	args := m.Called(ctx, id, userID)
	b, _ := args.Get(0).(*repo.Booking)
	return b, args.Error(1)
}

func (m *mockBooking) Complete(ctx context.Context, id, userID uuid.UUID) (*repo.Booking, error) {
	args := m.Called(ctx, id, userID)
	b, _ := args.Get(0).(*repo.Booking)
	return b, args.Error(1)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newApp signs every request in as caller, standing in for AuthRequired.
func newApp(caller uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{StructValidator: NewValidator()})
	app.Use(func(c fiber.Ctx) error {
		c.Locals(pasetotoken.CtxKeyClaims, &pasetotoken.Claims{Type: pasetotoken.TokenTypeAccess, UserID: caller})
		return c.Next()
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

func TestSlots_QueryParsing(t *testing.T) {
	mentorID := uuid.New()

	t.Run("date and days forwarded", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(uuid.New())
		app.Get("/mentors/:id/slots", NewAvailabilityHandler(svc).Slots)

		day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		svc.On("ListSlots", mock.Anything, mentorID, day, 7).
			Return(&availability.SlotsResult{MentorID: mentorID, Slots: []availability.Slot{}}, nil)

		status, body := do(t, app, "GET", "/mentors/"+mentorID.String()+"/slots?date=2026-03-02&days=7", "")
		assert.Equal(t, fiber.StatusOK, status)
		data := body["data"].(map[string]any)
		assert.Equal(t, mentorID.String(), data["mentor_id"])
		svc.AssertExpectations(t)
	})

	t.Run("defaults left to the service", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(uuid.New())
		app.Get("/mentors/:id/slots", NewAvailabilityHandler(svc).Slots)

		svc.On("ListSlots", mock.Anything, mentorID, time.Time{}, 0).
			Return(&availability.SlotsResult{MentorID: mentorID, Message: availability.NoAvailabilityMessage}, nil)

		status, body := do(t, app, "GET", "/mentors/"+mentorID.String()+"/slots", "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, availability.NoAvailabilityMessage, body["data"].(map[string]any)["message"])
	})

	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"bad date", "?date=03/02/2026", "Invalid date format. Use YYYY-MM-DD"},
		{"zero days", "?days=0", availability.ErrInvalidDays.Error()},
		{"non-numeric days", "?days=abc", availability.ErrInvalidDays.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockAvailability{}
			app := newApp(uuid.New())
			app.Get("/mentors/:id/slots", NewAvailabilityHandler(svc).Slots)

			status, body := do(t, app, "GET", "/mentors/"+mentorID.String()+"/slots"+tc.query, "")
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tc.want, body["error"])
			svc.AssertNotCalled(t, "ListSlots", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("unknown mentor", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(uuid.New())
		app.Get("/mentors/:id/slots", NewAvailabilityHandler(svc).Slots)

		svc.On("ListSlots", mock.Anything, mentorID, time.Time{}, 0).Return(nil, availability.ErrMentorNotFound)

		status, _ := do(t, app, "GET", "/mentors/"+mentorID.String()+"/slots", "")
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}

func TestCreateRule(t *testing.T) {
	caller := uuid.New()

	t.Run("weekday is required", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(caller)
		app.Post("/rules", NewAvailabilityHandler(svc).CreateRule)

		status, body := do(t, app, "POST", "/rules", `{"start_time":"09:00","end_time":"12:00"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "weekday is required", body["error"])
	})

	t.Run("monday is accepted", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(caller)
		app.Post("/rules", NewAvailabilityHandler(svc).CreateRule)

		svc.On("CreateRule", mock.Anything, caller, mock.MatchedBy(func(in availability.RuleInput) bool {
			return in.Weekday == 0 && in.StartTime == "09:00" && in.EndTime == "12:00"
		})).Return(&repo.AvailabilityRule{ID: uuid.New(), MentorID: caller}, nil)

		status, _ := do(t, app, "POST", "/rules", `{"weekday":0,"start_time":"09:00","end_time":"12:00"}`)
		assert.Equal(t, fiber.StatusCreated, status)
		svc.AssertExpectations(t)
	})

	t.Run("founder cannot manage rules", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(caller)
		app.Post("/rules", NewAvailabilityHandler(svc).CreateRule)

		svc.On("CreateRule", mock.Anything, caller, mock.Anything).Return(nil, availability.ErrNotMentor)

		status, body := do(t, app, "POST", "/rules", `{"weekday":2,"start_time":"09:00","end_time":"12:00"}`)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, availability.ErrNotMentor.Error(), body["error"])
	})

	t.Run("validation error from service", func(t *testing.T) {
		svc := &mockAvailability{}
		app := newApp(caller)
		app.Post("/rules", NewAvailabilityHandler(svc).CreateRule)

		svc.On("CreateRule", mock.Anything, caller, mock.Anything).Return(nil, availability.ErrInvalidWeekday)

		status, _ := do(t, app, "POST", "/rules", `{"weekday":9,"start_time":"09:00","end_time":"12:00"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

// ---------------------------------------------------------------------------
// Booking
// ---------------------------------------------------------------------------

func TestCreateBooking(t *testing.T) {
	caller := uuid.New()
	mentorID := uuid.New()
	body := `{"mentor_id":"` + mentorID.String() + `","start_time":"2026-03-02T09:00:00Z","end_time":"2026-03-02T09:30:00Z","agenda":"pricing"}`

	t.Run("caller books as founder", func(t *testing.T) {
		svc := &mockBooking{}
		app := newApp(caller)
		app.Post("/bookings", NewBookingHandler(svc).Create)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(r booking.CreateRequest) bool {
			return r.FounderID == caller && r.MentorID == mentorID && r.Agenda == "pricing" &&
				r.StartTime.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
		})).Return(&repo.Booking{ID: uuid.New(), Status: repo.BookingConfirmed}, nil)

		status, _ := do(t, app, "POST", "/bookings", body)
		assert.Equal(t, fiber.StatusCreated, status)
		svc.AssertExpectations(t)
	})

	t.Run("taken slot is a conflict", func(t *testing.T) {
		svc := &mockBooking{}
		app := newApp(caller)
		app.Post("/bookings", NewBookingHandler(svc).Create)

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, booking.ErrSlotNotAvailable)

		status, resp := do(t, app, "POST", "/bookings", body)
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, "This slot is no longer available", resp["error"])
	})

	t.Run("missing mentor id", func(t *testing.T) {
		svc := &mockBooking{}
		app := newApp(caller)
		app.Post("/bookings", NewBookingHandler(svc).Create)

		status, resp := do(t, app, "POST", "/bookings", `{"start_time":"2026-03-02T09:00:00Z","end_time":"2026-03-02T09:30:00Z"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "mentor_id is required", resp["error"])
	})
}

func TestBookingErrorMapping(t *testing.T) {
	caller := uuid.New()
	id := uuid.New()

	cases := []struct {
		err  error
		want int
	}{
		{booking.ErrNotFound, fiber.StatusNotFound},
		{booking.ErrForbidden, fiber.StatusForbidden},
		{booking.ErrNotCancellable, fiber.StatusConflict},
		{booking.ErrStartInPast, fiber.StatusBadRequest},
		{assert.AnError, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &mockBooking{}
			app := newApp(caller)
			app.Post("/bookings/:id/cancel", NewBookingHandler(svc).Cancel)

			svc.On("Cancel", mock.Anything, id, caller).Return(nil, tc.err)

			status, _ := do(t, app, "POST", "/bookings/"+id.String()+"/cancel", "")
			assert.Equal(t, tc.want, status)
		})
	}

	t.Run("malformed id", func(t *testing.T) {
		svc := &mockBooking{}
		app := newApp(caller)
		app.Get("/bookings/:id", NewBookingHandler(svc).Get)

		status, _ := do(t, app, "GET", "/bookings/not-a-uuid", "")
		assert.Equal(t, fiber.StatusNotFound, status)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUnauthenticated(t *testing.T) {
	app := fiber.New(fiber.Config{StructValidator: NewValidator()})
	app.Get("/bookings", NewBookingHandler(&mockBooking{}).List)

	status, body := do(t, app, "GET", "/bookings", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])
}

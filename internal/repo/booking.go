package repo

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const tableBookings = "bookings"

var bookingColumns = []string{
	"id", "mentor_id", "founder_id", "start_time", "end_time", "agenda",
	"google_meet_link", "status", "reminder_sent", "created_at", "updated_at",
}

func scanBooking(row rowScanner, b *Booking) error {
	return row.Scan(
		&b.ID, &b.MentorID, &b.FounderID, &b.StartTime, &b.EndTime, &b.Agenda,
		&b.GoogleMeetLink, &b.Status, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt,
	)
}

type BookingRepo struct {
	c *conn
}

func (r *BookingRepo) list(ctx context.Context, p *entsql.Predicate, order ...string) ([]*Booking, error) {
	t := entsql.Table(tableBookings)
	s := r.c.builder().Select(t.Columns(bookingColumns...)...).From(t).Where(p)
	if len(order) > 0 {
		s.OrderBy(order...)
	}
	q, args := s.Query()
	var out []*Booking
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		b := &Booking{}
		if err := scanBooking(row, b); err != nil {
			return err
		}
		out = append(out, b)
		return nil
	})
	return out, err
}

// Get returns the booking with both parties attached.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	bs, err := r.list(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if len(bs) == 0 {
		return nil, notFound("booking")
	}
	if err := r.attachParties(ctx, bs); err != nil {
		return nil, err
	}
	return bs[0], nil
}

// Create inserts a confirmed booking. A concurrent insert for the same
// mentor and start returns a *ConstraintError on
// ConstraintOneConfirmedPerStart.
func (r *BookingRepo) Create(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	if b.Status == "" {
		b.Status = BookingConfirmed
	}
	now := r.c.timestamp()
	b.CreatedAt, b.UpdatedAt = now, now

	q, args := r.c.builder().Insert(tableBookings).
		Columns(bookingColumns...).
		Values(
			b.ID, b.MentorID, b.FounderID, b.StartTime.UTC(), b.EndTime.UTC(), b.Agenda,
			b.GoogleMeetLink, string(b.Status), b.ReminderSent, b.CreatedAt, b.UpdatedAt,
		).Query()
	if _, err := r.c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// ConfirmedExists reports whether the mentor has a confirmed booking
// starting exactly at start.
func (r *BookingRepo) ConfirmedExists(ctx context.Context, mentorID uuid.UUID, start time.Time) (bool, error) {
	t := entsql.Table(tableBookings)
	s := r.c.builder().Select(t.C("id")).From(t).Where(entsql.And(
		entsql.EQ(t.C("mentor_id"), mentorID),
		entsql.EQ(t.C("start_time"), start.UTC()),
		entsql.EQ(t.C("status"), string(BookingConfirmed)),
	))
	ok, err := r.c.exists(ctx, s)
	if err != nil {
		return false, fmt.Errorf("check booking: %w", err)
	}
	return ok, nil
}

// ConfirmedStarts returns start instants of the mentor's confirmed bookings
// with from <= start < to.
func (r *BookingRepo) ConfirmedStarts(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	t := entsql.Table(tableBookings)
	q, args := r.c.builder().Select(t.C("start_time")).From(t).Where(entsql.And(
		entsql.EQ(t.C("mentor_id"), mentorID),
		entsql.EQ(t.C("status"), string(BookingConfirmed)),
		entsql.GTE(t.C("start_time"), from.UTC()),
		entsql.LT(t.C("start_time"), to.UTC()),
	)).OrderBy(t.C("start_time")).Query()

	var out []time.Time
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		var ts time.Time
		if err := row.Scan(&ts); err != nil {
			return err
		}
		out = append(out, ts.UTC())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list booked starts: %w", err)
	}
	return out, nil
}

// ListForUser returns bookings where the user is either party, newest first.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Booking, error) {
	bs, err := r.list(ctx,
		entsql.Or(entsql.EQ("mentor_id", userID), entsql.EQ("founder_id", userID)),
		entsql.Desc("start_time"),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if err := r.attachParties(ctx, bs); err != nil {
		return nil, err
	}
	return bs, nil
}

// DueReminders returns confirmed bookings starting in [from, to) that have
// not had a reminder.
func (r *BookingRepo) DueReminders(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	bs, err := r.list(ctx, entsql.And(
		entsql.EQ("status", string(BookingConfirmed)),
		entsql.EQ("reminder_sent", false),
		entsql.GTE("start_time", from.UTC()),
		entsql.LT("start_time", to.UTC()),
	), "start_time")
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	if err := r.attachParties(ctx, bs); err != nil {
		return nil, err
	}
	return bs, nil
}

func (r *BookingRepo) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, entsql.EQ("id", id), "reminder_sent", true)
}

// Transition moves a booking from one status to another. It returns a
// *NotFoundError when the booking is missing or not in status from.
func (r *BookingRepo) Transition(ctx context.Context, id uuid.UUID, from, to BookingStatus) error {
	return r.update(ctx,
		entsql.And(entsql.EQ("id", id), entsql.EQ("status", string(from))),
		"status", string(to))
}

func (r *BookingRepo) update(ctx context.Context, where *entsql.Predicate, col string, v any) error {
	q, args := r.c.builder().Update(tableBookings).
		Set(col, v).
		Set("updated_at", r.c.timestamp()).
		Where(where).
		Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", col, err)
	}
	if n == 0 {
		return notFound("booking")
	}
	return nil
}

func (r *BookingRepo) attachParties(ctx context.Context, bs []*Booking) error {
	if len(bs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(bs)*2)
	for _, b := range bs {
		ids = append(ids, b.MentorID, b.FounderID)
	}
	users, err := (&UserRepo{r.c}).GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, b := range bs {
		b.Mentor = summaries(users, b.MentorID)
		b.Founder = summaries(users, b.FounderID)
	}
	return nil
}

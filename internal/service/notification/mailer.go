package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/email"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
)

type BookingLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.Booking, error)
}

// Mailer sends the office-hours emails for one booking to both parties.
type Mailer struct {
	bookings BookingLoader
	sender   email.Sender
	loc      *time.Location
	now      func() time.Time
}

// NewMailer renders times in loc. A nil loc means UTC.
func NewMailer(bookings BookingLoader, sender email.Sender, loc *time.Location) *Mailer {
	return &Mailer{bookings: bookings, sender: sender, loc: loc, now: time.Now}
}

func (m *Mailer) load(ctx context.Context, id uuid.UUID) (*repo.Booking, error) {
	b, err := m.bookings.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", id, err)
	}
	if b.Mentor == nil || b.Founder == nil {
		return nil, fmt.Errorf("booking %s: missing parties", id)
	}
	return b, nil
}

func (m *Mailer) data(b *repo.Booking) email.BookingEmailData {
	return email.BookingEmailData{
		Founder:  party(b.Founder),
		Mentor:   party(b.Mentor),
		Start:    b.StartTime,
		End:      b.EndTime,
		MeetLink: b.GoogleMeetLink,
		Agenda:   b.Agenda,
		Location: m.loc,
	}
}

func (m *Mailer) SendConfirmation(ctx context.Context, bookingID uuid.UUID) error {
	b, err := m.load(ctx, bookingID)
	if err != nil {
		return err
	}
	invite := BuildInvite(b, m.now())
	founder, mentor := email.BuildBookingConfirmationEmails(m.data(b), &invite)
	return m.sendPair(ctx, "confirmation", founder, mentor)
}

func (m *Mailer) SendCancellation(ctx context.Context, bookingID uuid.UUID, cancelledBy repo.UserType) error {
	b, err := m.load(ctx, bookingID)
	if err != nil {
		return err
	}
	d := m.data(b)
	d.CancelledBy = string(cancelledBy)
	founder, mentor := email.BuildBookingCancellationEmails(d)
	return m.sendPair(ctx, "cancellation", founder, mentor)
}

// SendReminder takes a booking with parties already attached.
func (m *Mailer) SendReminder(ctx context.Context, b *repo.Booking) error {
	if b.Mentor == nil || b.Founder == nil {
		return fmt.Errorf("booking %s: missing parties", b.ID)
	}
	founder, mentor := email.BuildBookingReminderEmails(m.data(b))
	return m.sendPair(ctx, "reminder", founder, mentor)
}

// sendPair tries both messages and returns the joined failures.
func (m *Mailer) sendPair(ctx context.Context, kind string, msgs ...email.Message) error {
	var errs []error
	for _, msg := range msgs {
		err := m.sender.Send(ctx, msg)
		switch {
		case err == nil:
			continue
		case errors.As(err, &email.ErrDisabled{}):
			reqctx.Logger(ctx).Debug("email disabled, skipping", "kind", kind, "to", msg.To)
			return nil
		default:
			errs = append(errs, fmt.Errorf("%s to %v: %w", kind, msg.To, err))
		}
	}
	return errors.Join(errs...)
}

func party(u *repo.UserSummary) email.Party {
	return email.Party{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type ReminderStore interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]*repo.Booking, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// Reminder mails both parties roughly a day before a confirmed session.
type Reminder struct {
	store  ReminderStore
	mailer *Mailer
	lead   time.Duration
	now    func() time.Time
}

// NewReminder targets sessions starting lead from now, plus or minus an hour.
// A non-positive lead means 24h.
func NewReminder(store ReminderStore, mailer *Mailer, lead time.Duration) *Reminder {
	if lead <= 0 {
		lead = 24 * time.Hour
	}
	return &Reminder{store: store, mailer: mailer, lead: lead, now: time.Now}
}

// Run sends every due reminder once and reports how many went out. A
// booking whose mail fails stays due for the next run.
func (r *Reminder) Run(ctx context.Context) (int, error) {
	now := r.now()
	from, to := now.Add(r.lead-time.Hour), now.Add(r.lead+time.Hour)

	due, err := r.store.DueReminders(ctx, from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range due {
		if err := r.mailer.SendReminder(ctx, b); err != nil {
			slog.Warn("reminder: send failed", "booking_id", b.ID, "error", err)
			continue
		}
		if err := r.store.MarkReminderSent(ctx, b.ID); err != nil {
			return sent, fmt.Errorf("mark reminder sent: %w", err)
		}
		sent++
	}
	slog.Info("reminder: run complete", "due", len(due), "sent", sent)
	return sent, nil
}

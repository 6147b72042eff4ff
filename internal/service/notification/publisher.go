package notification

import (
	"context"
	"encoding/json"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
)

// Conn is the publishing side of *nats.Conn.
type Conn interface {
	Publish(subj string, data []byte) error
}

// Publisher emits booking events. A nil conn turns every call into a no-op.
type Publisher struct {
	nc     Conn
	prefix string
}

func NewPublisher(nc Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{nc: nc, prefix: prefix}
}

func (p *Publisher) SendConfirmation(ctx context.Context, b *repo.Booking) {
	p.publish(ctx, EventConfirmed, BookingEvent{BookingID: b.ID})
}

func (p *Publisher) SendCancellation(ctx context.Context, b *repo.Booking, cancelledBy repo.UserType) {
	p.publish(ctx, EventCancelled, BookingEvent{BookingID: b.ID, CancelledBy: cancelledBy})
}

func (p *Publisher) publish(ctx context.Context, event string, ev BookingEvent) {
	if p.nc == nil {
		return
	}
	log := reqctx.Logger(ctx)
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error("marshal booking event", "event", event, "error", err)
		return
	}
	subj := Subject(p.prefix, event, ev.BookingID)
	if err := p.nc.Publish(subj, data); err != nil {
		log.Warn("publish booking event failed", "subject", subj, "error", err)
		return
	}
	log.Debug("booking event published", "subject", subj)
}

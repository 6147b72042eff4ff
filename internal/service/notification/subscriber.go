package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	queueGroup  = "sapan-mailer"
	sendTimeout = 30 * time.Second
)

// Subscriber delivers booking emails for events published by Publisher.
// Every replica joins the same queue group so each event is mailed once.
type Subscriber struct {
	nc     *nats.Conn
	mailer *Mailer
	prefix string
	subs   []*nats.Subscription
}

func NewSubscriber(nc *nats.Conn, mailer *Mailer, prefix string) *Subscriber {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Subscriber{nc: nc, mailer: mailer, prefix: prefix}
}

func (s *Subscriber) Start() error {
	for _, event := range []string{EventConfirmed, EventCancelled} {
		event := event
		sub, err := s.nc.QueueSubscribe(Wildcard(s.prefix, event), queueGroup, func(msg *nats.Msg) {
			if err := s.handle(event, msg.Data); err != nil {
				slog.Warn("mailer: event failed", "subject", msg.Subject, "error", err)
			}
		})
		if err != nil {
			s.Stop()
			return fmt.Errorf("subscribe %s: %w", event, err)
		}
		s.subs = append(s.subs, sub)
	}
	slog.Info("mailer: started", "prefix", s.prefix)
	return nil
}

func (s *Subscriber) Stop() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
}

func (s *Subscriber) handle(event string, data []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	switch event {
	case EventConfirmed:
		return s.mailer.SendConfirmation(ctx, ev.BookingID)
	case EventCancelled:
		return s.mailer.SendCancellation(ctx, ev.BookingID, ev.CancelledBy)
	}
	return fmt.Errorf("unknown event %q", event)
}

package app

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/sapan_backend/config"
	"github.com/Alijeyrad/sapan_backend/internal/service/notification"
)

// WorkerModule registers the NATS booking-mail worker.
var WorkerModule = fx.Module("workers",
	fx.Provide(ProvideSubscriber),
	fx.Invoke(RegisterWorkers),
)

func ProvideSubscriber(nc *nats.Conn, mailer *notification.Mailer, cfg *config.Config) *notification.Subscriber {
	return notification.NewSubscriber(nc, mailer, cfg.Nats.SubjectPrefix)
}

type WorkerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Subscriber *notification.Subscriber
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Subscriber.Start()
		},
		OnStop: func(ctx context.Context) error {
			// connection drain is handled by ProvideNatsClient
			p.Subscriber.Stop()
			return nil
		},
	})
}

package app

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/sapan_backend/config"
	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	"github.com/Alijeyrad/sapan_backend/pkg/crypto"
	"github.com/Alijeyrad/sapan_backend/pkg/database"
	"github.com/Alijeyrad/sapan_backend/pkg/email"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
	"github.com/Alijeyrad/sapan_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
	redispkg "github.com/Alijeyrad/sapan_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/sapan_backend/pkg/s3"
	"github.com/Alijeyrad/sapan_backend/pkg/util/password"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideRepoClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideRoles),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideBookingMetrics),
	fx.Provide(ProvideS3Storage),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideGoogleClient),
	fx.Provide(ProvideCryptoBox),
	fx.Provide(ProvidePasetoManager),
	fx.Provide(ProvidePasswordHasher),
)

func ProvideRepoClient(lc fx.Lifecycle, cfg *config.Config) (*repo.Client, error) {
	if cfg.Database.Migrations.AutoMigrate {
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
	}
	drv, err := database.NewDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	client := repo.NewClient(drv)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	authCfg := authorize.FromCentralConfig(cfg.Authorization)
	enforcer, cleanup, err := authorize.NewEnforcer(authCfg, database.NewDSN(cfg.CasbinDatabase))
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer, authCfg.SuperadminBypass)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if authCfg.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

func ProvideRoles(auth authorize.IAuthorization) *authorize.Roles {
	return authorize.NewRoles(auth)
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

// ProvideS3Storage returns a nil Storage when uploads are disabled; the user
// service answers photo uploads with ErrStorageDisabled in that case.
func ProvideS3Storage(cfg *config.Config) (s3pkg.Storage, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cli, err := s3pkg.New(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	return cli, nil
}

// ProvideNatsClient connects lazily: with no server reachable the publisher
// buffers and reconnects in the background instead of failing boot.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(cfg.Observability.ServiceName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideGoogleClient(cfg *config.Config) *google.Client {
	gc := google.New(cfg.Google)
	if !gc.Enabled() {
		slog.Warn("google oauth client not configured; sign-in and calendar sync are unavailable")
	}
	return gc
}

// ProvideCryptoBox builds the calendar token sealer. Outside production a
// missing key falls back to a per-process random one, so stored calendar
// tokens do not survive a restart.
func ProvideCryptoBox(cfg *config.Config) (*crypto.Box, error) {
	if k := cfg.Authentication.EncryptionKey; k != "" {
		return crypto.NewBoxFromHex(k)
	}
	if cfg.IsProduction() {
		return nil, errors.New("authentication.encryption_key is required in production")
	}
	slog.Warn("authentication.encryption_key not set; using an ephemeral key")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return crypto.NewBox(key)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvidePasswordHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg.Password))
}

func ProvideBookingMetrics(_ *observability.Provider) (*observability.BookingMetrics, error) {
	// Depends on the provider so counters bind after the meter is installed.
	return observability.NewBookingMetrics()
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(),
		observability.FromCentralConfig(cfg.Observability, cfg.Server.Environment))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

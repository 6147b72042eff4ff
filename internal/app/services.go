package app

import (
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/sapan_backend/config"
	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/auth"
	"github.com/Alijeyrad/sapan_backend/internal/service/availability"
	"github.com/Alijeyrad/sapan_backend/internal/service/booking"
	"github.com/Alijeyrad/sapan_backend/internal/service/calendar"
	"github.com/Alijeyrad/sapan_backend/internal/service/catalog"
	"github.com/Alijeyrad/sapan_backend/internal/service/connection"
	"github.com/Alijeyrad/sapan_backend/internal/service/notification"
	"github.com/Alijeyrad/sapan_backend/internal/service/profile"
	"github.com/Alijeyrad/sapan_backend/internal/service/user"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	"github.com/Alijeyrad/sapan_backend/pkg/crypto"
	"github.com/Alijeyrad/sapan_backend/pkg/email"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
	"github.com/Alijeyrad/sapan_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
	s3pkg "github.com/Alijeyrad/sapan_backend/pkg/s3"
	"github.com/Alijeyrad/sapan_backend/pkg/util/password"
	"github.com/redis/go-redis/v9"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideSessionStore,
		ProvideAuthService,
		ProvideUserService,
		ProvideProfileService,
		ProvideCatalogService,
		ProvideCalendarService,
		ProvideAvailabilityService,
		ProvideBookingService,
		ProvideConnectionService,
		ProvidePublisher,
		ProvideMailer,
		ProvideReminder,
	),
)

func ProvideSessionStore(rdb *redis.Client, tokens *pasetotoken.Manager) *auth.SessionStore {
	// sessions live as long as the refresh token that can extend them
	return auth.NewSessionStore(rdb, tokens.RefreshTTL())
}

func ProvideAuthService(
	db *repo.Client,
	sessions *auth.SessionStore,
	tokens *pasetotoken.Manager,
	googleClient *google.Client,
	roles *authorize.Roles,
	hasher *password.Hasher,
	cfg *config.Config,
) auth.Service {
	return auth.New(db.Users, sessions, tokens, googleClient, roles, hasher, auth.Options{
		DevLogin: cfg.Authentication.DevLogin && !cfg.IsProduction(),
		StateTTL: time.Duration(cfg.Authentication.OAuthStateTTLMinutes) * time.Minute,
	})
}

func ProvideUserService(db *repo.Client, roles *authorize.Roles, storage s3pkg.Storage) user.Service {
	return user.New(db.Users, roles, storage)
}

func ProvideProfileService(db *repo.Client) profile.Service {
	return profile.New(db.Profiles, db.Catalog, db.Users)
}

func ProvideCatalogService(db *repo.Client) catalog.Service {
	return catalog.New(db.Catalog)
}

func ProvideCalendarService(db *repo.Client, sessions *auth.SessionStore, googleClient *google.Client, box *crypto.Box) calendar.Service {
	return calendar.New(db.CalendarTokens, sessions, googleClient, box)
}

func ProvideAvailabilityService(db *repo.Client, cal calendar.Service, cfg *config.Config) availability.Service {
	return availability.New(db.Rules, db.Bookings, db.Users, cal, availability.OptionsFromConfig(cfg.Booking))
}

func ProvideBookingService(
	db *repo.Client,
	pub *notification.Publisher,
	metrics *observability.BookingMetrics,
	cfg *config.Config,
) booking.Service {
	return booking.New(db.Bookings, db.Users, pub, metrics, booking.Options{
		MeetLinkBase: cfg.Booking.MeetLinkBase,
	})
}

func ProvideConnectionService(db *repo.Client) connection.Service {
	return connection.New(db.Connections, db.Users, time.Now)
}

func ProvidePublisher(nc *nats.Conn, cfg *config.Config) *notification.Publisher {
	return notification.NewPublisher(nc, cfg.Nats.SubjectPrefix)
}

func ProvideMailer(db *repo.Client, sender *email.Client, cfg *config.Config) (*notification.Mailer, error) {
	loc, err := time.LoadLocation(cfg.Booking.DefaultTimezone)
	if err != nil {
		return nil, err
	}
	return notification.NewMailer(db.Bookings, sender, loc), nil
}

func ProvideReminder(db *repo.Client, mailer *notification.Mailer, cfg *config.Config) *notification.Reminder {
	return notification.NewReminder(db.Bookings, mailer, time.Duration(cfg.Booking.ReminderLeadHours)*time.Hour)
}

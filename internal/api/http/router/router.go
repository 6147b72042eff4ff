package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/sapan_backend/config"
	"github.com/Alijeyrad/sapan_backend/internal/api/http/handler"
	"github.com/Alijeyrad/sapan_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/sapan_backend/internal/service/auth"
	"github.com/Alijeyrad/sapan_backend/internal/service/availability"
	"github.com/Alijeyrad/sapan_backend/internal/service/booking"
	"github.com/Alijeyrad/sapan_backend/internal/service/calendar"
	"github.com/Alijeyrad/sapan_backend/internal/service/catalog"
	"github.com/Alijeyrad/sapan_backend/internal/service/connection"
	"github.com/Alijeyrad/sapan_backend/internal/service/profile"
	"github.com/Alijeyrad/sapan_backend/internal/service/user"
	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Auth            authorize.IAuthorization
	Sessions        *auth.SessionStore
	PasetoMgr       *pasetotoken.Manager
	AuthSvc         auth.Service
	UserSvc         user.Service
	ProfileSvc      profile.Service
	CatalogSvc      catalog.Service
	AvailabilitySvc availability.Service
	BookingSvc      booking.Service
	ConnectionSvc   connection.Service
	CalendarSvc     calendar.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Sessions)

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}
	requireSelf := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequireSelf(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc)
	profileH := handler.NewProfileHandler(r.p.ProfileSvc)
	catalogH := handler.NewCatalogHandler(r.p.CatalogSvc)
	availabilityH := handler.NewAvailabilityHandler(r.p.AvailabilitySvc)
	bookingH := handler.NewBookingHandler(r.p.BookingSvc)
	connectionH := handler.NewConnectionHandler(r.p.ConnectionSvc)
	calendarH := handler.NewCalendarHandler(r.p.CalendarSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerUserRoutes(api, userH, authRequired, requireSelf, requirePerm)
	r.registerProfileRoutes(api, profileH, availabilityH, authRequired, requireSelf, requirePerm)
	r.registerCatalogRoutes(api, catalogH)
	r.registerAvailabilityRoutes(api, availabilityH, authRequired, requirePerm)
	r.registerBookingRoutes(api, bookingH, authRequired, requirePerm)
	r.registerConnectionRoutes(api, connectionH, authRequired, requirePerm)
	r.registerCalendarRoutes(api, calendarH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/sapan_backend/pkg/authorize"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
)

type liveSessions map[uuid.UUID]bool

func (l liveSessions) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return l[id], nil
}

// recordingAuth allows exactly the tuples in allow and records every check.
type recordingAuth struct {
	authorize.IAuthorization
	allow map[authorize.Domain]bool
	seen  []authorize.Domain
}

func (r *recordingAuth) MustEnforce(_ context.Context, _ authorize.GroupSubject, d authorize.Domain, _ authorize.Resource, _ authorize.Action) error {
	r.seen = append(r.seen, d)
	if r.allow[d] {
		return nil
	}
	return authorize.ErrForbidden
}

func newManager(t *testing.T) *pasetotoken.Manager {
	t.Helper()
	keys := pasetotoken.NewLocalKeys()
	m, err := pasetotoken.New(pasetotoken.Config{
		Mode:       keys.Mode,
		Issuer:     "sapan",
		Audience:   "sapan-web",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, keys)
	require.NoError(t, err)
	return m
}

func status(t *testing.T, app *fiber.App, authz string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	mgr := newManager(t)
	uid, sid, dead := uuid.New(), uuid.New(), uuid.New()
	sessions := liveSessions{sid: true}

	app := fiber.New()
	app.Get("/", AuthRequired(mgr, sessions), func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		require.True(t, ok)
		assert.Equal(t, uid, claims.UserID)
		assert.Equal(t, uid, reqctx.ClaimsFromContext(c.Context()).GetUserID())
		return c.SendStatus(fiber.StatusNoContent)
	})

	access, err := mgr.IssueAccess(uid, &sid)
	require.NoError(t, err)
	refresh, err := mgr.IssueRefresh(uid, &sid)
	require.NoError(t, err)
	revoked, err := mgr.IssueAccess(uid, &dead)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, status(t, app, "Bearer "+access))
	assert.Equal(t, fiber.StatusNoContent, status(t, app, "bearer "+access))

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, access))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "Bearer "+refresh))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "Bearer "+revoked))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "Bearer garbage"))
}

func TestRBAC(t *testing.T) {
	uid := uuid.New()
	withClaims := func(c fiber.Ctx) error {
		c.Locals(pasetotoken.CtxKeyClaims, &pasetotoken.Claims{UserID: uid})
		return c.Next()
	}
	done := func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	t.Run("permission checks the sys domain", func(t *testing.T) {
		auth := &recordingAuth{allow: map[authorize.Domain]bool{authorize.DomainSys: true}}
		app := fiber.New()
		app.Get("/", withClaims, RequirePermission(auth, authorize.ResourceBooking, authorize.ActionCreate), done)

		assert.Equal(t, fiber.StatusNoContent, status(t, app, ""))
		assert.Equal(t, []authorize.Domain{authorize.DomainSys}, auth.seen)
	})

	t.Run("self checks the private user domain", func(t *testing.T) {
		own := authorize.UserDomain(uid.String())
		auth := &recordingAuth{allow: map[authorize.Domain]bool{own: true}}
		app := fiber.New()
		app.Get("/", withClaims, RequireSelf(auth, authorize.ResourceProfile, authorize.ActionUpdate), done)

		assert.Equal(t, fiber.StatusNoContent, status(t, app, ""))
		assert.Equal(t, []authorize.Domain{own}, auth.seen)
	})

	t.Run("denied", func(t *testing.T) {
		auth := &recordingAuth{}
		app := fiber.New()
		app.Get("/", withClaims, RequirePermission(auth, authorize.ResourceMentor, authorize.ActionApprove), done)

		assert.Equal(t, fiber.StatusForbidden, status(t, app, ""))
	})

	t.Run("no claims", func(t *testing.T) {
		auth := &recordingAuth{}
		app := fiber.New()
		app.Get("/", RequirePermission(auth, authorize.ResourceBooking, authorize.ActionList), done)

		assert.Equal(t, fiber.StatusUnauthorized, status(t, app, ""))
		assert.Empty(t, auth.seen)
	})
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	var seen string
	app.Get("/", RequestID(), func(c fiber.Ctx) error {
		seen = reqctx.RequestIDFromContext(c.Context())
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "rid-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "rid-42", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, "rid-42", seen)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	resp.Body.Close()
	_, perr := uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, perr)
	assert.Equal(t, resp.Header.Get(HeaderRequestID), seen)
}

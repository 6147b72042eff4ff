package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
	"github.com/Alijeyrad/sapan_backend/pkg/util/password"
)

const sessionTTL = 30 * 24 * time.Hour

type memUsers struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*repo.User
	hashes map[uuid.UUID]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]*repo.User{}, hashes: map[uuid.UUID]string{}}
}

func (m *memUsers) Get(_ context.Context, id uuid.UUID) (*repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, &repo.NotFoundError{}
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &repo.NotFoundError{}
}

func (m *memUsers) Create(_ context.Context, u *repo.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uuid.New()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(ctx context.Context, id uuid.UUID, in repo.UserUpdate) (*repo.User, error) {
	m.mu.Lock()
	u := m.byID[id]
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	m.mu.Unlock()
	return m.Get(ctx, id)
}

func (m *memUsers) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].PasswordHash = hash
	return nil
}

type fakeGoogle struct {
	identity *google.Identity
	err      error
}

func (f *fakeGoogle) LoginURL(redirectURI, state string) (string, error) {
	return "https://accounts.example/auth?state=" + state, nil
}

func (f *fakeGoogle) Exchange(context.Context, string, string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "at"}, nil
}

func (f *fakeGoogle) UserInfo(context.Context, *oauth2.Token) (*google.Identity, error) {
	return f.identity, nil
}

type recordingRoles struct{ assigned []uuid.UUID }

func (r *recordingRoles) AssignSelf(_ context.Context, id uuid.UUID) error {
	r.assigned = append(r.assigned, id)
	return nil
}

type fixture struct {
	svc    Service
	mock   redismock.ClientMock
	users  *memUsers
	google *fakeGoogle
	roles  *recordingRoles
	tokens *pasetotoken.Manager
}

func newFixture(t *testing.T, devLogin bool) *fixture {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })

	keys := pasetotoken.NewLocalKeys()
	tokens, err := pasetotoken.New(pasetotoken.Config{
		Mode: keys.Mode, Issuer: "sapan", Audience: "sapan-web",
		AccessTTL: 15 * time.Minute, RefreshTTL: sessionTTL,
	}, keys)
	require.NoError(t, err)

	f := &fixture{
		mock:   mock,
		users:  newMemUsers(),
		google: &fakeGoogle{identity: &google.Identity{Email: "Sarah@Example.com", Verified: true, GivenName: "Sarah", FamilyName: "Chen", Picture: "https://img/p.png"}},
		roles:  &recordingRoles{},
		tokens: tokens,
	}
	hasher := password.NewHasher(password.Config{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	f.svc = New(f.users, NewSessionStore(rdb, sessionTTL), tokens, f.google, f.roles, hasher, Options{DevLogin: devLogin})
	return f
}

func (f *fixture) expectSession() {
	f.mock.Regexp().ExpectSet(`^session:.+$`, `.+`, sessionTTL).SetVal("OK")
}

func TestGoogleAuthURL(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.GoogleAuthURL(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingRedirect)

	f.mock.Regexp().ExpectSet(`^oauth_state:.+$`, `^http://localhost:3000/cb$`, 10*time.Minute).SetVal("OK")
	url, err := f.svc.GoogleAuthURL(context.Background(), "http://localhost:3000/cb")
	require.NoError(t, err)
	assert.Contains(t, url, "state=")
}

func TestGoogleLogin_CreatesUser(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.mock.ExpectGetDel("oauth_state:nonce").SetVal("http://localhost:3000/cb")
	f.expectSession()

	res, err := f.svc.GoogleLogin(ctx, GoogleLoginRequest{Code: "c", RedirectURI: "http://localhost:3000/cb", State: "nonce"})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "sarah@example.com", res.User.Email)
	assert.Equal(t, "Chen", res.User.LastName)
	assert.Equal(t, []uuid.UUID{res.User.ID}, f.roles.assigned)

	claims, err := f.tokens.VerifyType(res.RefreshToken, pasetotoken.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestGoogleLogin_ExistingUserFillsBlanks(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	existing := &repo.User{Email: "sarah@example.com", FirstName: "Sally"}
	require.NoError(t, f.users.Create(ctx, existing))
	f.expectSession()

	res, err := f.svc.GoogleLogin(ctx, GoogleLoginRequest{Code: "c", RedirectURI: "http://cb"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, existing.ID, res.User.ID)
	assert.Equal(t, "Sally", res.User.FirstName)
	assert.Equal(t, "Chen", res.User.LastName)
	assert.Empty(t, f.roles.assigned)
}

func TestGoogleLogin_Rejections(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.GoogleLogin(ctx, GoogleLoginRequest{RedirectURI: "http://cb"})
	assert.ErrorIs(t, err, ErrMissingCode)

	f.mock.ExpectGetDel("oauth_state:gone").RedisNil()
	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Code: "c", RedirectURI: "http://cb", State: "gone"})
	assert.ErrorIs(t, err, ErrInvalidState)

	f.mock.ExpectGetDel("oauth_state:other").SetVal("http://elsewhere")
	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Code: "c", RedirectURI: "http://cb", State: "other"})
	assert.ErrorIs(t, err, ErrInvalidState)

	f.google.identity.Verified = false
	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Code: "c", RedirectURI: "http://cb"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	f.google.err = errors.New("invalid_grant")
	_, err = f.svc.GoogleLogin(ctx, GoogleLoginRequest{Code: "c", RedirectURI: "http://cb"})
	assert.ErrorIs(t, err, ErrGoogleFailed)
}

func TestDevLogin(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.DevLogin(ctx, "", "x")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	f.expectSession()
	first, err := f.svc.DevLogin(ctx, "mentor1@mock.sapan.io", "mockpassword123")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "mentor1", first.User.FirstName)

	f.expectSession()
	second, err := f.svc.DevLogin(ctx, "MENTOR1@mock.sapan.io", "mockpassword123")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)

	_, err = f.svc.DevLogin(ctx, "mentor1@mock.sapan.io", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDevLogin_Disabled(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.DevLogin(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrDevLoginDisabled)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	uid, sid := uuid.New(), uuid.New()

	refresh, err := f.tokens.IssueRefresh(uid, &sid)
	require.NoError(t, err)
	access, err := f.tokens.IssueAccess(uid, &sid)
	require.NoError(t, err)

	f.mock.ExpectExpire("session:"+sid.String(), sessionTTL).SetVal(true)
	out, err := f.svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, refresh, out.RefreshToken)
	assert.Equal(t, int64(900), out.ExpiresIn)

	f.mock.ExpectExpire("session:"+sid.String(), sessionTTL).SetVal(false)
	_, err = f.svc.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Refresh(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, false)
	sid := uuid.New()

	f.mock.ExpectDel("session:" + sid.String()).SetVal(1)
	require.NoError(t, f.svc.Logout(context.Background(), sid))

	f.mock.ExpectDel("session:" + sid.String()).SetVal(0)
	require.NoError(t, f.svc.Logout(context.Background(), sid))
}

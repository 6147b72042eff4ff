package calendar

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/availability"
	"github.com/Alijeyrad/sapan_backend/pkg/crypto"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
)

type memTokens struct {
	rows    map[uuid.UUID]*repo.CalendarToken
	upserts int
}

func (m *memTokens) Get(_ context.Context, userID uuid.UUID) (*repo.CalendarToken, error) {
	t, ok := m.rows[userID]
	if !ok {
		return nil, &repo.NotFoundError{}
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) Upsert(_ context.Context, tok *repo.CalendarToken) error {
	m.upserts++
	cp := *tok
	if old, ok := m.rows[tok.UserID]; ok {
		cp.CreatedAt = old.CreatedAt
		if cp.RefreshToken == "" {
			cp.RefreshToken = old.RefreshToken
		}
	} else {
		cp.CreatedAt = time.Now()
	}
	m.rows[tok.UserID] = &cp
	return nil
}

func (m *memTokens) Delete(_ context.Context, userID uuid.UUID) error {
	if _, ok := m.rows[userID]; !ok {
		return &repo.NotFoundError{}
	}
	delete(m.rows, userID)
	return nil
}

type memStates map[string]string

func (m memStates) SaveState(_ context.Context, state, redirectURI string, _ time.Duration) error {
	m[state] = redirectURI
	return nil
}

func (m memStates) ConsumeState(_ context.Context, state string) (string, error) {
	v, ok := m[state]
	if !ok {
		return "", errors.New("missing")
	}
	delete(m, state)
	return v, nil
}

type fakeGoogle struct {
	exchanged   *oauth2.Token
	exchangeErr error
	refreshed   *oauth2.Token
	busy        []google.Busy
	gotAccess   string
}

func (f *fakeGoogle) CalendarURL(redirectURI, state string) (string, error) {
	return "https://accounts.example/o?state=" + state + "&redirect_uri=" + redirectURI, nil
}

func (f *fakeGoogle) Exchange(context.Context, string, string) (*oauth2.Token, error) {
	return f.exchanged, f.exchangeErr
}

func (f *fakeGoogle) TokenSource(_ context.Context, tok *oauth2.Token) oauth2.TokenSource {
	if f.refreshed != nil {
		return oauth2.StaticTokenSource(f.refreshed)
	}
	return oauth2.StaticTokenSource(tok)
}

func (f *fakeGoogle) FreeBusy(_ context.Context, ts oauth2.TokenSource, _, _ time.Time) ([]google.Busy, error) {
	tok, err := ts.Token()
	if err != nil {
		return nil, err
	}
	f.gotAccess = tok.AccessToken
	return f.busy, nil
}

func newTestService(t *testing.T) (Service, *memTokens, *fakeGoogle, memStates) {
	t.Helper()
	box, err := crypto.NewBox(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	tokens := &memTokens{rows: map[uuid.UUID]*repo.CalendarToken{}}
	g := &fakeGoogle{}
	states := memStates{}
	return New(tokens, states, g, box), tokens, g, states
}

func TestAuthURL(t *testing.T) {
	svc, _, _, states := newTestService(t)

	_, err := svc.AuthURL(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrMissingRedirect)

	url, err := svc.AuthURL(context.Background(), uuid.New(), "http://localhost:3000/calendar")
	require.NoError(t, err)
	assert.Contains(t, url, "state=")
	assert.Len(t, states, 1)
}

func TestCallback_StoresSealedTokens(t *testing.T) {
	ctx := context.Background()
	svc, tokens, g, _ := newTestService(t)
	uid := uuid.New()
	g.exchanged = (&oauth2.Token{AccessToken: "ya29.a", RefreshToken: "1//r", Expiry: time.Now().Add(time.Hour)}).
		WithExtra(map[string]any{"scope": "https://www.googleapis.com/auth/calendar.readonly"})

	st, err := svc.Callback(ctx, uid, CallbackRequest{Code: "c", RedirectURI: "http://cb"})
	require.NoError(t, err)
	assert.True(t, st.IsConnected)

	row := tokens.rows[uid]
	require.NotNil(t, row)
	assert.NotEqual(t, "ya29.a", row.AccessToken)
	assert.NotEqual(t, "1//r", row.RefreshToken)
	assert.Equal(t, "https://www.googleapis.com/auth/calendar.readonly", row.Scope)
}

func TestCallback_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _, g, _ := newTestService(t)

	_, err := svc.Callback(ctx, uuid.New(), CallbackRequest{RedirectURI: "http://cb"})
	assert.ErrorIs(t, err, ErrMissingCode)

	_, err = svc.Callback(ctx, uuid.New(), CallbackRequest{Code: "c", RedirectURI: "http://cb", State: "nope"})
	assert.ErrorIs(t, err, ErrInvalidState)

	g.exchangeErr = errors.New("invalid_grant")
	_, err = svc.Callback(ctx, uuid.New(), CallbackRequest{Code: "c", RedirectURI: "http://cb"})
	assert.ErrorIs(t, err, ErrConnectFailed)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestStatusAndDisconnect(t *testing.T) {
	ctx := context.Background()
	svc, _, g, _ := newTestService(t)
	uid := uuid.New()

	st, err := svc.Status(ctx, uid)
	require.NoError(t, err)
	assert.False(t, st.IsConnected)
	assert.ErrorIs(t, svc.Disconnect(ctx, uid), ErrNotConnected)

	g.exchanged = &oauth2.Token{AccessToken: "a", RefreshToken: "r"}
	_, err = svc.Callback(ctx, uid, CallbackRequest{Code: "c", RedirectURI: "http://cb"})
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(ctx, uid))
	st, err = svc.Status(ctx, uid)
	require.NoError(t, err)
	assert.False(t, st.IsConnected)
}

func TestBusyIntervals(t *testing.T) {
	ctx := context.Background()
	svc, tokens, g, _ := newTestService(t)
	uid := uuid.New()
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	_, err := svc.BusyIntervals(ctx, uid, from, from.Add(24*time.Hour))
	assert.ErrorIs(t, err, availability.ErrNoCalendar)

	g.exchanged = &oauth2.Token{AccessToken: "stored", RefreshToken: "r", Expiry: from.Add(time.Hour)}
	_, err = svc.Callback(ctx, uid, CallbackRequest{Code: "c", RedirectURI: "http://cb"})
	require.NoError(t, err)

	g.busy = []google.Busy{{Start: from.Add(9 * time.Hour), End: from.Add(10 * time.Hour)}}
	got, err := svc.BusyIntervals(ctx, uid, from, from.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []availability.Interval{{Start: from.Add(9 * time.Hour), End: from.Add(10 * time.Hour)}}, got)
	assert.Equal(t, "stored", g.gotAccess)
	assert.Equal(t, 1, tokens.upserts)
}

func TestBusyIntervals_PersistsRefreshedToken(t *testing.T) {
	ctx := context.Background()
	svc, tokens, g, _ := newTestService(t)
	uid := uuid.New()

	g.exchanged = &oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)}
	_, err := svc.Callback(ctx, uid, CallbackRequest{Code: "c", RedirectURI: "http://cb"})
	require.NoError(t, err)
	sealedRefresh := tokens.rows[uid].RefreshToken

	g.refreshed = &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}
	_, err = svc.BusyIntervals(ctx, uid, time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "new", g.gotAccess)
	assert.Equal(t, 2, tokens.upserts)
	assert.Equal(t, sealedRefresh, tokens.rows[uid].RefreshToken)
}

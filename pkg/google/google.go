// Package google wraps the Google OAuth, userinfo and calendar freebusy
// APIs used for sign-in and mentor busy-time lookups.
package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/Alijeyrad/sapan_backend/config"
)

var (
	ErrNotConfigured = errors.New("google: client id/secret not configured")
	ErrCalendar      = errors.New("google: calendar query failed")
)

const primaryCalendar = "primary"

var loginScopes = []string{"openid", oauth2v2.UserinfoEmailScope, oauth2v2.UserinfoProfileScope}

// Identity is the subset of the Google userinfo record we keep.
type Identity struct {
	Email      string
	Verified   bool
	GivenName  string
	FamilyName string
	Picture    string
}

// Busy is one freebusy period.
type Busy struct {
	Start time.Time
	End   time.Time
}

type Client struct {
	clientID     string
	clientSecret string
	timeout      time.Duration
	endpoint     oauth2.Endpoint
	opts         []option.ClientOption
}

func New(cfg config.GoogleConfig) *Client {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		timeout:      cfg.CalendarTimeout(),
		endpoint:     googleoauth.Endpoint,
	}
}

// WithEndpoint points the OAuth flow and API calls at another host. Used by
// tests against httptest servers.
func (c *Client) WithEndpoint(ep oauth2.Endpoint, apiOpts ...option.ClientOption) *Client {
	cp := *c
	cp.endpoint = ep
	cp.opts = apiOpts
	return &cp
}

func (c *Client) Enabled() bool { return c.clientID != "" && c.clientSecret != "" }

func (c *Client) oauthConfig(redirectURI string, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint:     c.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
	}
}

// LoginURL returns the consent URL for sign-in.
func (c *Client) LoginURL(redirectURI, state string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	return c.oauthConfig(redirectURI, loginScopes...).AuthCodeURL(state), nil
}

// CalendarURL returns the consent URL for read-only calendar access. It asks
// for offline access and forces the consent screen so a refresh token is
// always issued.
func (c *Client) CalendarURL(redirectURI, state string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	cfg := c.oauthConfig(redirectURI, calendar.CalendarReadonlyScope)
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	tok, err := c.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google: exchange code: %w", err)
	}
	return tok, nil
}

// TokenSource returns a source that refreshes tok when it expires.
func (c *Client) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return c.oauthConfig("").TokenSource(ctx, tok)
}

// UserInfo fetches the signed-in user's identity.
func (c *Client) UserInfo(ctx context.Context, tok *oauth2.Token) (*Identity, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(c.TokenSource(ctx, tok))}, c.opts...)
	svc, err := oauth2v2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: userinfo: %w", err)
	}
	id := &Identity{
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}
	if info.VerifiedEmail != nil {
		id.Verified = *info.VerifiedEmail
	}
	return id, nil
}

// FreeBusy returns busy periods on the primary calendar in [min, max]. The
// call is bounded by the configured calendar timeout.
func (c *Client) FreeBusy(ctx context.Context, ts oauth2.TokenSource, min, max time.Time) ([]Busy, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: calendar client: %w", err)
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: min.UTC().Format(time.RFC3339),
		TimeMax: max.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: primaryCalendar}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendar, err)
	}

	cal, ok := resp.Calendars[primaryCalendar]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCalendar, cal.Errors[0].Reason)
	}
	return parseBusy(cal.Busy)
}

func parseBusy(periods []*calendar.TimePeriod) ([]Busy, error) {
	out := make([]Busy, 0, len(periods))
	for _, p := range periods {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("google: busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("google: busy end %q: %w", p.End, err)
		}
		out = append(out, Busy{Start: start.UTC(), End: end.UTC()})
	}
	return out, nil
}

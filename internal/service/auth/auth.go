package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
	pasetotoken "github.com/Alijeyrad/sapan_backend/pkg/paseto"
	"github.com/Alijeyrad/sapan_backend/pkg/util/codes"
	"github.com/Alijeyrad/sapan_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
	GetByEmail(ctx context.Context, email string) (*repo.User, error)
	Create(ctx context.Context, u *repo.User) error
	Update(ctx context.Context, id uuid.UUID, in repo.UserUpdate) (*repo.User, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type GoogleClient interface {
	LoginURL(redirectURI, state string) (string, error)
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, tok *oauth2.Token) (*google.Identity, error)
}

// RoleAssigner grants the private user:self role to new accounts.
type RoleAssigner interface {
	AssignSelf(ctx context.Context, userID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type GoogleLoginRequest struct {
	Code        string
	RedirectURI string
	// State is optional. When present it must match a nonce issued by
	// GoogleAuthURL for the same redirect.
	State string
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResult struct {
	Tokens
	User    *repo.User `json:"user"`
	Created bool       `json:"created"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	GoogleAuthURL(ctx context.Context, redirectURI string) (string, error)
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error)
	DevLogin(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Options struct {
	DevLogin bool
	StateTTL time.Duration
}

type authService struct {
	users    UserStore
	sessions *SessionStore
	tokens   *pasetotoken.Manager
	google   GoogleClient
	roles    RoleAssigner
	hasher   *password.Hasher
	opts     Options
}

func New(
	users UserStore,
	sessions *SessionStore,
	tokens *pasetotoken.Manager,
	googleClient GoogleClient,
	roles RoleAssigner,
	hasher *password.Hasher,
	opts Options,
) Service {
	if opts.StateTTL <= 0 {
		opts.StateTTL = 10 * time.Minute
	}
	return &authService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		google:   googleClient,
		roles:    roles,
		hasher:   hasher,
		opts:     opts,
	}
}

// ---------------------------------------------------------------------------
// Google
// ---------------------------------------------------------------------------

func (s *authService) GoogleAuthURL(ctx context.Context, redirectURI string) (string, error) {
	redirectURI = strings.TrimSpace(redirectURI)
	if redirectURI == "" {
		return "", ErrMissingRedirect
	}
	state, err := codes.GenerateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.sessions.SaveState(ctx, state, redirectURI, s.opts.StateTTL); err != nil {
		return "", err
	}
	return s.google.LoginURL(redirectURI, state)
}

func (s *authService) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
	if req.Code == "" {
		return nil, ErrMissingCode
	}
	if req.RedirectURI == "" {
		return nil, ErrMissingRedirect
	}
	if req.State != "" {
		issuedFor, err := s.sessions.ConsumeState(ctx, req.State)
		if err != nil {
			return nil, err
		}
		if issuedFor != req.RedirectURI {
			return nil, ErrInvalidState
		}
	}

	tok, err := s.google.Exchange(ctx, req.Code, req.RedirectURI)
	if err != nil {
		if errors.Is(err, google.ErrNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGoogleFailed, err)
	}
	id, err := s.google.UserInfo(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleFailed, err)
	}
	if id.Email == "" || !id.Verified {
		return nil, ErrEmailNotVerified
	}

	u, created, err := s.upsertGoogleUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, u, created)
}

// upsertGoogleUser creates the account on first sign-in. Later sign-ins only
// fill fields the user left empty.
func (s *authService) upsertGoogleUser(ctx context.Context, id *google.Identity) (*repo.User, bool, error) {
	email := normalizeEmail(id.Email)
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case repo.IsNotFound(err):
		u = &repo.User{
			Email:     email,
			FirstName: id.GivenName,
			LastName:  id.FamilyName,
			AvatarURL: id.Picture,
		}
		if err := s.createUser(ctx, u); err != nil {
			return nil, false, err
		}
		return u, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	var upd repo.UserUpdate
	if u.FirstName == "" && id.GivenName != "" {
		upd.FirstName = &id.GivenName
	}
	if u.LastName == "" && id.FamilyName != "" {
		upd.LastName = &id.FamilyName
	}
	if u.AvatarURL == "" && id.Picture != "" {
		upd.AvatarURL = &id.Picture
	}
	if upd == (repo.UserUpdate{}) {
		return u, false, nil
	}
	u, err = s.users.Update(ctx, u.ID, upd)
	if err != nil {
		return nil, false, fmt.Errorf("update user: %w", err)
	}
	return u, false, nil
}

// ---------------------------------------------------------------------------
// Dev login
// ---------------------------------------------------------------------------

func (s *authService) DevLogin(ctx context.Context, email, pass string) (*LoginResult, error) {
	if !s.opts.DevLogin {
		return nil, ErrDevLoginDisabled
	}
	email = normalizeEmail(email)
	if email == "" || pass == "" {
		return nil, ErrMissingCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if repo.IsNotFound(err) {
		hash, err := s.hasher.Hash(pass)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		local, _, _ := strings.Cut(email, "@")
		u = &repo.User{Email: email, FirstName: local, PasswordHash: hash}
		if err := s.createUser(ctx, u); err != nil {
			return nil, err
		}
		return s.login(ctx, u, true)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Verify(u.PasswordHash, pass); err != nil {
		return nil, ErrInvalidCredentials
	}
	if s.hasher.NeedsRehash(u.PasswordHash) {
		if hash, err := s.hasher.Hash(pass); err == nil {
			if err := s.users.SetPasswordHash(ctx, u.ID, hash); err != nil {
				slog.Warn("password rehash failed", "user_id", u.ID, "error", err)
			}
		}
	}
	return s.login(ctx, u, false)
}

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.tokens.VerifyType(strings.TrimSpace(refreshToken), pasetotoken.TokenTypeRefresh)
	if err != nil || claims.SessionID == nil {
		return nil, ErrInvalidToken
	}
	if err := s.sessions.Touch(ctx, *claims.SessionID); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(claims.UserID, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		slog.Debug("logout: session already expired", "session_id", sessionID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createUser(ctx context.Context, u *repo.User) error {
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if s.roles != nil {
		if err := s.roles.AssignSelf(ctx, u.ID); err != nil {
			return fmt.Errorf("assign self role: %w", err)
		}
	}
	slog.Info("user created", "user_id", u.ID)
	return nil
}

func (s *authService) login(ctx context.Context, u *repo.User, created bool) (*LoginResult, error) {
	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	if err := s.sessions.Create(ctx, sessionID, u.ID); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(u.ID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(u.ID, &sessionID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &LoginResult{
		Tokens: Tokens{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		},
		User:    u,
		Created: created,
	}, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

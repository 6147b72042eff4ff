// Package calendar connects a user's Google calendar and answers busy-time
// queries for slot listing.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/availability"
	"github.com/Alijeyrad/sapan_backend/pkg/crypto"
	"github.com/Alijeyrad/sapan_backend/pkg/google"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
	"github.com/Alijeyrad/sapan_backend/pkg/util/codes"
)

const stateTTL = 10 * time.Minute

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type TokenStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*repo.CalendarToken, error)
	Upsert(ctx context.Context, tok *repo.CalendarToken) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type StateStore interface {
	SaveState(ctx context.Context, state, redirectURI string, ttl time.Duration) error
	ConsumeState(ctx context.Context, state string) (string, error)
}

type GoogleCalendar interface {
	CalendarURL(redirectURI, state string) (string, error)
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource
	FreeBusy(ctx context.Context, ts oauth2.TokenSource, min, max time.Time) ([]google.Busy, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CallbackRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
	State       string `json:"state,omitempty"`
}

type Status struct {
	IsConnected bool       `json:"is_connected"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   *time.Time `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	AuthURL(ctx context.Context, userID uuid.UUID, redirectURI string) (string, error)
	Callback(ctx context.Context, userID uuid.UUID, req CallbackRequest) (*Status, error)
	Status(ctx context.Context, userID uuid.UUID) (*Status, error)
	Disconnect(ctx context.Context, userID uuid.UUID) error

	availability.BusyTimeProvider
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type calendarService struct {
	tokens TokenStore
	states StateStore
	google GoogleCalendar
	box    *crypto.Box
}

func New(tokens TokenStore, states StateStore, googleClient GoogleCalendar, box *crypto.Box) Service {
	return &calendarService{tokens: tokens, states: states, google: googleClient, box: box}
}

func (s *calendarService) AuthURL(ctx context.Context, _ uuid.UUID, redirectURI string) (string, error) {
	redirectURI = strings.TrimSpace(redirectURI)
	if redirectURI == "" {
		return "", ErrMissingRedirect
	}
	state, err := codes.GenerateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.states.SaveState(ctx, state, redirectURI, stateTTL); err != nil {
		return "", err
	}
	return s.google.CalendarURL(redirectURI, state)
}

func (s *calendarService) Callback(ctx context.Context, userID uuid.UUID, req CallbackRequest) (*Status, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
	if req.Code == "" {
		return nil, ErrMissingCode
	}
	if req.RedirectURI == "" {
		return nil, ErrMissingRedirect
	}
	if req.State != "" {
		issuedFor, err := s.states.ConsumeState(ctx, req.State)
		if err != nil || issuedFor != req.RedirectURI {
			return nil, ErrInvalidState
		}
	}

	tok, err := s.google.Exchange(ctx, req.Code, req.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	scope, _ := tok.Extra("scope").(string)
	if err := s.save(ctx, userID, tok, scope); err != nil {
		return nil, err
	}
	reqctx.Logger(ctx).Info("calendar connected", "user_id", userID)
	return s.Status(ctx, userID)
}

func (s *calendarService) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	tok, err := s.tokens.Get(ctx, userID)
	if repo.IsNotFound(err) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar token: %w", err)
	}
	return &Status{IsConnected: true, ExpiresAt: &tok.ExpiresAt, CreatedAt: &tok.CreatedAt}, nil
}

func (s *calendarService) Disconnect(ctx context.Context, userID uuid.UUID) error {
	err := s.tokens.Delete(ctx, userID)
	if repo.IsNotFound(err) {
		return ErrNotConnected
	}
	if err != nil {
		return fmt.Errorf("delete calendar token: %w", err)
	}
	reqctx.Logger(ctx).Info("calendar disconnected", "user_id", userID)
	return nil
}

// BusyIntervals reads the user's primary calendar. Tokens refreshed during
// the call are written back.
func (s *calendarService) BusyIntervals(ctx context.Context, userID uuid.UUID, min, max time.Time) ([]availability.Interval, error) {
	stored, err := s.tokens.Get(ctx, userID)
	if repo.IsNotFound(err) {
		return nil, availability.ErrNoCalendar
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar token: %w", err)
	}
	tok, err := s.open(stored)
	if err != nil {
		return nil, err
	}

	ts := oauth2.ReuseTokenSource(tok, s.google.TokenSource(ctx, tok))
	busy, err := s.google.FreeBusy(ctx, ts, min, max)
	if err != nil {
		return nil, err
	}

	if cur, err := ts.Token(); err == nil && cur.AccessToken != tok.AccessToken {
		if err := s.save(ctx, userID, cur, stored.Scope); err != nil {
			reqctx.Logger(ctx).Warn("persist refreshed calendar token failed", "user_id", userID, "error", err)
		}
	}

	out := make([]availability.Interval, 0, len(busy))
	for _, b := range busy {
		out = append(out, availability.Interval{Start: b.Start, End: b.End})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Token sealing
// ---------------------------------------------------------------------------

func (s *calendarService) save(ctx context.Context, userID uuid.UUID, tok *oauth2.Token, scope string) error {
	access, err := s.box.Seal(tok.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	// Seal keeps an empty refresh token empty, so the stored one survives.
	refresh, err := s.box.Seal(tok.RefreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}
	row := &repo.CalendarToken{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    tok.Expiry,
		Scope:        scope,
	}
	return s.tokens.Upsert(ctx, row)
}

func (s *calendarService) open(row *repo.CalendarToken) (*oauth2.Token, error) {
	access, err := s.box.Open(row.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("open access token: %w", err)
	}
	refresh, err := s.box.Open(row.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("open refresh token: %w", err)
	}
	return &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer", Expiry: row.ExpiresAt}, nil
}


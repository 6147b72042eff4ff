package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const tableCalendarTokens = "calendar_tokens"

var calendarTokenColumns = []string{
	"id", "user_id", "access_token", "refresh_token", "expires_at", "scope", "created_at", "updated_at",
}

// CalendarTokenRepo stores OAuth tokens as given; callers encrypt them.
type CalendarTokenRepo struct {
	c *conn
}

func (r *CalendarTokenRepo) Get(ctx context.Context, userID uuid.UUID) (*CalendarToken, error) {
	t := entsql.Table(tableCalendarTokens)
	q, args := r.c.builder().Select(t.Columns(calendarTokenColumns...)...).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		Query()
	tok := &CalendarToken{}
	if err := r.c.queryOne(ctx, "calendar token", q, args, func(row rowScanner) error {
		return row.Scan(&tok.ID, &tok.UserID, &tok.AccessToken, &tok.RefreshToken,
			&tok.ExpiresAt, &tok.Scope, &tok.CreatedAt, &tok.UpdatedAt)
	}); err != nil {
		return nil, err
	}
	return tok, nil
}

// Upsert writes the user's single token row. An empty refresh token on an
// existing row keeps the stored one.
func (r *CalendarTokenRepo) Upsert(ctx context.Context, tok *CalendarToken) error {
	if tok.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		tok.ID = id
	}
	now := r.c.timestamp()
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = now
	}
	tok.UpdatedAt = now

	q, args := r.c.builder().Insert(tableCalendarTokens).
		Columns(calendarTokenColumns...).
		Values(tok.ID, tok.UserID, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt.UTC(), tok.Scope, tok.CreatedAt, tok.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("access_token")
				u.SetExcluded("expires_at")
				u.SetExcluded("scope")
				u.SetExcluded("updated_at")
				u.Set("refresh_token", entsql.Expr(
					"COALESCE(NULLIF(EXCLUDED.refresh_token, ''), "+u.Table().C("refresh_token")+")"))
			}),
		).Query()
	if _, err := r.c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("upsert calendar token: %w", err)
	}
	return nil
}

func (r *CalendarTokenRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	q, args := r.c.builder().Delete(tableCalendarTokens).
		Where(entsql.EQ("user_id", userID)).
		Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("delete calendar token: %w", err)
	}
	if n == 0 {
		return notFound("calendar token")
	}
	return nil
}

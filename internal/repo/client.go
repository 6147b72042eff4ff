// Package repo is the Postgres persistence layer. Queries are built with the
// ent SQL builder and executed through an ent dialect driver.
package repo

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// Client groups the per-table repositories over one driver.
type Client struct {
	conn *conn

	Users          *UserRepo
	Profiles       *ProfileRepo
	Catalog        *CatalogRepo
	Rules          *RuleRepo
	Bookings       *BookingRepo
	Connections    *ConnectionRepo
	CalendarTokens *CalendarTokenRepo
}

// Option configures a Client.
type Option func(*conn)

// WithClock overrides the timestamp source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(c *conn) { c.now = now }
}

func NewClient(drv dialect.Driver, opts ...Option) *Client {
	c := &conn{eq: drv, drv: drv, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return newClient(c)
}

func newClient(c *conn) *Client {
	return &Client{
		conn:           c,
		Users:          &UserRepo{c},
		Profiles:       &ProfileRepo{c},
		Catalog:        &CatalogRepo{c},
		Rules:          &RuleRepo{c},
		Bookings:       &BookingRepo{c},
		Connections:    &ConnectionRepo{c},
		CalendarTokens: &CalendarTokenRepo{c},
	}
}

// Close closes the underlying driver.
func (c *Client) Close() error {
	if c.conn.drv == nil {
		return nil
	}
	return c.conn.drv.Close()
}

// Ping checks the database connection when the driver exposes one.
func (c *Client) Ping(ctx context.Context) error {
	if d, ok := c.conn.drv.(interface{ DB() *stdsql.DB }); ok {
		return d.DB().PingContext(ctx)
	}
	return nil
}

// WithTx runs fn inside a transaction. Nested calls reuse the outer one.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	return c.conn.withTx(ctx, func(tc *conn) error {
		return fn(newClient(tc))
	})
}

type conn struct {
	eq  dialect.ExecQuerier
	drv dialect.Driver // nil inside a transaction
	now func() time.Time
}

func (c *conn) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

func (c *conn) timestamp() time.Time {
	return c.now().UTC()
}

func (c *conn) withTx(ctx context.Context, fn func(*conn) error) error {
	if c.drv == nil {
		return fn(c)
	}
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&conn{eq: tx, now: c.now}); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", mapError(err))
	}
	return nil
}

// rowScanner is the part of *entsql.Rows the scan helpers need.
type rowScanner interface {
	Scan(dest ...any) error
}

func (c *conn) query(ctx context.Context, q string, args []any, each func(rowScanner) error) error {
	rows := &entsql.Rows{}
	if err := c.eq.Query(ctx, q, args, rows); err != nil {
		return mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return mapError(rows.Err())
}

// queryOne scans the first row, returning a *NotFoundError when there is none.
func (c *conn) queryOne(ctx context.Context, label, q string, args []any, scan func(rowScanner) error) error {
	found := false
	err := c.query(ctx, q, args, func(r rowScanner) error {
		if found {
			return nil
		}
		found = true
		return scan(r)
	})
	if err != nil {
		if isNoRows(err) {
			return notFound(label)
		}
		return err
	}
	if !found {
		return notFound(label)
	}
	return nil
}

func (c *conn) exec(ctx context.Context, q string, args []any) (int64, error) {
	var res stdsql.Result
	if err := c.eq.Exec(ctx, q, args, &res); err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

// exists reports whether s matches at least one row.
func (c *conn) exists(ctx context.Context, s *entsql.Selector) (bool, error) {
	q, args := s.Limit(1).Query()
	found := false
	err := c.query(ctx, q, args, func(rowScanner) error {
		found = true
		return nil
	})
	return found, err
}

func uuidArgs(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func int64Args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

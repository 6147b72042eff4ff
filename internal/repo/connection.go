package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const tableConnectionRequests = "connection_requests"

var connectionColumns = []string{
	"id", "from_user_id", "to_user_id", "intent", "message", "status", "created_at", "responded_at",
}

func scanConnection(row rowScanner, c *ConnectionRequest) error {
	var responded sql.NullTime
	if err := row.Scan(&c.ID, &c.FromUserID, &c.ToUserID, &c.Intent, &c.Message, &c.Status, &c.CreatedAt, &responded); err != nil {
		return err
	}
	if responded.Valid {
		t := responded.Time
		c.RespondedAt = &t
	}
	return nil
}

type ConnectionRepo struct {
	c *conn
}

func (r *ConnectionRepo) list(ctx context.Context, p *entsql.Predicate) ([]*ConnectionRequest, error) {
	t := entsql.Table(tableConnectionRequests)
	q, args := r.c.builder().Select(t.Columns(connectionColumns...)...).
		From(t).
		Where(p).
		OrderBy(entsql.Desc(t.C("created_at"))).
		Query()
	var out []*ConnectionRequest
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		cr := &ConnectionRequest{}
		if err := scanConnection(row, cr); err != nil {
			return err
		}
		out = append(out, cr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachUsers(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ConnectionRepo) Get(ctx context.Context, id uuid.UUID) (*ConnectionRequest, error) {
	out, err := r.list(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("get connection request: %w", err)
	}
	if len(out) == 0 {
		return nil, notFound("connection request")
	}
	return out[0], nil
}

func (r *ConnectionRepo) Create(ctx context.Context, cr *ConnectionRequest) error {
	if cr.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		cr.ID = id
	}
	if cr.Status == "" {
		cr.Status = ConnectionPending
	}
	if cr.Intent == "" {
		cr.Intent = IntentPeerNetwork
	}
	cr.CreatedAt = r.c.timestamp()

	q, args := r.c.builder().Insert(tableConnectionRequests).
		Columns(connectionColumns...).
		Values(cr.ID, cr.FromUserID, cr.ToUserID, string(cr.Intent), cr.Message, string(cr.Status), cr.CreatedAt, nil).
		Query()
	if _, err := r.c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create connection request: %w", err)
	}
	return nil
}

// Exists reports whether a request from -> to exists in the given status.
// An empty status matches any.
func (r *ConnectionRepo) Exists(ctx context.Context, from, to uuid.UUID, status ConnectionStatus) (bool, error) {
	t := entsql.Table(tableConnectionRequests)
	p := entsql.And(entsql.EQ(t.C("from_user_id"), from), entsql.EQ(t.C("to_user_id"), to))
	if status != "" {
		p = entsql.And(p, entsql.EQ(t.C("status"), string(status)))
	}
	ok, err := r.c.exists(ctx, r.c.builder().Select(t.C("id")).From(t).Where(p))
	if err != nil {
		return false, fmt.Errorf("check connection request: %w", err)
	}
	return ok, nil
}

func (r *ConnectionRepo) ListSent(ctx context.Context, from uuid.UUID) ([]*ConnectionRequest, error) {
	out, err := r.list(ctx, entsql.EQ("from_user_id", from))
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	return out, nil
}

// ListReceived returns pending requests addressed to the user.
func (r *ConnectionRepo) ListReceived(ctx context.Context, to uuid.UUID) ([]*ConnectionRequest, error) {
	out, err := r.list(ctx, entsql.And(
		entsql.EQ("to_user_id", to),
		entsql.EQ("status", string(ConnectionPending)),
	))
	if err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	return out, nil
}

// ListAccepted returns accepted requests on either side of the user.
func (r *ConnectionRepo) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*ConnectionRequest, error) {
	out, err := r.list(ctx, entsql.And(
		entsql.EQ("status", string(ConnectionAccepted)),
		entsql.Or(entsql.EQ("from_user_id", userID), entsql.EQ("to_user_id", userID)),
	))
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return out, nil
}

// Respond moves a pending request addressed to toUser into status. It
// returns a *NotFoundError when no such pending request exists.
func (r *ConnectionRepo) Respond(ctx context.Context, id, toUser uuid.UUID, status ConnectionStatus, at time.Time) error {
	q, args := r.c.builder().Update(tableConnectionRequests).
		Set("status", string(status)).
		Set("responded_at", at.UTC()).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("to_user_id", toUser),
			entsql.EQ("status", string(ConnectionPending)),
		)).
		Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("respond to connection request: %w", err)
	}
	if n == 0 {
		return notFound("connection request")
	}
	return nil
}

func (r *ConnectionRepo) attachUsers(ctx context.Context, crs []*ConnectionRequest) error {
	if len(crs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(crs)*2)
	for _, cr := range crs {
		ids = append(ids, cr.FromUserID, cr.ToUserID)
	}
	users, err := (&UserRepo{r.c}).GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, cr := range crs {
		cr.FromUser = summaries(users, cr.FromUserID)
		cr.ToUser = summaries(users, cr.ToUserID)
	}
	return nil
}

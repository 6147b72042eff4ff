package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const tableUsers = "users"

var userColumns = []string{
	"id", "email", "first_name", "last_name", "user_type", "bio", "avatar_url",
	"profile_photo_key", "password_hash", "is_approved", "is_profile_complete",
	"created_at", "updated_at",
}

func scanUser(r rowScanner, u *User) error {
	return r.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.UserType, &u.Bio, &u.AvatarURL,
		&u.ProfilePhotoKey, &u.PasswordHash, &u.IsApproved, &u.IsProfileComplete,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

type UserRepo struct {
	c *conn
}

func (r *UserRepo) selectUsers() (*entsql.Selector, *entsql.SelectTable) {
	t := entsql.Table(tableUsers)
	return r.c.builder().Select(t.Columns(userColumns...)...).From(t), t
}

func (r *UserRepo) one(ctx context.Context, p *entsql.Predicate) (*User, error) {
	s, _ := r.selectUsers()
	q, args := s.Where(p).Query()
	u := &User{}
	if err := r.c.queryOne(ctx, "user", q, args, func(row rowScanner) error {
		return scanUser(row, u)
	}); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

// GetByEmail matches case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, entsql.EqualFold("email", email))
}

// GetMany returns the users for ids keyed by id. Missing ids are skipped.
func (r *UserRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error) {
	out := make(map[uuid.UUID]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	s, _ := r.selectUsers()
	q, args := s.Where(entsql.In("id", uuidArgs(ids)...)).Query()
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		u := &User{}
		if err := scanUser(row, u); err != nil {
			return err
		}
		out[u.ID] = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return out, nil
}

// Create inserts u, assigning a v7 id and timestamps when unset.
func (r *UserRepo) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id
	}
	now := r.c.timestamp()
	u.CreatedAt, u.UpdatedAt = now, now

	q, args := r.c.builder().Insert(tableUsers).
		Columns(userColumns...).
		Values(
			u.ID, u.Email, u.FirstName, u.LastName, string(u.UserType), u.Bio, u.AvatarURL,
			u.ProfilePhotoKey, u.PasswordHash, u.IsApproved, u.IsProfileComplete,
			u.CreatedAt, u.UpdatedAt,
		).Query()
	if _, err := r.c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserUpdate carries optional field changes; nil fields are left alone.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
}

func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, in UserUpdate) (*User, error) {
	u := r.c.builder().Update(tableUsers).Set("updated_at", r.c.timestamp())
	if in.FirstName != nil {
		u.Set("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		u.Set("last_name", *in.LastName)
	}
	if in.Bio != nil {
		u.Set("bio", *in.Bio)
	}
	if in.AvatarURL != nil {
		u.Set("avatar_url", *in.AvatarURL)
	}
	q, args := u.Where(entsql.EQ("id", id)).Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return nil, notFound("user")
	}
	return r.Get(ctx, id)
}

// SetUserType assigns the profile variant once and creates the matching
// empty profile row. Founders are approved immediately. It returns false
// when the user already had a type.
func (r *UserRepo) SetUserType(ctx context.Context, id uuid.UUID, t UserType) (bool, error) {
	set := false
	err := r.c.withTx(ctx, func(tc *conn) error {
		now := tc.timestamp()
		q, args := tc.builder().Update(tableUsers).
			Set("user_type", string(t)).
			Set("is_profile_complete", true).
			Set("is_approved", t == UserTypeFounder).
			Set("updated_at", now).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_type", string(UserTypeNone)))).
			Query()
		n, err := tc.exec(ctx, q, args)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		set = true

		table := tableFounderProfiles
		if t == UserTypeMentor {
			table = tableMentorProfiles
		}
		q, args = tc.builder().Insert(table).
			Columns("user_id", "created_at", "updated_at").
			Values(id, now, now).
			OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
			Query()
		_, err = tc.exec(ctx, q, args)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("set user type: %w", err)
	}
	return set, nil
}

func (r *UserRepo) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	return r.setField(ctx, id, "is_approved", approved)
}

func (r *UserRepo) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.setField(ctx, id, "password_hash", hash)
}

func (r *UserRepo) SetProfilePhoto(ctx context.Context, id uuid.UUID, key string) error {
	return r.setField(ctx, id, "profile_photo_key", key)
}

func (r *UserRepo) setField(ctx context.Context, id uuid.UUID, col string, v any) error {
	q, args := r.c.builder().Update(tableUsers).
		Set(col, v).
		Set("updated_at", r.c.timestamp()).
		Where(entsql.EQ("id", id)).
		Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update user %s: %w", col, err)
	}
	if n == 0 {
		return notFound("user")
	}
	return nil
}

func summaries(users map[uuid.UUID]*User, id uuid.UUID) *UserSummary {
	u, ok := users[id]
	if !ok {
		return nil
	}
	s := u.Summary()
	return &s
}

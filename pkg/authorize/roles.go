package authorize

import (
	"context"

	"github.com/google/uuid"
)

// Roles grants the grouping policies a user picks up over their lifetime.
type Roles struct {
	auth IAuthorization
}

func NewRoles(auth IAuthorization) *Roles {
	return &Roles{auth: auth}
}

// AssignSelf is called once when the user row is created.
func (r *Roles) AssignSelf(ctx context.Context, userID uuid.UUID) error {
	return AssignUserSelfRole(ctx, r.auth, userID.String())
}

// AssignMember is called when the user picks founder or mentor.
func (r *Roles) AssignMember(ctx context.Context, userID uuid.UUID, userType string) error {
	return AssignMemberRole(ctx, r.auth, userID.String(), userType)
}

func (r *Roles) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	return AssignSystemRole(ctx, r.auth, userID.String(), RolePlatformAdmin)
}

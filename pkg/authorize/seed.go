package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies returns the baseline RBAC rows for the platform.
func DefaultPolicies() []PermissionPolicy {
	allow := func(role Role, dom Domain, obj Resource, acts ...Action) []PermissionPolicy {
		out := make([]PermissionPolicy, 0, len(acts))
		for _, a := range acts {
			out = append(out, PermissionPolicy{role, dom, obj, a, EffectAllow})
		}
		return out
	}

	var all []PermissionPolicy

	// SuperAdmin: god mode
	all = append(all, PermissionPolicy{RolePlatformSuperAdmin, DomainSys, WildcardResource, WildcardAction, EffectAllow})

	// Admin: approvals and read-only oversight
	all = append(all, allow(RolePlatformAdmin, DomainSys, ResourceMentor, ActionApprove, ActionList, ActionRead)...)
	all = append(all, allow(RolePlatformAdmin, DomainSys, ResourceFounder, ActionList, ActionRead)...)
	all = append(all, allow(RolePlatformAdmin, DomainSys, ResourceUser, ActionList, ActionRead)...)
	all = append(all, allow(RolePlatformAdmin, DomainSys, ResourceBooking, ActionList, ActionRead)...)

	// Founder: browse mentors, book office hours, ask for connections
	all = append(all, allow(RoleFounder, DomainSys, ResourceMentor, ActionList, ActionRead)...)
	all = append(all, allow(RoleFounder, DomainSys, ResourceFounder, ActionList, ActionRead)...)
	all = append(all, allow(RoleFounder, DomainSys, ResourceSlot, ActionRead)...)
	all = append(all, allow(RoleFounder, DomainSys, ResourceBooking, ActionCreate, ActionRead, ActionList, ActionCancel)...)
	all = append(all, allow(RoleFounder, DomainSys, ResourceConnection, ActionCreate, ActionRead, ActionList)...)

	// Mentor: own availability and calendar, answer requests
	all = append(all, allow(RoleMentor, DomainSys, ResourceMentor, ActionList, ActionRead)...)
	all = append(all, allow(RoleMentor, DomainSys, ResourceFounder, ActionList, ActionRead)...)
	all = append(all, allow(RoleMentor, DomainSys, ResourceSlot, ActionRead)...)
	all = append(all, allow(RoleMentor, DomainSys, ResourceAvailabilityRule,
		ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList)...)
	all = append(all, allow(RoleMentor, DomainSys, ResourceBooking, ActionRead, ActionList, ActionCancel, ActionComplete)...)
	all = append(all, allow(RoleMentor, DomainSys, ResourceCalendar, ActionCreate, ActionRead, ActionDelete)...)
	all = append(all, allow(RoleMentor, DomainSys, ResourceConnection, ActionRead, ActionList, ActionRespond)...)

	// UserSelf: own account in the private domain
	all = append(all, allow(RoleUserSelf, WildcardDomain, ResourceUser, ActionRead, ActionUpdate)...)
	all = append(all, allow(RoleUserSelf, WildcardDomain, ResourceProfile, ActionRead, ActionUpdate)...)
	all = append(all, allow(RoleUserSelf, WildcardDomain, ResourceAuthSession, ActionDelete)...)

	return all
}

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	allPolicies := DefaultPolicies()
	for _, p := range allPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(allPolicies))
	return nil
}

// AssignUserSelfRole assigns the user:self role in the user's private domain.
// Call this when creating a new user.
func AssignUserSelfRole(ctx context.Context, auth IAuthorization, userID string) error {
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), RoleUserSelf, UserDomain(userID))
	return err
}

// AssignMemberRole grants role:founder or role:mentor in the sys domain
// according to the user's type.
func AssignMemberRole(ctx context.Context, auth IAuthorization, userID, userType string) error {
	role, ok := UserTypeToRole[userType]
	if !ok {
		return ErrInvalidArgs
	}
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainSys)
	return err
}

// AssignSystemRole assigns a platform role to a user.
// RolePlatformSuperAdmin is valid but should be assigned by hand.
func AssignSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	switch role {
	case RolePlatformAdmin, RolePlatformSuperAdmin:
	default:
		return ErrInvalidArgs
	}

	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainSys)
	return err
}

// RemoveSystemRole removes a platform role from a user.
func RemoveSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	_, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(userID), role, DomainSys)
	return err
}

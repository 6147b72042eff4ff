package authorize

import (
	"fmt"
	"regexp"
	"strings"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Booking lifecycle
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"

	// Connection lifecycle
	ActionRespond Action = "respond"

	// Admin actions
	ActionApprove Action = "approve"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionCancel: {}, ActionComplete: {},
	ActionRespond: {},
	ActionApprove: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Identity
	ResourceUser        Resource = "user"
	ResourceAuthSession Resource = "auth_session"
	ResourceProfile     Resource = "profile"
	ResourceMentor      Resource = "mentor"
	ResourceFounder     Resource = "founder"

	// Office hours
	ResourceAvailabilityRule Resource = "availability_rule"
	ResourceSlot             Resource = "slot"
	ResourceBooking          Resource = "booking"
	ResourceCalendar         Resource = "calendar"

	// Networking
	ResourceConnection Resource = "connection"

	// Reference data
	ResourceCatalog Resource = "catalog"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourceAuthSession: {}, ResourceProfile: {}, ResourceMentor: {}, ResourceFounder: {},
	ResourceAvailabilityRule: {}, ResourceSlot: {}, ResourceBooking: {}, ResourceCalendar: {},
	ResourceConnection: {},
	ResourceCatalog:    {},
}

// ----------------------------
// Roles
// ----------------------------
//
// These are the "policy subjects" we assign to users via grouping policies.

const (
	WildcardRole Role = "*"

	// Platform roles (domain = sys)
	RolePlatformSuperAdmin Role = "role:platform:superadmin"
	RolePlatformAdmin      Role = "role:platform:admin"

	// Member roles (domain = sys), assigned when the user picks a type
	RoleFounder Role = "role:founder"
	RoleMentor  Role = "role:mentor"

	// Private user scope (domain = user:<uuid>)
	RoleUserSelf Role = "role:user:self"
)

var KnownRoles = map[Role]struct{}{
	RolePlatformSuperAdmin: {},
	RolePlatformAdmin:      {},
	RoleFounder:            {},
	RoleMentor:             {},
	RoleUserSelf:           {},
}

// UserTypeToRole maps users.user_type values to Casbin roles.
var UserTypeToRole = map[string]Role{
	"founder": RoleFounder,
	"mentor":  RoleMentor,
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys Domain = "sys"
)

const (
	DomainPrefixUser Domain = "user:"
)

const (
	WildcardDomain Domain = "*"
)

var (
	reUUID = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)
)

func UserDomain(userID string) Domain {
	return Domain(fmt.Sprintf("%s%s", DomainPrefixUser, userID))
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainSys || d == WildcardDomain {
		return true
	}

	s := string(d)
	if rest, ok := strings.CutPrefix(s, string(DomainPrefixUser)); ok {
		return reUUID.MatchString(rest)
	}
	return false
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a concrete principal id.
type GroupSubject string

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

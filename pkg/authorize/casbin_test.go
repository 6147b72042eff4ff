package authorize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "0190f3c2-5b7e-7c3a-9a41-2f0c6f7d1e11"

// createTestEnforcer builds an enforcer over the repository model file and an
// empty file-adapter policy.
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	tmpDir := t.TempDir()
	policyPath := filepath.Join(tmpDir, "policy.csv")
	require.NoError(t, os.WriteFile(policyPath, []byte(""), 0o644))

	e, err := casbin.NewDistributedEnforcer(filepath.Join("..", "..", "casbin_model.conf"), fileadapter.NewAdapter(policyPath))
	require.NoError(t, err)

	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e
}

func newTestAuth(t *testing.T, bypass bool) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t), bypass)
	require.NoError(t, err)
	return auth
}

func TestNewAuthorization(t *testing.T) {
	t.Run("returns error for nil enforcer", func(t *testing.T) {
		_, err := NewAuthorization(nil, true)
		assert.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("succeeds with valid enforcer", func(t *testing.T) {
		auth := newTestAuth(t, true)
		assert.NotNil(t, auth.Raw())
	})
}

func TestEnforce(t *testing.T) {
	auth := newTestAuth(t, true)
	ctx := context.Background()

	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(testUserID), RoleFounder, DomainSys)
	require.NoError(t, err)
	_, err = auth.AddPermission(ctx, RoleFounder, DomainSys, ResourceBooking, ActionCreate, EffectAllow)
	require.NoError(t, err)

	tests := []struct {
		name     string
		subject  GroupSubject
		domain   Domain
		resource Resource
		action   Action
		want     bool
		wantErr  bool
	}{
		{"allowed when permission exists", GroupSubject(testUserID), DomainSys, ResourceBooking, ActionCreate, true, false},
		{"denied when no permission", GroupSubject(testUserID), DomainSys, ResourceAvailabilityRule, ActionCreate, false, false},
		{"denied in another domain", GroupSubject(testUserID), UserDomain(testUserID), ResourceBooking, ActionCreate, false, false},
		{"error for empty subject", "", DomainSys, ResourceBooking, ActionRead, false, true},
		{"error for invalid domain", GroupSubject(testUserID), Domain("invalid"), ResourceBooking, ActionRead, false, true},
		{"error for unknown resource", GroupSubject(testUserID), DomainSys, Resource("unknown"), ActionRead, false, true},
		{"error for unknown action", GroupSubject(testUserID), DomainSys, ResourceBooking, Action("unknown"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.subject, tt.domain, tt.resource, tt.action)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := newTestAuth(t, true)
	ctx := context.Background()

	_, _ = auth.AddRoleForUserInDomain(ctx, GroupSubject(testUserID), RolePlatformAdmin, DomainSys)
	_, _ = auth.AddPermission(ctx, RolePlatformAdmin, DomainSys, ResourceMentor, ActionApprove, EffectAllow)

	assert.NoError(t, auth.MustEnforce(ctx, GroupSubject(testUserID), DomainSys, ResourceMentor, ActionApprove))
	assert.ErrorIs(t, auth.MustEnforce(ctx, GroupSubject(testUserID), DomainSys, ResourceBooking, ActionCancel), ErrForbidden)
}

func TestSuperAdminBypass(t *testing.T) {
	ctx := context.Background()

	t.Run("bypass enabled", func(t *testing.T) {
		auth := newTestAuth(t, true)
		_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(testUserID), RolePlatformSuperAdmin, DomainSys)
		require.NoError(t, err)

		allowed, err := auth.Enforce(ctx, GroupSubject(testUserID), DomainSys, ResourceBooking, ActionDelete)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("bypass disabled", func(t *testing.T) {
		auth := newTestAuth(t, false)
		_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(testUserID), RolePlatformSuperAdmin, DomainSys)
		require.NoError(t, err)

		allowed, err := auth.Enforce(ctx, GroupSubject(testUserID), DomainSys, ResourceBooking, ActionDelete)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestRoleManagement(t *testing.T) {
	auth := newTestAuth(t, true)
	ctx := context.Background()

	added, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(testUserID), RoleMentor, DomainSys)
	require.NoError(t, err)
	assert.True(t, added)

	roles, err := auth.GetRolesForUserInDomain(ctx, GroupSubject(testUserID), DomainSys)
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleMentor}, roles)

	removed, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(testUserID), RoleMentor, DomainSys)
	require.NoError(t, err)
	assert.True(t, removed)

	roles, _ = auth.GetRolesForUserInDomain(ctx, GroupSubject(testUserID), DomainSys)
	assert.Empty(t, roles)

	_, err = auth.AddRoleForUserInDomain(ctx, GroupSubject(testUserID), Role("invalid-role"), DomainSys)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestPermissionManagement(t *testing.T) {
	auth := newTestAuth(t, true)
	ctx := context.Background()

	added, err := auth.AddPermission(ctx, RoleMentor, DomainSys, ResourceCalendar, ActionRead, EffectAllow)
	require.NoError(t, err)
	assert.True(t, added)

	removed, err := auth.RemovePermission(ctx, RoleMentor, DomainSys, ResourceCalendar, ActionRead, EffectAllow)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = auth.AddPermission(ctx, RoleMentor, DomainSys, ResourceCalendar, ActionRead, PolicyEffect("invalid"))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestDefaultPolicies(t *testing.T) {
	auth := newTestAuth(t, false)
	ctx := context.Background()
	require.NoError(t, SeedDefaultPolicies(ctx, auth))

	founder := "0190f3c2-5b7e-7c3a-9a41-2f0c6f7d1e22"
	mentor := "0190f3c2-5b7e-7c3a-9a41-2f0c6f7d1e33"
	require.NoError(t, AssignMemberRole(ctx, auth, founder, "founder"))
	require.NoError(t, AssignMemberRole(ctx, auth, mentor, "mentor"))
	require.NoError(t, AssignUserSelfRole(ctx, auth, founder))
	assert.ErrorIs(t, AssignMemberRole(ctx, auth, founder, "admin"), ErrInvalidArgs)

	cases := []struct {
		subject string
		domain  Domain
		obj     Resource
		act     Action
		want    bool
	}{
		{founder, DomainSys, ResourceBooking, ActionCreate, true},
		{mentor, DomainSys, ResourceBooking, ActionCreate, false},
		{mentor, DomainSys, ResourceAvailabilityRule, ActionCreate, true},
		{founder, DomainSys, ResourceAvailabilityRule, ActionCreate, false},
		{founder, DomainSys, ResourceConnection, ActionCreate, true},
		{mentor, DomainSys, ResourceConnection, ActionRespond, true},
		{founder, DomainSys, ResourceMentor, ActionApprove, false},
		{mentor, DomainSys, ResourceCalendar, ActionCreate, true},
		{founder, UserDomain(founder), ResourceProfile, ActionUpdate, true},
		{founder, UserDomain(mentor), ResourceProfile, ActionUpdate, false},
	}
	for _, c := range cases {
		got, err := auth.Enforce(ctx, GroupSubject(c.subject), c.domain, c.obj, c.act)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s %s %s %s", c.subject, c.domain, c.obj, c.act)
	}
}

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		expected bool
	}{
		{"sys domain", DomainSys, true},
		{"wildcard domain", WildcardDomain, true},
		{"valid user domain", UserDomain(testUserID), true},
		{"empty domain", Domain(""), false},
		{"random string", Domain("random"), false},
		{"user without uuid", Domain("user:"), false},
		{"user with invalid uuid", Domain("user:not-a-uuid"), false},
		{"unknown prefix", Domain("org:" + testUserID), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidDomain(tt.domain))
		})
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

func TestOperationsFor(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ops, err := OperationsFor("employees")

		require.NoError(t, err)
		assert.Equal(t, "employees.list", ops.List.Name)
		assert.Equal(t, fieldcryptDomain.DomainHR, ops.List.Domain)
		assert.Equal(t, ActionList, ops.List.Action)
	})

	t.Run("Error_UnknownCollection", func(t *testing.T) {
		_, err := OperationsFor("bookings")

		assert.ErrorIs(t, err, fieldcryptDomain.ErrUnknownCollection)
	})

	t.Run("EveryPolicyHasOperations", func(t *testing.T) {
		for _, policy := range fieldcryptDomain.Policies() {
			ops, err := OperationsFor(policy.Collection)

			require.NoError(t, err, policy.Collection)
			for _, op := range ops.All() {
				assert.Equal(t, policy.Domain, op.Domain, op.Name)
				assert.Equal(t, policy.Collection, op.Collection, op.Name)
			}
		}
	})
}

func TestOperationRoleSets(t *testing.T) {
	tests := []struct {
		collection string
		pick       func(*CollectionOperations) *Operation
		allowed    []tenantDomain.Role
		denied     []tenantDomain.Role
	}{
		{
			collection: "employees",
			pick:       func(c *CollectionOperations) *Operation { return c.List },
			allowed:    []tenantDomain.Role{tenantDomain.RoleAdmin, tenantDomain.RoleHRManager, tenantDomain.RoleSupervisor},
			denied:     []tenantDomain.Role{tenantDomain.RoleStaff, tenantDomain.RoleFinanceManager},
		},
		{
			collection: "employees",
			pick:       func(c *CollectionOperations) *Operation { return c.View },
			allowed:    []tenantDomain.Role{tenantDomain.RoleAdmin, tenantDomain.RoleHRManager},
			denied:     []tenantDomain.Role{tenantDomain.RoleSupervisor, tenantDomain.RoleStaff},
		},
		{
			collection: "bank-accounts",
			pick:       func(c *CollectionOperations) *Operation { return c.Update },
			allowed:    []tenantDomain.Role{tenantDomain.RoleAdmin, tenantDomain.RoleFinanceManager},
			denied:     []tenantDomain.Role{tenantDomain.RoleHRManager, tenantDomain.RolePayrollOfficer},
		},
		{
			collection: "payroll-entries",
			pick:       func(c *CollectionOperations) *Operation { return c.List },
			allowed:    []tenantDomain.Role{tenantDomain.RoleAdmin, tenantDomain.RolePayrollOfficer, tenantDomain.RoleHRManager},
			denied:     []tenantDomain.Role{tenantDomain.RoleSupervisor, tenantDomain.RoleStaff},
		},
		{
			collection: "payroll-entries",
			pick:       func(c *CollectionOperations) *Operation { return c.View },
			allowed:    []tenantDomain.Role{tenantDomain.RoleAdmin, tenantDomain.RolePayrollOfficer},
			denied:     []tenantDomain.Role{tenantDomain.RoleHRManager},
		},
		{
			collection: "company-financials",
			pick:       func(c *CollectionOperations) *Operation { return c.View },
			allowed:    []tenantDomain.Role{tenantDomain.RoleAdmin, tenantDomain.RoleFinanceManager},
			denied:     []tenantDomain.Role{tenantDomain.RoleHRManager, tenantDomain.RoleStaff},
		},
	}

	for _, tt := range tests {
		ops, err := OperationsFor(tt.collection)
		require.NoError(t, err)
		op := tt.pick(ops)

		t.Run(op.Name, func(t *testing.T) {
			for _, role := range tt.allowed {
				assert.True(t, op.Allows(role), "expected %s to allow %s", op.Name, role)
			}
			for _, role := range tt.denied {
				assert.False(t, op.Allows(role), "expected %s to deny %s", op.Name, role)
			}
		})
	}
}

func TestOperationStepUpTags(t *testing.T) {
	bankOps, err := OperationsFor("bank-accounts")
	require.NoError(t, err)
	payrollOps, err := OperationsFor("payroll-entries")
	require.NoError(t, err)
	financialOps, err := OperationsFor("company-financials")
	require.NoError(t, err)
	personalOps, err := OperationsFor("personal-settings")
	require.NoError(t, err)

	// Bank account writes demand step-up, reads do not carry the tag.
	assert.True(t, bankOps.Create.RequireStepUp)
	assert.True(t, bankOps.Update.RequireStepUp)
	assert.True(t, bankOps.Delete.RequireStepUp)
	assert.False(t, bankOps.List.RequireStepUp)
	assert.False(t, bankOps.View.RequireStepUp)

	// Full-detail payroll views demand step-up, listings do not.
	assert.True(t, payrollOps.View.RequireStepUp)
	assert.False(t, payrollOps.List.RequireStepUp)
	assert.False(t, payrollOps.Update.RequireStepUp)

	// Company financial writes demand step-up.
	assert.True(t, financialOps.Update.RequireStepUp)
	assert.False(t, financialOps.View.RequireStepUp)

	// Own bank-detail changes demand step-up; reading own settings does not.
	assert.True(t, personalOps.Create.RequireStepUp)
	assert.True(t, personalOps.Update.RequireStepUp)
	assert.False(t, personalOps.View.RequireStepUp)
}

func TestOperationUserScoped(t *testing.T) {
	personalOps, err := OperationsFor("personal-settings")
	require.NoError(t, err)
	employeeOps, err := OperationsFor("employees")
	require.NoError(t, err)

	for _, op := range personalOps.All() {
		assert.True(t, op.UserScoped, op.Name)
		assert.Empty(t, op.AllowedRoles, op.Name)
	}
	for _, op := range employeeOps.All() {
		assert.False(t, op.UserScoped, op.Name)
		assert.NotEmpty(t, op.AllowedRoles, op.Name)
	}
}

func TestOperationRequiresStepUp(t *testing.T) {
	employeeOps, err := OperationsFor("employees")
	require.NoError(t, err)
	personalOps, err := OperationsFor("personal-settings")
	require.NoError(t, err)

	t.Run("PrivilegedRoleAlwaysRequired", func(t *testing.T) {
		assert.True(t, employeeOps.List.RequiresStepUp(tenantDomain.RoleAdmin))
		assert.True(t, employeeOps.View.RequiresStepUp(tenantDomain.RoleAdmin))
	})

	t.Run("UnprivilegedRoleUntaggedOperation", func(t *testing.T) {
		assert.False(t, employeeOps.View.RequiresStepUp(tenantDomain.RoleHRManager))
		assert.False(t, employeeOps.List.RequiresStepUp(tenantDomain.RoleSupervisor))
	})

	t.Run("TaggedOperationAnyRole", func(t *testing.T) {
		assert.True(t, personalOps.Update.RequiresStepUp(""))
		assert.False(t, personalOps.View.RequiresStepUp(""))
	})
}

func TestPrivilegedRole(t *testing.T) {
	assert.True(t, PrivilegedRole(tenantDomain.RoleAdmin))
	assert.True(t, PrivilegedRole(tenantDomain.RoleFinanceManager))
	assert.False(t, PrivilegedRole(tenantDomain.RoleHRManager))
	assert.False(t, PrivilegedRole(tenantDomain.RolePayrollOfficer))
	assert.False(t, PrivilegedRole(tenantDomain.RoleSupervisor))
	assert.False(t, PrivilegedRole(tenantDomain.RoleStaff))
}

func TestActionAuditEvent(t *testing.T) {
	tests := []struct {
		action   Action
		expected auditDomain.EventType
	}{
		{ActionList, auditDomain.EventRecordListed},
		{ActionView, auditDomain.EventRecordViewed},
		{ActionCreate, auditDomain.EventRecordWritten},
		{ActionUpdate, auditDomain.EventRecordWritten},
		{ActionDelete, auditDomain.EventRecordDeleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.action.AuditEvent())
		})
	}
}

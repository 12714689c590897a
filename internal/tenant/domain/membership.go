// Package domain defines tenant membership entities for the hospitality back office.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/innwise/fieldvault/internal/errors"
)

// Role is a subject's function inside one tenant (a hotel or hotel group).
// The same subject can hold different roles in different tenants.
type Role string

const (
	// RoleAdmin manages everything inside the tenant.
	RoleAdmin Role = "admin"
	// RoleHRManager manages employee master data.
	RoleHRManager Role = "hr_manager"
	// RoleFinanceManager manages bank accounts and company financials.
	RoleFinanceManager Role = "finance_manager"
	// RolePayrollOfficer manages payroll entries.
	RolePayrollOfficer Role = "payroll_officer"
	// RoleSupervisor reads team-level employee listings.
	RoleSupervisor Role = "supervisor"
	// RoleStaff holds no back-office access beyond their own settings.
	RoleStaff Role = "staff"
)

// Roles lists every assignable role.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleHRManager,
		RoleFinanceManager,
		RolePayrollOfficer,
		RoleSupervisor,
		RoleStaff,
	}
}

// Valid reports whether the role is assignable.
func (r Role) Valid() bool {
	for _, role := range Roles() {
		if role == r {
			return true
		}
	}
	return false
}

// Membership binds a subject to a tenant with a role. The subject/tenant pair
// is unique; changing a role means revoking and granting again.
type Membership struct {
	ID        uuid.UUID
	SubjectID string
	TenantID  string
	Role      Role
	CreatedAt time.Time
}

// Membership error definitions.
var (
	// ErrInvalidRole indicates an unassignable role value.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")

	// ErrMembershipExists indicates the subject already belongs to the tenant.
	ErrMembershipExists = errors.Wrap(errors.ErrConflict, "membership already exists")
)

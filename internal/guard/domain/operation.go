// Package domain defines the authorization model for guarded operations:
// which roles may perform which action on which collection, when step-up
// authentication is demanded, and the ephemeral access grant produced by a
// successful chain evaluation.
package domain

import (
	auditDomain "github.com/innwise/fieldvault/internal/audit/domain"
	fieldcryptDomain "github.com/innwise/fieldvault/internal/fieldcrypt/domain"
	tenantDomain "github.com/innwise/fieldvault/internal/tenant/domain"
)

// Action is what a guarded operation does to a record.
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AuditEvent maps the action to the access event recorded after a successful
// guard pass.
func (a Action) AuditEvent() auditDomain.EventType {
	switch a {
	case ActionList:
		return auditDomain.EventRecordListed
	case ActionView:
		return auditDomain.EventRecordViewed
	case ActionDelete:
		return auditDomain.EventRecordDeleted
	default:
		return auditDomain.EventRecordWritten
	}
}

// privilegedRoles always require step-up authentication, whatever the
// operation. These roles can reach bank details and company financials, so a
// stolen session without a second factor must not be enough.
var privilegedRoles = map[tenantDomain.Role]bool{
	tenantDomain.RoleAdmin:          true,
	tenantDomain.RoleFinanceManager: true,
}

// PrivilegedRole reports whether the role always requires step-up.
func PrivilegedRole(role tenantDomain.Role) bool {
	return privilegedRoles[role]
}

// Operation is one compiled-in guarded operation: an action on a collection
// with its allowed-role set and step-up tag. Operations are registered at
// build time; nothing about authorization is configurable at runtime.
type Operation struct {
	// Name identifies the operation in logs and audit metadata.
	Name string
	// Collection is the record collection the operation targets.
	Collection string
	// Domain is the encryption key scope of the collection.
	Domain fieldcryptDomain.RecordDomain
	// Action is what the operation does to records.
	Action Action
	// AllowedRoles is the role set permitted to perform the operation.
	// Empty for user-scoped operations, which check identity instead.
	AllowedRoles []tenantDomain.Role
	// RequireStepUp tags the operation as demanding step-up authentication
	// regardless of the caller's role.
	RequireStepUp bool
	// UserScoped replaces the tenant membership and role checks with an
	// identity-equality check against the record's subject id.
	UserScoped bool
}

// Allows reports whether the role is in the operation's allowed set.
func (o *Operation) Allows(role tenantDomain.Role) bool {
	for _, allowed := range o.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequiresStepUp reports whether the caller must present a step-up assertion:
// either the operation is tagged, or the role is privileged.
func (o *Operation) RequiresStepUp(role tenantDomain.Role) bool {
	return o.RequireStepUp || PrivilegedRole(role)
}

// CollectionOperations groups the five guarded operations of one collection.
type CollectionOperations struct {
	List   *Operation
	View   *Operation
	Create *Operation
	Update *Operation
	Delete *Operation
}

// All returns the collection's operations in registration order.
func (c *CollectionOperations) All() []*Operation {
	return []*Operation{c.List, c.View, c.Create, c.Update, c.Delete}
}

// roleSets used by the operations table. List views are deliberately wider
// than detail views: a supervisor may scan the employee roster but never open
// a record's sensitive fields.
var (
	employeeListRoles = []tenantDomain.Role{
		tenantDomain.RoleAdmin,
		tenantDomain.RoleHRManager,
		tenantDomain.RoleSupervisor,
	}
	employeeDetailRoles = []tenantDomain.Role{
		tenantDomain.RoleAdmin,
		tenantDomain.RoleHRManager,
	}
	bankAccountRoles = []tenantDomain.Role{
		tenantDomain.RoleAdmin,
		tenantDomain.RoleFinanceManager,
	}
	payrollListRoles = []tenantDomain.Role{
		tenantDomain.RoleAdmin,
		tenantDomain.RolePayrollOfficer,
		tenantDomain.RoleHRManager,
	}
	payrollDetailRoles = []tenantDomain.Role{
		tenantDomain.RoleAdmin,
		tenantDomain.RolePayrollOfficer,
	}
	financialRoles = []tenantDomain.Role{
		tenantDomain.RoleAdmin,
		tenantDomain.RoleFinanceManager,
	}
)

// operations is the compiled-in authorization table, one entry per collection.
var operations = map[string]*CollectionOperations{
	"employees": buildOperations(operationSpec{
		collection:  "employees",
		domain:      fieldcryptDomain.DomainHR,
		listRoles:   employeeListRoles,
		detailRoles: employeeDetailRoles,
	}),
	"bank-accounts": buildOperations(operationSpec{
		collection:    "bank-accounts",
		domain:        fieldcryptDomain.DomainBanking,
		listRoles:     bankAccountRoles,
		detailRoles:   bankAccountRoles,
		stepUpOnWrite: true,
	}),
	"payroll-entries": buildOperations(operationSpec{
		collection:   "payroll-entries",
		domain:       fieldcryptDomain.DomainPayroll,
		listRoles:    payrollListRoles,
		detailRoles:  payrollDetailRoles,
		stepUpOnView: true,
	}),
	"company-financials": buildOperations(operationSpec{
		collection:    "company-financials",
		domain:        fieldcryptDomain.DomainFinance,
		listRoles:     financialRoles,
		detailRoles:   financialRoles,
		stepUpOnWrite: true,
	}),
	"personal-settings": buildOperations(operationSpec{
		collection:    "personal-settings",
		domain:        fieldcryptDomain.DomainPersonal,
		userScoped:    true,
		stepUpOnWrite: true,
	}),
}

// operationSpec is the shorthand the table is built from.
type operationSpec struct {
	collection    string
	domain        fieldcryptDomain.RecordDomain
	listRoles     []tenantDomain.Role
	detailRoles   []tenantDomain.Role
	stepUpOnView  bool
	stepUpOnWrite bool
	userScoped    bool
}

func buildOperations(spec operationSpec) *CollectionOperations {
	build := func(action Action, roles []tenantDomain.Role, stepUp bool) *Operation {
		return &Operation{
			Name:          spec.collection + "." + string(action),
			Collection:    spec.collection,
			Domain:        spec.domain,
			Action:        action,
			AllowedRoles:  roles,
			RequireStepUp: stepUp,
			UserScoped:    spec.userScoped,
		}
	}

	return &CollectionOperations{
		List:   build(ActionList, spec.listRoles, false),
		View:   build(ActionView, spec.detailRoles, spec.stepUpOnView),
		Create: build(ActionCreate, spec.detailRoles, spec.stepUpOnWrite),
		Update: build(ActionUpdate, spec.detailRoles, spec.stepUpOnWrite),
		Delete: build(ActionDelete, spec.detailRoles, spec.stepUpOnWrite),
	}
}

// OperationsFor resolves the guarded operations of a collection.
// Returns ErrUnknownCollection for collections without a field policy.
func OperationsFor(collection string) (*CollectionOperations, error) {
	ops, ok := operations[collection]
	if !ok {
		return nil, fieldcryptDomain.ErrUnknownCollection
	}
	return ops, nil
}

// auditReadOperation sits outside the collection table: audit entries are not
// an encrypted collection, so the operation carries no key domain and the
// guard resolves no key for it. Admin is a privileged role, so step-up is
// demanded without tagging the operation.
var auditReadOperation = &Operation{
	Name:         "audit-entries.list",
	Collection:   "audit-entries",
	Action:       ActionList,
	AllowedRoles: []tenantDomain.Role{tenantDomain.RoleAdmin},
}

// AuditReadOperation returns the guarded operation for reading a tenant's
// audit trail.
func AuditReadOperation() *Operation {
	return auditReadOperation
}

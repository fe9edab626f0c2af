package auth

import (
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
)

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionOrganisationCreate Action = "organisation.create"
	ActionOrganisationList   Action = "organisation.list"
	ActionOrganisationView   Action = "organisation.view"
	ActionOrganisationUpdate Action = "organisation.update"
	ActionOrganisationDelete Action = "organisation.delete"

	ActionDepartmentCreate        Action = "department.create"
	ActionDepartmentList          Action = "department.list"
	ActionDepartmentView          Action = "department.view"
	ActionDepartmentUpdate        Action = "department.update"
	ActionDepartmentDelete        Action = "department.delete"
	ActionDepartmentAssignManager Action = "department.assign_manager"
	ActionDepartmentRemoveManager Action = "department.remove_manager"

	ActionUserCreate  Action = "user.create"
	ActionUserList    Action = "user.list"
	ActionUserView    Action = "user.view"
	ActionUserUpdate  Action = "user.update"
	ActionUserDelete  Action = "user.delete"
	ActionUserPromote Action = "user.promote"
	ActionUserImport  Action = "user.import"

	ActionLogView Action = "log.view"
)

// Scope is the widest boundary a role may reach for an action.
type Scope int

const (
	ScopeNone Scope = iota // deny
	ScopeSelf              // target user must be the principal
	ScopeDepartment        // target must be in the principal's department
	ScopeOrganisation      // target must be in the principal's organisation
	ScopeAny               // unrestricted
)

// Target is the organisational coordinates of the resource an action touches.
// Unset fields mean "not applicable" for that action.
type Target struct {
	OrganisationID *uuid.UUID
	DepartmentID   *uuid.UUID
	UserID         *uuid.UUID
}

// policyTable is the whole authorization model as data. A missing role entry
// means deny, so new actions fail closed.
var policyTable = map[Action]map[Role]Scope{
	ActionOrganisationCreate: {RoleSuperadmin: ScopeAny},
	ActionOrganisationList:   {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionOrganisationView:   {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionOrganisationUpdate: {RoleSuperadmin: ScopeAny},
	ActionOrganisationDelete: {RoleSuperadmin: ScopeAny},

	ActionDepartmentCreate:        {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionDepartmentList:          {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation, RoleDepartmentManager: ScopeDepartment, RoleEmployee: ScopeDepartment},
	ActionDepartmentView:          {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation, RoleDepartmentManager: ScopeDepartment, RoleEmployee: ScopeDepartment},
	ActionDepartmentUpdate:        {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionDepartmentDelete:        {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionDepartmentAssignManager: {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionDepartmentRemoveManager: {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},

	ActionUserCreate:  {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionUserList:    {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation, RoleDepartmentManager: ScopeDepartment, RoleEmployee: ScopeSelf},
	ActionUserView:    {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation, RoleDepartmentManager: ScopeDepartment, RoleEmployee: ScopeSelf},
	ActionUserUpdate:  {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation, RoleDepartmentManager: ScopeDepartment, RoleEmployee: ScopeSelf},
	ActionUserDelete:  {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},
	ActionUserPromote: {RoleSuperadmin: ScopeAny},
	ActionUserImport:  {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeOrganisation},

	ActionLogView: {RoleSuperadmin: ScopeAny, RoleOrganisationAdmin: ScopeAny},
}

// Actions returns every action the policy table knows about.
func Actions() []Action {
	out := make([]Action, 0, len(policyTable))
	for a := range policyTable {
		out = append(out, a)
	}
	return out
}

func sameOrg(p Principal, orgID *uuid.UUID) bool {
	return p.OrganisationID != nil && orgID != nil && *p.OrganisationID == *orgID
}

func sameDept(p Principal, deptID *uuid.UUID) bool {
	return p.DepartmentID != nil && deptID != nil && *p.DepartmentID == *deptID
}

func isSelf(p Principal, userID *uuid.UUID) bool {
	return userID != nil && *userID == p.ID
}

// Authorize decides allow/deny for a single-resource action. List endpoints
// use ListScope instead and filter the result set.
func Authorize(p Principal, action Action, target Target) *internal.AppError {
	scope, ok := policyTable[action][p.Role]
	if !ok {
		return internal.ErrForbidden
	}

	switch scope {
	case ScopeAny:
		return nil
	case ScopeOrganisation:
		if sameOrg(p, target.OrganisationID) {
			return nil
		}
	case ScopeDepartment:
		if sameDept(p, target.DepartmentID) {
			return nil
		}
	case ScopeSelf:
		if isSelf(p, target.UserID) {
			return nil
		}
	}
	return internal.ErrForbidden
}

// ListScope returns the visibility boundary a list endpoint must filter to.
// Roles with no entry are denied outright rather than silently filtered to
// nothing.
func ListScope(p Principal, action Action) (Scope, *internal.AppError) {
	scope, ok := policyTable[action][p.Role]
	if !ok || scope == ScopeNone {
		return ScopeNone, internal.ErrForbidden
	}
	return scope, nil
}

// CanAssignRole reports whether the actor may create or set a user with the
// given role. Organisation admins can never mint superadmins or peers.
func CanAssignRole(actor Role, assigned Role) bool {
	switch actor {
	case RoleSuperadmin:
		return true
	case RoleOrganisationAdmin:
		return assigned != RoleSuperadmin && assigned != RoleOrganisationAdmin
	default:
		return false
	}
}

// RestrictedUpdateFields reports whether role/organisation/department fields
// are off-limits for an update of targetID by p. Department managers and
// employees may never touch them, and no actor may change them on their own
// record through the generic update path.
func RestrictedUpdateFields(p Principal, targetID uuid.UUID) bool {
	if p.Role == RoleDepartmentManager || p.Role == RoleEmployee {
		return true
	}
	return p.ID == targetID
}

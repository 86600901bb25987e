package auth

import "slices"

// Roles known to the platform
const (
	RoleDikti        = "dikti"
	RoleAdmin        = "admin"
	RoleJournalAdmin = "journal_admin"
	RoleReviewer     = "reviewer"
)

// Actions checked by the authorizer
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resources checked by the authorizer
const (
	ResourceTemplate = "template"
	ResourceAudit    = "audit"
)

// Authorizer decides whether a set of roles may perform action on resource
type Authorizer interface {
	Authorize(roles []string, action, resource string) bool
}

// RolePolicy is a static role to permission table. Every authenticated role
// may read templates; listed roles may perform the other actions.
type RolePolicy struct {
	grants map[string]map[string][]string
}

// NewRolePolicy returns the default policy: dikti and admin manage templates
// and read the audit trail.
func NewRolePolicy() *RolePolicy {
	managers := []string{RoleDikti, RoleAdmin}
	return &RolePolicy{
		grants: map[string]map[string][]string{
			ResourceTemplate: {
				ActionCreate: managers,
				ActionUpdate: managers,
				ActionDelete: managers,
			},
			ResourceAudit: {
				ActionRead: managers,
			},
		},
	}
}

// Authorize implements Authorizer
func (p *RolePolicy) Authorize(roles []string, action, resource string) bool {
	if len(roles) == 0 {
		return false
	}
	allowed, ok := p.grants[resource][action]
	if !ok {
		return action == ActionRead && resource == ResourceTemplate
	}
	for _, role := range roles {
		if slices.Contains(allowed, role) {
			return true
		}
	}
	return false
}

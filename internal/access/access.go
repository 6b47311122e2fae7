// Package access decides who may see and change organizations, posts and
// users. Each resource type has one authorization function taking the
// requester's role, the resource and the action; query scoping for list
// endpoints lives in scopes.go.
package access

import (
	"errors"

	"github.com/fremontasb/fremont-api/internal/models"
)

// ErrPermissionDenied is returned for writes the requester is not allowed to perform.
var ErrPermissionDenied = errors.New("permission denied")

// Actor is the authenticated requester.
type Actor struct {
	UserID    uint64
	Superuser bool
}

// ActorFor builds the actor for a loaded user.
func ActorFor(user *models.User) Actor {
	return Actor{UserID: user.ID, Superuser: user.IsSuperuser}
}

// Role is the requester's standing within one organization, ordered from
// narrowest to broadest privilege.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleAdvisor
	RoleAdmin
	RoleSuperuser
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleAdvisor:
		return "advisor"
	case RoleAdmin:
		return "admin"
	case RoleSuperuser:
		return "superuser"
	default:
		return "none"
	}
}

// Staff reports whether the role may manage the organization's content.
func (r Role) Staff() bool {
	return r >= RoleAdvisor
}

type Action string

const (
	// ActionView is an end-user read.
	ActionView Action = "view"
	// ActionManage is a read through the management surface.
	ActionManage Action = "manage"
	ActionCreate Action = "create"
	// ActionUpdate changes descriptive fields and links.
	ActionUpdate Action = "update"
	// ActionAdminister changes the admin/advisor sets and enrollment controls.
	ActionAdminister Action = "administer"
	ActionDelete     Action = "delete"
)

// Organization authorizes an action on an organization.
func Organization(role Role, org *models.Organization, action Action) error {
	allowed := false
	switch action {
	case ActionView:
		allowed = role >= RoleMember || (org != nil && org.Type == models.OrganizationTypeClub)
	case ActionManage, ActionUpdate:
		allowed = role >= RoleAdvisor
	case ActionAdminister, ActionDelete:
		allowed = role >= RoleAdmin
	case ActionCreate:
		allowed = role >= RoleSuperuser
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}

// Post authorizes an action on a post; role is the requester's role in the
// post's organization.
func Post(role Role, post *models.Post, action Action) error {
	allowed := false
	switch action {
	case ActionView:
		allowed = role.Staff() || (role == RoleMember && post != nil && post.Published)
	case ActionManage, ActionCreate, ActionUpdate, ActionDelete:
		allowed = role.Staff()
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}

// User authorizes an action on a user account and the resources nested
// under it (memberships, device tokens).
func User(actor Actor, targetUserID uint64, action Action) error {
	if actor.Superuser || actor.UserID == targetUserID {
		return nil
	}
	return ErrPermissionDenied
}

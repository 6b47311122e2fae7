package access

import (
	"github.com/fremontasb/fremont-api/internal/models"
	"gorm.io/gorm"
)

const (
	staffOrganizationIDs = "(organizations.id IN (SELECT organization_id FROM organization_admins WHERE user_id = ?)" +
		" OR organizations.id IN (SELECT organization_id FROM organization_advisors WHERE user_id = ?))"
	staffPostOrganizationIDs = "(posts.organization_id IN (SELECT organization_id FROM organization_admins WHERE user_id = ?)" +
		" OR posts.organization_id IN (SELECT organization_id FROM organization_advisors WHERE user_id = ?))"
	memberOrganizationIDs = "SELECT organization_id FROM memberships WHERE user_id = ? AND active = ?"
)

// ManagedOrganizations limits organizations to those the actor administers or advises.
func ManagedOrganizations(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Superuser {
			return db
		}
		return db.Where(staffOrganizationIDs, actor.UserID, actor.UserID)
	}
}

// VisibleOrganizations limits organizations to those the actor manages or
// belongs to. With includeClubs every club is listed as well, so that users
// can discover clubs to join.
func VisibleOrganizations(actor Actor, includeClubs bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Superuser {
			return db
		}
		cond := staffOrganizationIDs + " OR organizations.id IN (" + memberOrganizationIDs + ")"
		args := []interface{}{actor.UserID, actor.UserID, actor.UserID, true}
		if includeClubs {
			cond += " OR organizations.type = ?"
			args = append(args, models.OrganizationTypeClub)
		}
		return db.Where("("+cond+")", args...)
	}
}

// PublishedForMember limits posts to published posts of organizations the actor is an active member of.
func PublishedForMember(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.published = ?", true).
			Where("posts.organization_id IN ("+memberOrganizationIDs+")", actor.UserID, true)
	}
}

// ManagedPosts limits posts to those of organizations the actor administers or advises.
func ManagedPosts(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Superuser {
			return db
		}
		return db.Where(staffPostOrganizationIDs, actor.UserID, actor.UserID)
	}
}

// PostsOfOrganization limits posts to one organization.
func PostsOfOrganization(orgID uint64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.organization_id = ?", orgID)
	}
}

// OrganizationsOfType limits organizations to one type.
func OrganizationsOfType(orgType models.OrganizationType) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organizations.type = ?", orgType)
	}
}

// VisibleUsers limits users to the actor itself unless the actor is a superuser.
func VisibleUsers(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Superuser {
			return db
		}
		return db.Where("users.id = ?", actor.UserID)
	}
}

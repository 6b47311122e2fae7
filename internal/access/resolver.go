package access

import (
	"errors"
	"fmt"

	"github.com/fremontasb/fremont-api/internal/repository"
	"gorm.io/gorm"
)

// Resolver computes an actor's role in an organization from the store.
type Resolver struct {
	orgRepo    repository.OrganizationRepository
	memberRepo repository.MembershipRepository
}

// NewResolver creates a new Resolver.
func NewResolver(orgRepo repository.OrganizationRepository, memberRepo repository.MembershipRepository) *Resolver {
	return &Resolver{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
	}
}

// OrganizationRole returns the broadest role the actor holds in the organization.
func (r *Resolver) OrganizationRole(actor Actor, orgID uint64) (Role, error) {
	if actor.Superuser {
		return RoleSuperuser, nil
	}

	isAdmin, err := r.orgRepo.IsAdmin(orgID, actor.UserID)
	if err != nil {
		return RoleNone, fmt.Errorf("failed to check admin role: %w", err)
	}
	if isAdmin {
		return RoleAdmin, nil
	}

	isAdvisor, err := r.orgRepo.IsAdvisor(orgID, actor.UserID)
	if err != nil {
		return RoleNone, fmt.Errorf("failed to check advisor role: %w", err)
	}
	if isAdvisor {
		return RoleAdvisor, nil
	}

	member, err := r.memberRepo.Find(orgID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleNone, nil
		}
		return RoleNone, fmt.Errorf("failed to check membership: %w", err)
	}
	if member.Active {
		return RoleMember, nil
	}
	return RoleNone, nil
}

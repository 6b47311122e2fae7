package services

import (
	"fmt"

	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/repository"
)

// ReconcileUser brings a user's memberships in line with the enrollment
// rules: every required organization plus the class organization of the
// user's graduation year, and no class organization of another year. Club
// memberships are left alone. It must run in the transaction that saved
// the user.
func ReconcileUser(tx *repository.Store, user *models.User) error {
	addIDs, err := tx.Organizations.EnrollmentIDsForGradYear(user.GradYear)
	if err != nil {
		return fmt.Errorf("failed to resolve required organizations: %w", err)
	}

	removeIDs, err := tx.Organizations.ClassIDsExcludingGradYear(user.GradYear)
	if err != nil {
		return fmt.Errorf("failed to resolve other class organizations: %w", err)
	}

	if err := tx.Memberships.EnsureForUser(user.ID, addIDs); err != nil {
		return fmt.Errorf("failed to add required memberships: %w", err)
	}

	if err := tx.Memberships.DeleteForUser(user.ID, removeIDs); err != nil {
		return fmt.Errorf("failed to remove class memberships: %w", err)
	}

	return nil
}

// ReconcileOrganization enrolls the users an organization requires. It
// never removes members.
func ReconcileOrganization(tx *repository.Store, org *models.Organization) error {
	var (
		userIDs []uint64
		err     error
	)

	switch {
	case org.Required:
		userIDs, err = tx.Users.IDs()
	case org.RequiredGradYear != nil:
		userIDs, err = tx.Users.IDsByGradYear(*org.RequiredGradYear)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve required members: %w", err)
	}

	if err := tx.Memberships.EnsureForOrganization(org.ID, userIDs); err != nil {
		return fmt.Errorf("failed to add required members: %w", err)
	}

	return nil
}

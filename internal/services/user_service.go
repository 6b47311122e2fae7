package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrAlreadyMember         = fmt.Errorf("user is already a member of this organization: %w", ErrConflict)
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrMembershipNotJoinable = errors.New("only clubs can be joined or left")
	ErrTokenRequired         = errors.New("token is required")
)

// UserService handles profiles, memberships and device tokens of users.
type UserService struct {
	store *repository.Store
}

// NewUserService creates a new UserService.
func NewUserService(store *repository.Store) *UserService {
	return &UserService{
		store: store,
	}
}

// ListUsers returns the users the actor may see.
func (s *UserService) ListUsers(actor access.Actor) ([]models.User, error) {
	users, err := s.store.Users.List(access.VisibleUsers(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a user together with its active memberships.
func (s *UserService) GetUser(actor access.Actor, userID uint64) (*models.User, []models.Membership, error) {
	if err := access.User(actor, userID, access.ActionView); err != nil {
		return nil, nil, ErrUserNotFound
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, nil, err
	}

	memberships, err := s.store.Memberships.ListActiveByUserID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	return user, memberships, nil
}

// UpdateProfileInput holds the profile fields a user may change.
type UpdateProfileInput struct {
	GradYear      *int
	ClearGradYear bool
}

// UpdateProfile changes a user's graduation year and re-enrolls the user accordingly.
func (s *UserService) UpdateProfile(actor access.Actor, userID uint64, input UpdateProfileInput) (*models.User, error) {
	if err := access.User(actor, userID, access.ActionUpdate); err != nil {
		return nil, err
	}

	if input.GradYear != nil && (*input.GradYear < 1900 || *input.GradYear > 2200) {
		return nil, newValidationError("grad_year", "must be between 1900 and 2200")
	}

	var user *models.User
	err := s.store.Transaction(func(tx *repository.Store) error {
		found, err := tx.Users.FindByID(userID)
		if err != nil {
			return err
		}

		if input.ClearGradYear {
			found.GradYear = nil
		} else if input.GradYear != nil {
			found.GradYear = input.GradYear
		}

		if err := tx.Users.Update(found); err != nil {
			return err
		}
		if err := ReconcileUser(tx, found); err != nil {
			return err
		}

		user = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// ReconcileAll re-applies the enrollment rules to every user, one transaction per user.
func (s *UserService) ReconcileAll() (int, error) {
	ids, err := s.store.Users.IDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	for i, id := range ids {
		err := s.store.Transaction(func(tx *repository.Store) error {
			user, err := tx.Users.FindByID(id)
			if err != nil {
				return err
			}
			return ReconcileUser(tx, user)
		})
		if err != nil {
			return i, fmt.Errorf("failed to reconcile user %d: %w", id, err)
		}
	}

	return len(ids), nil
}

// ListMemberships returns a user's active memberships.
func (s *UserService) ListMemberships(actor access.Actor, userID uint64) ([]models.Membership, error) {
	if err := access.User(actor, userID, access.ActionView); err != nil {
		return []models.Membership{}, nil
	}

	memberships, err := s.store.Memberships.ListActiveByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// GetMembership returns a user's active membership in an organization.
func (s *UserService) GetMembership(actor access.Actor, userID, orgID uint64) (*models.Membership, error) {
	if err := access.User(actor, userID, access.ActionView); err != nil {
		return nil, ErrMembershipNotFound
	}

	member, err := s.store.Memberships.Find(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	if !member.Active {
		return nil, ErrMembershipNotFound
	}
	return member, nil
}

// JoinOrganization adds a user to a club. Rejoining a club the user left
// restores the old membership with its points.
func (s *UserService) JoinOrganization(actor access.Actor, userID, orgID uint64) (*models.Membership, error) {
	if err := access.User(actor, userID, access.ActionCreate); err != nil {
		return nil, err
	}

	org, err := s.store.Organizations.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	if org.Type != models.OrganizationTypeClub && !actor.Superuser {
		return nil, ErrMembershipNotJoinable
	}

	existing, err := s.store.Memberships.Find(orgID, userID)
	switch {
	case err == nil && existing.Active:
		return nil, ErrAlreadyMember
	case err == nil:
		existing.Active = true
		if err := s.store.Memberships.Save(existing); err != nil {
			return nil, fmt.Errorf("failed to rejoin organization: %w", err)
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Active:         true,
		JoinedAt:       time.Now(),
	}
	if err := s.store.Memberships.Create(member); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join organization: %w", err)
	}
	member.Organization = *org

	return member, nil
}

// LeaveOrganization deactivates a user's club membership. Points are kept.
func (s *UserService) LeaveOrganization(actor access.Actor, userID, orgID uint64) error {
	if err := access.User(actor, userID, access.ActionDelete); err != nil {
		return err
	}

	member, err := s.store.Memberships.Find(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}
	if !member.Active {
		return ErrMembershipNotFound
	}
	if member.Organization.Type != models.OrganizationTypeClub && !actor.Superuser {
		return ErrMembershipNotJoinable
	}

	member.Active = false
	if err := s.store.Memberships.Save(member); err != nil {
		return fmt.Errorf("failed to leave organization: %w", err)
	}
	return nil
}

// ListDeviceTokens returns the push tokens a user registered.
func (s *UserService) ListDeviceTokens(actor access.Actor, userID uint64) ([]models.DeviceToken, error) {
	if err := access.User(actor, userID, access.ActionView); err != nil {
		return []models.DeviceToken{}, nil
	}

	tokens, err := s.store.DeviceTokens.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	return tokens, nil
}

// RegisterDeviceToken records a push token for a user. Registering a known
// token again is a no-op, and a token seen on another account moves over.
func (s *UserService) RegisterDeviceToken(actor access.Actor, userID uint64, token string) (*models.DeviceToken, error) {
	if err := access.User(actor, userID, access.ActionCreate); err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	if _, err := s.findUser(userID); err != nil {
		return nil, err
	}

	deviceToken := &models.DeviceToken{UserID: userID, Token: token}
	if err := s.store.DeviceTokens.Upsert(deviceToken); err != nil {
		return nil, fmt.Errorf("failed to register device token: %w", err)
	}

	log.Debug().Uint64("user_id", userID).Msg("Device token registered")
	return deviceToken, nil
}

func (s *UserService) findUser(userID uint64) (*models.User, error) {
	user, err := s.store.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

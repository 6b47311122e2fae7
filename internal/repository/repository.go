package repository

import (
	"context"

	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update saves all fields of a user
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(email string) (*models.User, error)

	// FindByIDs finds all users with the given IDs
	FindByIDs(ids []uint64) ([]models.User, error)

	// List lists users visible through the given scopes
	List(scopes ...func(*gorm.DB) *gorm.DB) ([]models.User, error)

	// IDs returns every user ID
	IDs() ([]uint64, error)

	// IDsByGradYear returns the IDs of users graduating in the given year
	IDsByGradYear(year int) ([]uint64, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Organization, error)

	// FindByName finds an organization by exact name
	FindByName(name string) (*models.Organization, error)

	// List lists organizations visible through the given scopes
	List(scopes ...func(*gorm.DB) *gorm.DB) ([]models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// ReplaceStaff replaces the admin and advisor sets of an organization
	ReplaceStaff(org *models.Organization, admins, advisors []models.User) error

	// Delete deletes an organization and all related data
	Delete(id uint64) error

	// EnrollmentIDsForGradYear returns organizations a user with the given
	// graduation year must belong to
	EnrollmentIDsForGradYear(gradYear *int) ([]uint64, error)

	// ClassIDsExcludingGradYear returns class organizations a user with the
	// given graduation year must not belong to
	ClassIDsExcludingGradYear(gradYear *int) ([]uint64, error)

	// IsAdmin reports whether the user is an admin of the organization
	IsAdmin(orgID, userID uint64) (bool, error)

	// IsAdvisor reports whether the user is an advisor of the organization
	IsAdvisor(orgID, userID uint64) (bool, error)

	// CreateLink adds a link to an organization
	CreateLink(link *models.OrganizationLink) error

	// DeleteLink removes a link from an organization
	DeleteLink(orgID, linkID uint64) (bool, error)
}

// MembershipRepository defines the interface for membership data access
type MembershipRepository interface {
	// Find finds the membership for a user and organization, active or not
	Find(orgID, userID uint64) (*models.Membership, error)

	// Create inserts a new membership; a duplicate pair fails with gorm.ErrDuplicatedKey
	Create(member *models.Membership) error

	// Save updates an existing membership
	Save(member *models.Membership) error

	// EnsureForUser enrolls a user in the given organizations without touching existing points
	EnsureForUser(userID uint64, orgIDs []uint64) error

	// EnsureForOrganization enrolls the given users in an organization without touching existing points
	EnsureForOrganization(orgID uint64, userIDs []uint64) error

	// DeleteForUser removes a user's memberships in the given organizations
	DeleteForUser(userID uint64, orgIDs []uint64) error

	// ListActiveByUserID lists a user's active memberships with their organizations
	ListActiveByUserID(userID uint64) ([]models.Membership, error)

	// ListByUserID lists all of a user's memberships, active or not
	ListByUserID(userID uint64) ([]models.Membership, error)
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create creates a new post
	Create(post *models.Post) error

	// FindByID finds a post by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Post, error)

	// List retrieves posts visible through the given scopes, newest first
	List(params utils.PaginationParams, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Post, int64, error)

	// Update updates a post
	Update(post *models.Post) error

	// Delete deletes a post
	Delete(id uint64) error
}

// DeviceTokenRepository defines the interface for device token data access
type DeviceTokenRepository interface {
	// Upsert registers a token for a user, moving it over if another user held it
	Upsert(token *models.DeviceToken) error

	// ListByUserID lists the tokens registered by a user
	ListByUserID(userID uint64) ([]models.DeviceToken, error)

	// TokensForOrganization returns the tokens of every active member of an organization
	TokensForOrganization(ctx context.Context, orgID uint64) ([]string, error)
}

// Store groups the repositories sharing one database handle so that a
// write and its follow-up work can run in a single transaction.
type Store struct {
	db *gorm.DB

	Users         UserRepository
	Organizations OrganizationRepository
	Memberships   MembershipRepository
	Posts         PostRepository
	DeviceTokens  DeviceTokenRepository
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Organizations: NewOrganizationRepository(db),
		Memberships:   NewMembershipRepository(db),
		Posts:         NewPostRepository(db),
		DeviceTokens:  NewDeviceTokenRepository(db),
	}
}

// DB returns the underlying database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a single transaction. Any error
// returned by fn rolls the whole transaction back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

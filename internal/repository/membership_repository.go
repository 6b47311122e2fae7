package repository

import (
	"time"

	"github.com/fremontasb/fremont-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const enrollmentBatchSize = 500

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

// Find finds the membership for a user and organization, active or not
func (r *GormMembershipRepository) Find(orgID, userID uint64) (*models.Membership, error) {
	var member models.Membership
	if err := r.db.Preload("Organization").
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a new membership
func (r *GormMembershipRepository) Create(member *models.Membership) error {
	return r.db.Omit(clause.Associations).Create(member).Error
}

// Save updates an existing membership
func (r *GormMembershipRepository) Save(member *models.Membership) error {
	return r.db.Model(&models.Membership{}).
		Where("organization_id = ? AND user_id = ?", member.OrganizationID, member.UserID).
		Updates(map[string]interface{}{
			"points": member.Points,
			"active": member.Active,
		}).Error
}

// EnsureForUser enrolls a user in the given organizations
func (r *GormMembershipRepository) EnsureForUser(userID uint64, orgIDs []uint64) error {
	now := time.Now()
	members := make([]models.Membership, len(orgIDs))
	for i, orgID := range orgIDs {
		members[i] = models.Membership{OrganizationID: orgID, UserID: userID, Active: true, JoinedAt: now}
	}
	return r.ensure(members)
}

// EnsureForOrganization enrolls the given users in an organization
func (r *GormMembershipRepository) EnsureForOrganization(orgID uint64, userIDs []uint64) error {
	now := time.Now()
	members := make([]models.Membership, len(userIDs))
	for i, userID := range userIDs {
		members[i] = models.Membership{OrganizationID: orgID, UserID: userID, Active: true, JoinedAt: now}
	}
	return r.ensure(members)
}

// ensure inserts memberships, reactivating rows that already exist. Points
// and join dates of existing rows are left as they are.
func (r *GormMembershipRepository) ensure(members []models.Membership) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"active": true}),
		}).
		CreateInBatches(members, enrollmentBatchSize).Error
}

// DeleteForUser removes a user's memberships in the given organizations
func (r *GormMembershipRepository) DeleteForUser(userID uint64, orgIDs []uint64) error {
	if len(orgIDs) == 0 {
		return nil
	}
	return r.db.Where("user_id = ? AND organization_id IN ?", userID, orgIDs).
		Delete(&models.Membership{}).Error
}

// ListActiveByUserID lists a user's active memberships with their organizations
func (r *GormMembershipRepository) ListActiveByUserID(userID uint64) ([]models.Membership, error) {
	memberships := []models.Membership{}
	if err := r.db.Preload("Organization").
		Where("user_id = ? AND active = ?", userID, true).
		Order("organization_id ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUserID lists all of a user's memberships, active or not
func (r *GormMembershipRepository) ListByUserID(userID uint64) ([]models.Membership, error) {
	memberships := []models.Membership{}
	if err := r.db.Where("user_id = ?", userID).
		Order("organization_id ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

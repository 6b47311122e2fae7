package repository

import (
	"github.com/fremontasb/fremont-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Omit("Admins", "Advisors", "Memberships", "Posts").Create(org).Error
}

// FindByID finds an organization by ID with optional preloading
func (r *GormOrganizationRepository) FindByID(id uint64, preload ...string) (*models.Organization, error) {
	var org models.Organization
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByName finds an organization by exact name
func (r *GormOrganizationRepository) FindByName(name string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("name = ?", name).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// List lists organizations visible through the given scopes
func (r *GormOrganizationRepository) List(scopes ...func(*gorm.DB) *gorm.DB) ([]models.Organization, error) {
	orgs := []models.Organization{}
	if err := r.db.Scopes(scopes...).Order("name ASC, id ASC").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Omit("Admins", "Advisors", "Links", "Memberships", "Posts").Save(org).Error
}

// ReplaceStaff replaces the admin and advisor sets of an organization. A nil
// slice leaves that set unchanged; an empty one clears it.
func (r *GormOrganizationRepository) ReplaceStaff(org *models.Organization, admins, advisors []models.User) error {
	if err := r.replaceUsers(org, "Admins", admins); err != nil {
		return err
	}
	return r.replaceUsers(org, "Advisors", advisors)
}

func (r *GormOrganizationRepository) replaceUsers(org *models.Organization, association string, users []models.User) error {
	switch {
	case users == nil:
		return nil
	case len(users) == 0:
		return r.db.Model(org).Association(association).Clear()
	default:
		return r.db.Model(org).Association(association).Replace(users)
	}
}

// Delete deletes an organization and all related data in a transaction
func (r *GormOrganizationRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		org := models.Organization{ID: id}

		if err := tx.Model(&org).Association("Admins").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&org).Association("Advisors").Clear(); err != nil {
			return err
		}

		// Delete all links, posts and members
		if err := tx.Where("organization_id = ?", id).Delete(&models.OrganizationLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}

		// Delete organization
		if err := tx.Delete(&models.Organization{}, id).Error; err != nil {
			return err
		}

		return nil
	})
}

// EnrollmentIDsForGradYear returns organizations that are required for
// everyone or required for the given graduation year.
func (r *GormOrganizationRepository) EnrollmentIDsForGradYear(gradYear *int) ([]uint64, error) {
	var ids []uint64
	query := r.db.Model(&models.Organization{})
	if gradYear == nil {
		query = query.Where("required = ?", true)
	} else {
		query = query.Where("required = ? OR (required_grad_year IS NOT NULL AND required_grad_year = ?)", true, *gradYear)
	}
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ClassIDsExcludingGradYear returns organizations bound to a graduation year
// other than the given one. A nil year matches every such organization.
func (r *GormOrganizationRepository) ClassIDsExcludingGradYear(gradYear *int) ([]uint64, error) {
	var ids []uint64
	query := r.db.Model(&models.Organization{}).Where("required_grad_year IS NOT NULL")
	if gradYear != nil {
		query = query.Where("required_grad_year <> ?", *gradYear)
	}
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IsAdmin reports whether the user is an admin of the organization
func (r *GormOrganizationRepository) IsAdmin(orgID, userID uint64) (bool, error) {
	return r.inJoinTable("organization_admins", orgID, userID)
}

// IsAdvisor reports whether the user is an advisor of the organization
func (r *GormOrganizationRepository) IsAdvisor(orgID, userID uint64) (bool, error) {
	return r.inJoinTable("organization_advisors", orgID, userID)
}

func (r *GormOrganizationRepository) inJoinTable(table string, orgID, userID uint64) (bool, error) {
	var count int64
	if err := r.db.Table(table).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateLink adds a link to an organization
func (r *GormOrganizationRepository) CreateLink(link *models.OrganizationLink) error {
	return r.db.Create(link).Error
}

// DeleteLink removes a link from an organization and reports whether it existed
func (r *GormOrganizationRepository) DeleteLink(orgID, linkID uint64) (bool, error) {
	result := r.db.Where("organization_id = ? AND id = ?", orgID, linkID).Delete(&models.OrganizationLink{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

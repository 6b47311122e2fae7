package repository

import (
	"github.com/fremontasb/fremont-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update saves all fields of a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Omit("Memberships", "DeviceTokens").Save(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs finds all users with the given IDs
func (r *GormUserRepository) FindByIDs(ids []uint64) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// List lists users visible through the given scopes
func (r *GormUserRepository) List(scopes ...func(*gorm.DB) *gorm.DB) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.Scopes(scopes...).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// IDs returns every user ID
func (r *GormUserRepository) IDs() ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IDsByGradYear returns the IDs of users graduating in the given year
func (r *GormUserRepository) IDsByGradYear(year int) ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.User{}).
		Where("grad_year = ?", year).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

package repository

import (
	"context"

	"github.com/fremontasb/fremont-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDeviceTokenRepository is a GORM implementation of DeviceTokenRepository
type GormDeviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new DeviceTokenRepository
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &GormDeviceTokenRepository{db: db}
}

// Upsert registers a token keyed by its value
func (r *GormDeviceTokenRepository) Upsert(token *models.DeviceToken) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
	}).Create(token).Error
	if err != nil {
		return err
	}
	// The ID is not returned reliably on conflict by every driver.
	var stored models.DeviceToken
	if err := r.db.Where("token = ?", token.Token).First(&stored).Error; err != nil {
		return err
	}
	*token = stored
	return nil
}

// ListByUserID lists the tokens registered by a user
func (r *GormDeviceTokenRepository) ListByUserID(userID uint64) ([]models.DeviceToken, error) {
	tokens := []models.DeviceToken{}
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// TokensForOrganization returns the tokens of every active member of an organization
func (r *GormDeviceTokenRepository) TokensForOrganization(ctx context.Context, orgID uint64) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Joins("JOIN memberships ON memberships.user_id = device_tokens.user_id").
		Where("memberships.organization_id = ? AND memberships.active = ?", orgID, true).
		Where("device_tokens.token <> ''").
		Order("device_tokens.id ASC").
		Pluck("device_tokens.token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

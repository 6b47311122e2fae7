package repository

import (
	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostRepository is a GORM implementation of PostRepository
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

// Create creates a new post
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

// FindByID finds a post by ID with optional preloading
func (r *GormPostRepository) FindByID(id uint64, preload ...string) (*models.Post, error) {
	var post models.Post
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&post, id).Error; err != nil {
		return nil, err
	}

	return &post, nil
}

// List retrieves posts with scoping and pagination
func (r *GormPostRepository) List(params utils.PaginationParams, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Post, int64, error) {
	posts := []models.Post{}

	query := r.db.Model(&models.Post{}).Scopes(scopes...)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("posts.date DESC, posts.id DESC")
	if params.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(params))
	}

	if err := listQuery.Preload("Organization").Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// Update updates a post
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

// Delete deletes a post
func (r *GormPostRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Post{}, id).Error
}

package database

import (
	"fmt"

	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type compositeIndex struct {
	name    string
	model   interface{}
	table   string
	columns string
}

// compositeIndexes are the multi-column indexes the hot queries rely on.
// Single-column indexes are declared on the models.
var compositeIndexes = []compositeIndex{
	// Roster lookups for notification dispatch
	{"idx_memberships_org_active", &models.Membership{}, "memberships", "organization_id, active"},
	// Published post feed
	{"idx_posts_org_published_date", &models.Post{}, "posts", "organization_id, published, date"},
	// Enrollment rule lookups
	{"idx_organizations_required_grad_year", &models.Organization{}, "organizations", "required, required_grad_year"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Str("columns", idx.columns).Msg("Created index")
	}

	return nil
}

// MigrateDatabase runs the migrations AutoMigrate cannot express
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}

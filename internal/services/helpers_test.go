package services

import (
	"testing"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/notifications"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var superuser = access.Actor{UserID: 0, Superuser: true}

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: opens a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models...))

	return repository.NewStore(db)
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func createTestUser(t *testing.T, store *repository.Store, email string, gradYear *int) *models.User {
	t.Helper()

	user, err := NewAuthService(store).Signup(SignupInput{
		Email:    email,
		Password: "supersecret",
		GradYear: gradYear,
	})
	require.NoError(t, err)
	return user
}

func createTestOrganization(t *testing.T, store *repository.Store, input CreateOrganizationInput) *models.Organization {
	t.Helper()

	org, err := NewOrganizationService(store).CreateOrganization(superuser, input)
	require.NoError(t, err)
	return org
}

func globalOrg(name string) CreateOrganizationInput {
	return CreateOrganizationInput{Name: name, Type: models.OrganizationTypeGlobal, Required: true}
}

func classOrg(name string, year int) CreateOrganizationInput {
	return CreateOrganizationInput{Name: name, Type: models.OrganizationTypeClass, RequiredGradYear: intPtr(year)}
}

func clubOrg(name string) CreateOrganizationInput {
	return CreateOrganizationInput{Name: name, Type: models.OrganizationTypeClub}
}

// activeOrgIDs returns the organizations a user is an active member of.
func activeOrgIDs(t *testing.T, store *repository.Store, userID uint64) []uint64 {
	t.Helper()

	memberships, err := store.Memberships.ListActiveByUserID(userID)
	require.NoError(t, err)

	ids := make([]uint64, len(memberships))
	for i, m := range memberships {
		ids[i] = m.OrganizationID
	}
	return ids
}

type recordingNotifier struct {
	sent []notifications.Notification
	err  error
}

func (r *recordingNotifier) Enqueue(n notifications.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func orgTypePtr(v models.OrganizationType) *models.OrganizationType {
	return &v
}

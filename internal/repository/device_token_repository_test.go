package repository

import (
	"context"
	"testing"

	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models...))
	return NewStore(db)
}

func TestDeviceTokens_TokensForOrganization(t *testing.T) {
	store := setupTestStore(t)

	org := &models.Organization{Name: "Chess", Type: models.OrganizationTypeClub}
	require.NoError(t, store.Organizations.Create(org))
	other := &models.Organization{Name: "Drama", Type: models.OrganizationTypeClub}
	require.NoError(t, store.Organizations.Create(other))

	var users []models.User
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := models.User{Email: email, PasswordHash: "x"}
		require.NoError(t, store.Users.Create(&user))
		users = append(users, user)
	}

	require.NoError(t, store.Memberships.EnsureForOrganization(org.ID, []uint64{users[0].ID, users[1].ID}))
	require.NoError(t, store.Memberships.EnsureForOrganization(other.ID, []uint64{users[2].ID}))

	left, err := store.Memberships.Find(org.ID, users[1].ID)
	require.NoError(t, err)
	left.Active = false
	require.NoError(t, store.Memberships.Save(left))

	for _, tok := range []models.DeviceToken{
		{UserID: users[0].ID, Token: "phone-a"},
		{UserID: users[0].ID, Token: "tablet-a"},
		{UserID: users[1].ID, Token: "phone-b"},
		{UserID: users[2].ID, Token: "phone-c"},
	} {
		require.NoError(t, store.DeviceTokens.Upsert(&tok))
	}

	tokens, err := store.DeviceTokens.TokensForOrganization(context.Background(), org.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"phone-a", "tablet-a"}, tokens)
}

func TestDeviceTokens_UpsertMovesToken(t *testing.T) {
	store := setupTestStore(t)

	alice := models.User{Email: "alice@example.com", PasswordHash: "x"}
	bob := models.User{Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(&alice))
	require.NoError(t, store.Users.Create(&bob))

	first := models.DeviceToken{UserID: alice.ID, Token: "shared"}
	require.NoError(t, store.DeviceTokens.Upsert(&first))

	second := models.DeviceToken{UserID: bob.ID, Token: "shared"}
	require.NoError(t, store.DeviceTokens.Upsert(&second))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, bob.ID, second.UserID)

	tokens, err := store.DeviceTokens.ListByUserID(alice.ID)
	require.NoError(t, err)
	require.Empty(t, tokens)
}

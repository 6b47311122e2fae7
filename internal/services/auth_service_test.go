package services

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	store := setupTestStore(t)
	service := NewAuthService(store)

	user, err := service.Signup(SignupInput{
		Email:     "  Student@Example.com ",
		Password:  "supersecret",
		FirstName: "Ada",
		GradYear:  intPtr(2026),
	})
	require.NoError(t, err)
	require.Equal(t, "student@example.com", user.Email)
	require.NotEqual(t, "supersecret", user.PasswordHash)

	_, err = service.Signup(SignupInput{Email: "STUDENT@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := service.Login(LoginInput{Email: "student@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	_, err = service.Login(LoginInput{Email: "student@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_SignupValidation(t *testing.T) {
	store := setupTestStore(t)
	service := NewAuthService(store)

	_, err := service.Signup(SignupInput{Email: "a@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = service.Signup(SignupInput{Email: "not-an-email", Password: "supersecret"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "email")

	_, err = service.Signup(SignupInput{Email: "b@example.com", Password: "supersecret", Type: "ALIEN"})
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "type")
}

// A failed enrollment must not leave a user behind without its required memberships.
func TestAuthService_SignupRollsBackWhenEnrollmentFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM "organizations"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = NewAuthService(repository.NewStore(db)).Signup(SignupInput{
		Email:    "student@example.com",
		Password: "supersecret",
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEmailTaken)

	require.NoError(t, mock.ExpectationsWereMet())
}

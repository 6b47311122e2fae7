package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fremontasb/fremont-api/internal/access"
	"github.com/fremontasb/fremont-api/internal/constants"
	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/fremontasb/fremont-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles registration and authentication.
type AuthService struct {
	store *repository.Store
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store) *AuthService {
	return &AuthService{
		store: store,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email     string          `json:"email" validate:"required,email,max=255"`
	Password  string          `json:"password" validate:"required"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	GradYear  *int            `json:"grad_year" validate:"omitempty,min=1900,max=2200"`
	Type      models.UserType `json:"type" validate:"omitempty,oneof=STUDENT STAFF GUEST"`

	// Set only by operator tooling.
	IsStaff     bool `json:"-"`
	IsSuperuser bool `json:"-"`
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new user and enrolls it in the organizations it is required to join.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	input.Email = NormalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Type == "" {
		input.Type = models.UserTypeStudent
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		GradYear:     input.GradYear,
		Type:         input.Type,
		IsStaff:      input.IsStaff,
		IsSuperuser:  input.IsSuperuser,
	}

	err = s.store.Transaction(func(tx *repository.Store) error {
		if err := tx.Users.Create(user); err != nil {
			return err
		}
		return ReconcileUser(tx, user)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to complete signup: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.store.Users.FindByEmail(NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.store.Users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Actor loads the requester identity for an authenticated user ID.
func (s *AuthService) Actor(userID uint64) (access.Actor, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return access.Actor{}, err
	}
	return access.ActorFor(user), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
	"lending-service/pkg/crypto"
)

// UserSvc is an implementation of the service.UserService interface
type UserSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	hasher    *crypto.PasswordHasher
	clock     func() time.Time
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService creates a new UserSvc
func NewUserService(deps Dependencies) *UserSvc {
	return &UserSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		hasher:    crypto.NewPasswordHasher(),
		clock:     deps.Clock,
		jwtSecret: deps.Config.JWT.Secret,
		jwtTTL:    time.Duration(deps.Config.JWT.TTL) * time.Hour,
	}
}

// Register registers a new back-office user
func (s *UserSvc) Register(ctx context.Context, userReg *models.UserRegistration) (uuid.UUID, error) {
	if err := userReg.ValidateRegistration(); err != nil {
		return uuid.Nil, &models.ValidationError{Reasons: []string{err.Error()}}
	}

	// Check if user exists
	_, err := s.repos.User.GetByEmail(ctx, userReg.Email)
	if err == nil {
		return uuid.Nil, fmt.Errorf("email %w", models.ErrAlreadyExists)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := userReg.ToUser()

	// Hash the password
	hashedPassword, err := s.hasher.HashPassword(user.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PassHash = hashedPassword

	// Create the user
	if err := s.repos.User.Create(ctx, user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("User registered: %s", user.ID)

	return user.ID, nil
}

// Login logs in a user and returns a JWT token
func (s *UserSvc) Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error) {
	// Get the user
	user, err := s.repos.User.GetByEmail(ctx, login.Email)
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	// Verify password
	if !s.hasher.CheckPasswordHash(login.Password, user.PassHash) {
		return nil, models.ErrInvalidCredentials
	}

	// Generate JWT token
	expirationTime := s.clock().Add(s.jwtTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"exp":     expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Infof("User logged in: %s", user.ID)

	return &models.TokenResponse{
		Token:     tokenString,
		ExpiresAt: expirationTime.Unix(),
	}, nil
}

// GetByID gets a user by ID
func (s *UserSvc) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Don't expose the password hash
	user.PassHash = ""

	return user, nil
}

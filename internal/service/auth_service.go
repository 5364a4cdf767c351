package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/models"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/password"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/repository"
)

var (
	// ErrEmailInUse is returned when attempting to register a duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// ProfileRepository defines the profile storage contract used by the services.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
}

// AuthService contains signup/login logic for mining accounts.
type AuthService struct {
	profiles  ProfileRepository
	hasher    password.Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(profiles ProfileRepository, hasher password.Hasher, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		profiles:  profiles,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Signup registers a new mining account.
func (s *AuthService) Signup(ctx context.Context, email, displayName, plain string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if plain == "" {
		return nil, errors.New("auth: password required")
	}
	if displayName == "" {
		displayName = email
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Email:        email,
		DisplayName:  displayName,
		Role:         "user",
		PasswordHash: hash,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile signed up", zap.Int64("user_id", profile.ID), zap.String("email", profile.Email))
	return profile, nil
}

// Login authenticates a profile and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, plain string) (string, *models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		return "", nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if profile.PasswordHash == "" {
		// lazily created mining profile, password never set
		return "", nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(profile.PasswordHash, plain); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		return "", nil, err
	}

	return token, profile, nil
}

package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/moncash/moncash-backend/internal/domain"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo     domain.UserRepository
	settingsRepo domain.SettingsRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, settingsRepo domain.SettingsRepository) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Settings  *domain.Settings
	IsNewUser bool
}

// AuthenticateUser provisions the user on first authenticated call.
// New users get default settings seeded so the first period renders with a
// balance and reference day.
func (s *AuthService) AuthenticateUser(auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	settings, err := s.settingsRepo.GetByOwner(user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			settings, err = s.settingsRepo.Upsert(domain.DefaultSettings(user.ID))
			if err != nil {
				log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to seed default settings")
				return nil, err
			}
			log.Info().Str("user_id", user.ID.String()).Msg("Created new user with default settings")
			return &AuthResult{
				User:      user,
				Settings:  settings,
				IsNewUser: true,
			}, nil
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get settings")
		return nil, err
	}

	return &AuthResult{
		User:      user,
		Settings:  settings,
		IsNewUser: false,
	}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(auth0ID)
}

// GetOwnerByAuth0ID resolves the owner ID behind an Auth0 subject. Used by
// the WebSocket handshake.
func (s *AuthService) GetOwnerByAuth0ID(auth0ID string) (uuid.UUID, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

package service

import (
	"errors"
	"fmt"

	"lyricclash/internal/models"
	"lyricclash/internal/repository"
	"lyricclash/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or access code")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthService exchanges access codes for bearer tokens
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Login verifies an access code and issues a bearer token
func (s *AuthService) Login(email, accessCode string) (string, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !security.CheckAccessCode(accessCode, user.AccessCodeHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// VerifyToken validates a bearer token and returns its claims
func (s *AuthService) VerifyToken(token string) (*security.Claims, error) {
	return s.tokens.Verify(token)
}

// CreateUser registers a new account with a hashed access code
func (s *AuthService) CreateUser(name, email, role, accessCode string) (*models.User, error) {
	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashAccessCode(accessCode)
	if err != nil {
		return nil, fmt.Errorf("failed to hash access code: %w", err)
	}
	return s.userRepo.CreateUser(name, email, role, hash)
}

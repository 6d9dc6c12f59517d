package service

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/velstore/velstore-api/internal/models"
	"github.com/velstore/velstore-api/internal/repository"
	"github.com/velstore/velstore-api/internal/utils"
)

// AuthService authenticates dashboard users and issues tokens.
type AuthService struct {
	adminRepo *repository.AdminUserRepository
	jwtSecret string
}

// NewAuthService constructs an AuthService.
func NewAuthService(adminRepo *repository.AdminUserRepository, jwtSecret string) *AuthService {
	return &AuthService{adminRepo: adminRepo, jwtSecret: jwtSecret}
}

// Login verifies credentials and returns a signed token carrying the user's role.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		log.Warn().Str("email", email).Msg("login failed: unknown user")
		return "", utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("login failed: account inactive")
		return "", utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("login failed: bad password")
		return "", utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(s.jwtSecret, user.ID, user.Email, user.Role)
	if err != nil {
		return "", err
	}

	log.Info().Str("email", email).Str("role", user.Role).Msg("login successful")
	return token, nil
}

// CreateAdmin registers a dashboard user with a bcrypt-hashed password.
func (s *AuthService) CreateAdmin(email, password, name, role string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         role,
		IsActive:     true,
	}
	return s.adminRepo.Create(user)
}

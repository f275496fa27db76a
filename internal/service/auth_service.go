package service

import (
	"context"
	"strings"

	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/internal/repository"
	"github.com/pitstop/garage-bookings/pkg/auth"
	"github.com/pitstop/garage-bookings/pkg/config"
)

type AuthService interface {
	// AuthenticateAdmin verifies credentials and the admin role, then
	// mints an access token for the admin API.
	AuthenticateAdmin(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

func (s *authService) AuthenticateAdmin(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, "", domain.ErrUnauthorized
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) || user.UserType != domain.RoleAdmin {
		return nil, "", domain.ErrUnauthorized
	}

	token, err := auth.NewAccessToken(user.ID, user.Email, user.UserType,
		s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

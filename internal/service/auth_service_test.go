package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/internal/service"
	"github.com/pitstop/garage-bookings/pkg/auth"
	"github.com/pitstop/garage-bookings/pkg/config"
)

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTL = time.Hour
	return cfg
}

func seededStore() *memStore {
	store := newMemStore()
	store.addUser("admin@garage.com", "0811234567", "Garage Admin", "0811234567", "admin@garage.com", domain.RoleAdmin)
	store.addUser("somsak_test", "1234", "Somsak Test", "0816507142", "somsak@example.com", domain.RoleCustomer)
	return store
}

func TestAuthenticateAdmin(t *testing.T) {
	cfg := testConfig()
	svc := service.NewAuthService(seededStore(), cfg)

	user, token, err := svc.AuthenticateAdmin(context.Background(), &domain.LoginRequest{
		Username: "admin@garage.com",
		Password: "0811234567",
	})
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if user.UserType != domain.RoleAdmin {
		t.Errorf("user_type = %q", user.UserType)
	}

	claims, err := auth.Parse(token, cfg.Auth.JWTSecret)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Role != domain.RoleAdmin || claims.Sub != user.ID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAuthenticateAdminRejections(t *testing.T) {
	svc := service.NewAuthService(seededStore(), testConfig())

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin@garage.com", "nope"},
		{"unknown user", "ghost@garage.com", "0811234567"},
		// Correct credentials, but customer role.
		{"customer role", "somsak_test", "1234"},
		{"empty credentials", "", ""},
	}
	for _, tc := range cases {
		_, _, err := svc.AuthenticateAdmin(context.Background(), &domain.LoginRequest{
			Username: tc.username,
			Password: tc.password,
		})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", tc.name, err)
		}
	}
}

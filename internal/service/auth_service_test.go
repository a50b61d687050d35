package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitvision/internal/auth"
	"github.com/mmynk/splitvision/internal/middleware"
	"github.com/mmynk/splitvision/internal/storage/sqlite"
	"github.com/mmynk/splitvision/pkg/api"
)

func setupAuthServer(t *testing.T) *api.AuthServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	path, handler := api.NewAuthServiceHandler(
		NewAuthService(authenticator, store, jwtManager, discardLogger()),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return api.NewAuthServiceClient(http.DefaultClient, server.URL)
}

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	client := setupAuthServer(t)
	ctx := context.Background()

	reg, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Ann@Example.com",
		DisplayName: "Ann",
		Password:    "correct horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" {
		t.Error("expected a token")
	}
	if reg.Msg.User.Email != "ann@example.com" {
		t.Errorf("email = %q, want normalized", reg.Msg.User.Email)
	}

	login, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "ann@example.com",
		Password: "correct horse",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("login user = %q, want %q", login.Msg.User.ID, reg.Msg.User.ID)
	}

	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer "+login.Msg.Token)
	me, err := client.GetCurrentUser(ctx, req)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.DisplayName != "Ann" {
		t.Errorf("display name = %q", me.Msg.User.DisplayName)
	}
}

func TestAuthErrors(t *testing.T) {
	client := setupAuthServer(t)
	ctx := context.Background()

	_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "ben@example.com", DisplayName: "Ben", Password: "long enough",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{"duplicate email", func() error {
			_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
				Email: "BEN@example.com", DisplayName: "Ben", Password: "long enough",
			}))
			return err
		}, connect.CodeAlreadyExists},
		{"weak password", func() error {
			_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
				Email: "cat@example.com", DisplayName: "Cat", Password: "short",
			}))
			return err
		}, connect.CodeInvalidArgument},
		{"missing display name", func() error {
			_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
				Email: "dan@example.com", Password: "long enough",
			}))
			return err
		}, connect.CodeInvalidArgument},
		{"wrong password", func() error {
			_, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{
				Email: "ben@example.com", Password: "not the one",
			}))
			return err
		}, connect.CodeUnauthenticated},
		{"unknown email", func() error {
			_, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{
				Email: "nobody@example.com", Password: "long enough",
			}))
			return err
		}, connect.CodeUnauthenticated},
		{"no token", func() error {
			_, err := client.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
			return err
		}, connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := connect.CodeOf(tt.call()); code != tt.want {
				t.Errorf("code = %v, want %v", code, tt.want)
			}
		})
	}
}

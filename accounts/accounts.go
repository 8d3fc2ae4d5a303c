// Package accounts is the typed consumer of the backend's account endpoints.
// Payload shapes follow the backend contract; nothing here is synthesized
// client-side.
package accounts

import (
	"context"

	"github.com/agrilink/agrilink-go/transport"
	"github.com/agrilink/agrilink-go/users"
	"github.com/pkg/errors"
)

// Backend account endpoints, relative to the configured base URL.
const (
	ProfilePath  = "accounts/profile/"
	LoginPath    = "accounts/login/"
	RegisterPath = "accounts/register/"
	LogoutPath   = "accounts/logout/"
)

// Credentials is the login payload. Role is an optional hint for backends
// that scope usernames per role.
type Credentials struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Role     users.RoleType `json:"role,omitempty"`
}

// Registration is the full profile payload for account creation.
type Registration struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone,omitempty"`
	Password string         `json:"password"`
	Role     users.RoleType `json:"role"`
	Address  string         `json:"address,omitempty"`
}

// AuthResponse is what login and registration return: a credential pair plus
// the account profile.
type AuthResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    users.User `json:"user"`
}

// Service wraps the account endpoints.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// Profile fetches the current account. A 401 runs through the transport's
// refresh protocol before this returns.
func (s *Service) Profile(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := s.client.Get(ctx, ProfilePath, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token pair and profile. Failures are
// returned untouched; presentation belongs to the caller.
func (s *Service) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("[Login] username and password are required")
	}

	var res AuthResponse
	if err := s.client.Post(ctx, LoginPath, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account server-side; same success contract as Login.
func (s *Service) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var res AuthResponse
	if err := s.client.Post(ctx, RegisterPath, reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout tells the backend to revoke the refresh token. The response body is
// ignored; callers treat failures as non-fatal.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.client.Post(ctx, LogoutPath, map[string]string{"refresh": refreshToken}, nil)
}

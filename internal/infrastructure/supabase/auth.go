package supabase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Auth implements auth.Provider on the project's GoTrue endpoints.
type Auth struct {
	c   *Client
	now func() time.Time
}

func NewAuth(c *Client) *Auth { return &Auth{c: c, now: time.Now} }

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenDTO struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"`
	ExpiresAt   int64   `json:"expires_at"`
	User        userDTO `json:"user"`
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (auth.Credentials, domain.Identity, error) {
	var out tokenDTO
	err := a.c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token?grant_type=password",
		token:  a.c.anonKey,
	}, map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			if apiErr.Code == "invalid_grant" || apiErr.Code == "invalid_credentials" {
				return auth.Credentials{}, domain.Identity{}, domain.ErrInvalidCredentials()
			}
			return auth.Credentials{}, domain.Identity{}, domain.ErrSignInFailed(apiErr.Message, err)
		}
		return auth.Credentials{}, domain.Identity{}, err
	}
	if out.AccessToken == "" || out.User.ID == "" {
		return auth.Credentials{}, domain.Identity{}, domain.ErrSignInFailed("incomplete sign-in response", nil)
	}

	exp := a.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	if out.ExpiresAt > 0 {
		exp = time.Unix(out.ExpiresAt, 0)
	}
	return auth.Credentials{AccessToken: out.AccessToken, ExpiresAt: exp},
		domain.Identity{ID: out.User.ID, Email: out.User.Email}, nil
}

func (a *Auth) GetUser(ctx context.Context, accessToken string) (domain.Identity, error) {
	var out userDTO
	err := a.c.doJSON(ctx, request{method: http.MethodGet, path: "/auth/v1/user", token: accessToken}, nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return domain.Identity{}, domain.ErrTokenInvalid()
		}
		return domain.Identity{}, err
	}
	if out.ID == "" {
		return domain.Identity{}, domain.ErrTokenInvalid()
	}
	return domain.Identity{ID: out.ID, Email: out.Email}, nil
}

// SignOut revokes the session server-side. An already invalid token is not an error.
func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	err := a.c.doJSON(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", token: accessToken}, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusNotFound) {
		return nil
	}
	return err
}

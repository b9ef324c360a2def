package auth

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Credentials is what a successful sign-in yields.
type Credentials struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Provider is the collaborator's stateless auth API.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Credentials, domain.Identity, error)
	GetUser(ctx context.Context, accessToken string) (domain.Identity, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ---- local provider ports ----

type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

type PasswordHasher interface {
	Compare(hash string, password string) error
}

type TokenClaims struct {
	UserID string
	Email  string
	Ver    int64
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID, email string, ver int64, ttl time.Duration) (string, time.Time, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

// SessionVersions is a per-user counter; bumping it revokes every token issued before.
type SessionVersions interface {
	Current(ctx context.Context, userID string) (int64, error)
	Bump(ctx context.Context, userID string) error
}

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Service is the self-hosted auth provider: bcrypt passwords, JWT access tokens
// and Redis-backed session versions for revocation.
type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	signer   TokenSigner
	versions SessionVersions
	ttl      time.Duration
}

func NewService(users UserRepo, hasher PasswordHasher, signer TokenSigner, versions SessionVersions, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{users: users, hasher: hasher, signer: signer, versions: versions, ttl: ttl}
}

// SignIn must not leak whether the email exists.
func (s *Service) SignIn(ctx context.Context, email, password string) (Credentials, domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Credentials{}, domain.Identity{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Credentials{}, domain.Identity{}, domain.ErrInvalidCredentials()
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return Credentials{}, domain.Identity{}, domain.ErrInvalidCredentials()
	}

	ver, err := s.versions.Current(ctx, u.ID)
	if err != nil {
		return Credentials{}, domain.Identity{}, domain.ErrUpstream("session_store_unavailable", "session store unavailable", err)
	}

	tok, exp, err := s.signer.SignAccessToken(u.ID, u.Email, ver, s.ttl)
	if err != nil {
		return Credentials{}, domain.Identity{}, err
	}

	return Credentials{AccessToken: tok, ExpiresAt: exp}, domain.Identity{ID: u.ID, Email: u.Email}, nil
}

func (s *Service) GetUser(ctx context.Context, accessToken string) (domain.Identity, error) {
	claims, err := s.signer.VerifyAccessToken(accessToken)
	if err != nil {
		return domain.Identity{}, err
	}

	cur, err := s.versions.Current(ctx, claims.UserID)
	if err != nil {
		return domain.Identity{}, domain.ErrUpstream("session_store_unavailable", "session store unavailable", err)
	}
	if claims.Ver != cur {
		return domain.Identity{}, domain.ErrTokenInvalid()
	}

	return domain.Identity{ID: claims.UserID, Email: claims.Email}, nil
}

// SignOut revokes every token of the user. An unreadable token is a no-op.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	claims, err := s.signer.VerifyAccessToken(accessToken)
	if err != nil {
		return nil
	}
	return s.versions.Bump(ctx, claims.UserID)
}

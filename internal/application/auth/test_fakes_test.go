package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	err     error
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.User{}, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound("user")
	}
	return u, nil
}

// fakeHasher treats "hash:<pw>" as the hash of pw.
type fakeHasher struct{}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeSigner encodes claims as "tok|uid|email|ver".
type fakeSigner struct{}

func (fakeSigner) SignAccessToken(userID, email string, ver int64, ttl time.Duration) (string, time.Time, error) {
	return fmt.Sprintf("tok|%s|%s|%d", userID, email, ver), time.Unix(0, 0).Add(ttl), nil
}

func (fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	var ver int64
	if _, err := fmt.Sscanf(parts[3], "%d", &ver); err != nil {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	return TokenClaims{UserID: parts[1], Email: parts[2], Ver: ver}, nil
}

type fakeVersions struct {
	mu  sync.Mutex
	ver map[string]int64
	err error
}

func (f *fakeVersions) Current(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.ver[userID], nil
}

func (f *fakeVersions) Bump(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ver[userID]++
	return nil
}

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeVersions) {
	t.Helper()
	users := &fakeUserRepo{byEmail: map[string]domain.User{
		"ana@example.com": {ID: "u1", Email: "ana@example.com", PasswordHash: "hash:secret"},
	}}
	versions := &fakeVersions{ver: map[string]int64{}}
	return NewService(users, fakeHasher{}, fakeSigner{}, versions, time.Hour), users, versions
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code %q, got %v", code, err)
	}
}

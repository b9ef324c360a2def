package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

func newClientForTest(t *testing.T) (*Client, *fakeVersions) {
	t.Helper()
	svc, _, versions := newSvcForTest(t)
	return NewClient(svc, zerolog.Nop()), versions
}

func TestClient_AnonymousGetUser(t *testing.T) {
	t.Parallel()
	c, _ := newClientForTest(t)

	id, err := c.GetUser(context.Background())
	if err != nil || id != nil {
		t.Fatalf("expected anonymous, got %+v %v", id, err)
	}
}

func TestClient_SignInEmitsSignedIn(t *testing.T) {
	t.Parallel()
	c, _ := newClientForTest(t)

	var got []domain.AuthEvent
	unsub := c.OnAuthStateChange(func(ev domain.AuthEvent) { got = append(got, ev) })
	defer unsub()

	if err := c.SignInWithPassword(context.Background(), "ana@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if len(got) != 1 || got[0].Kind != domain.SignedIn || got[0].Identity.ID != "u1" {
		t.Fatalf("unexpected events %+v", got)
	}
	if a := c.Actor(); a.UserID != "u1" || a.AccessToken == "" {
		t.Fatalf("unexpected actor %+v", a)
	}
}

func TestClient_FailedSignInEmitsNothing(t *testing.T) {
	t.Parallel()
	c, _ := newClientForTest(t)

	calls := 0
	c.OnAuthStateChange(func(domain.AuthEvent) { calls++ })

	err := c.SignInWithPassword(context.Background(), "ana@example.com", "wrong")
	requireDomainCode(t, err, "invalid_credentials")
	if calls != 0 {
		t.Fatalf("expected no events, got %d", calls)
	}
	if c.AccessToken() != "" {
		t.Fatalf("expected no token")
	}
}

func TestClient_SignOutEmitsAndForgets(t *testing.T) {
	t.Parallel()
	c, _ := newClientForTest(t)
	ctx := context.Background()

	if err := c.SignInWithPassword(ctx, "ana@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var kinds []domain.AuthEventKind
	c.OnAuthStateChange(func(ev domain.AuthEvent) { kinds = append(kinds, ev.Kind) })

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if len(kinds) != 1 || kinds[0] != domain.SignedOut {
		t.Fatalf("unexpected events %v", kinds)
	}
	if c.AccessToken() != "" {
		t.Fatalf("expected token cleared")
	}
}

func TestClient_RestoredRevokedTokenIsDropped(t *testing.T) {
	t.Parallel()
	c, versions := newClientForTest(t)

	c.Restore("tok|u1|ana@example.com|0")
	id, err := c.GetUser(context.Background())
	if err != nil || id == nil || id.ID != "u1" {
		t.Fatalf("expected u1, got %+v %v", id, err)
	}

	_ = versions.Bump(context.Background(), "u1")

	id, err = c.GetUser(context.Background())
	if err != nil || id != nil {
		t.Fatalf("expected anonymous after revocation, got %+v %v", id, err)
	}
	if c.AccessToken() != "" {
		t.Fatalf("expected token dropped")
	}
}

func TestClient_ProviderOutageIsReturned(t *testing.T) {
	t.Parallel()
	c, versions := newClientForTest(t)
	c.Restore("tok|u1|ana@example.com|0")
	versions.err = errors.New("redis down")

	_, err := c.GetUser(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if c.AccessToken() == "" {
		t.Fatalf("token must survive an outage")
	}
}

func TestClient_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()
	c, _ := newClientForTest(t)

	calls := 0
	unsub := c.OnAuthStateChange(func(domain.AuthEvent) { calls++ })
	unsub()
	unsub()

	_ = c.SignOut(context.Background())
	if calls != 0 {
		t.Fatalf("expected no delivery after unsubscribe")
	}
}

package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
)

// refreshTimeout bounds the re-check triggered by a SIGNED_IN notification,
// which has no request context of its own.
const refreshTimeout = 10 * time.Second

// Gate keeps the Store in line with the auth collaborator.
//
// Each refresh takes a generation number; a result is applied only if no newer
// refresh or sign-out started in the meantime and the gate is still mounted.
type Gate struct {
	auth  AuthClient
	roles RoleLookup
	store *Store
	log   zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	mounted bool
	unsub   func()
}

func NewGate(auth AuthClient, roles RoleLookup, store *Store, log zerolog.Logger) *Gate {
	return &Gate{auth: auth, roles: roles, store: store, log: log}
}

// Mount subscribes to auth changes and performs the initial check.
func (g *Gate) Mount(ctx context.Context) {
	g.mu.Lock()
	if g.mounted {
		g.mu.Unlock()
		return
	}
	g.mounted = true
	g.unsub = g.auth.OnAuthStateChange(g.handle)
	g.mu.Unlock()

	g.Refresh(ctx)
}

// Unmount stops listening. In-flight refreshes are discarded.
func (g *Gate) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		return
	}
	g.mounted = false
	g.gen++
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
}

func (g *Gate) Session() domain.Session { return g.store.Current() }

// Refresh re-reads identity and role and publishes the result.
// Failures never surface: an unreadable identity is anonymous, an unreadable role is not admin.
func (g *Gate) Refresh(ctx context.Context) domain.Session {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	next := g.resolve(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen || !g.mounted {
		g.log.Debug().Msg("session refresh superseded")
		return g.store.Current()
	}
	g.store.set(next)
	return next
}

func (g *Gate) resolve(ctx context.Context) domain.Session {
	id, err := g.auth.GetUser(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("identity lookup failed")
		return domain.Anonymous()
	}
	if id == nil {
		return domain.Anonymous()
	}

	// the role row is only visible to its owner, so look it up as the visitor
	actor := g.auth.Actor()
	actor.UserID = id.ID
	role, err := g.roles.RoleOf(appCtx.WithActor(ctx, actor), id.ID)
	if err != nil {
		g.log.Warn().Err(domain.ErrRoleLookup(err)).Str("user_id", id.ID).Msg("role lookup failed")
		return domain.Session{User: id}
	}
	return domain.Session{User: id, IsAdmin: domain.IsAdminRole(role)}
}

func (g *Gate) handle(ev domain.AuthEvent) {
	switch ev.Kind {
	case domain.SignedIn:
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		g.Refresh(ctx)
	case domain.SignedOut:
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.mounted {
			return
		}
		g.gen++
		g.store.set(domain.Anonymous())
	}
}

// Login signs in with email and password. The session updates through the SIGNED_IN notification.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if password == "" {
		return domain.ErrMissingField("password")
	}
	if err := g.auth.SignInWithPassword(ctx, email, password); err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			return domain.ErrSignInFailed("", err)
		}
		return err
	}
	return nil
}

// Logout only asks the collaborator; the SIGNED_OUT notification clears the session.
func (g *Gate) Logout(ctx context.Context) error {
	return g.auth.SignOut(ctx)
}

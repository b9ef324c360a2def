package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
)

// Client is one visitor's handle on the auth provider. It remembers the visitor's
// credentials and notifies subscribers on sign-in and sign-out.
type Client struct {
	provider Provider
	log      zerolog.Logger

	mu        sync.Mutex
	creds     *Credentials
	ident     *domain.Identity
	listeners map[int]func(domain.AuthEvent)
	nextID    int
}

func NewClient(p Provider, log zerolog.Logger) *Client {
	return &Client{
		provider:  p,
		log:       log,
		listeners: make(map[int]func(domain.AuthEvent)),
	}
}

// Restore re-attaches a token carried by the visitor's cookie. No event is emitted.
func (c *Client) Restore(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if accessToken == "" {
		return
	}
	if c.creds != nil && c.creds.AccessToken == accessToken {
		return
	}
	c.creds = &Credentials{AccessToken: accessToken}
	c.ident = nil
}

func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.creds == nil {
		return ""
	}
	return c.creds.AccessToken
}

func (c *Client) Credentials() (Credentials, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.creds == nil {
		return Credentials{}, false
	}
	return *c.creds, true
}

// Actor identifies the visitor to record and blob adapters.
func (c *Client) Actor() appCtx.Actor {
	c.mu.Lock()
	defer c.mu.Unlock()
	var a appCtx.Actor
	if c.creds != nil {
		a.AccessToken = c.creds.AccessToken
	}
	if c.ident != nil {
		a.UserID = c.ident.ID
	}
	return a
}

// GetUser returns nil for an anonymous visitor. A token the provider rejects is dropped.
func (c *Client) GetUser(ctx context.Context) (*domain.Identity, error) {
	tok := c.AccessToken()
	if tok == "" {
		return nil, nil
	}

	id, err := c.provider.GetUser(ctx, tok)
	if err != nil {
		if domain.KindOf(err) == domain.KindAuth {
			c.mu.Lock()
			if c.creds != nil && c.creds.AccessToken == tok {
				c.creds = nil
				c.ident = nil
			}
			c.mu.Unlock()
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.ident = &id
	c.mu.Unlock()
	return &id, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	creds, id, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			return domain.ErrSignInFailed("", err)
		}
		return err
	}

	c.mu.Lock()
	c.creds = &creds
	c.ident = &id
	c.mu.Unlock()

	c.emit(domain.AuthEvent{Kind: domain.SignedIn, Identity: &id})
	return nil
}

// SignOut always forgets the local session, even when the provider call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	tok := ""
	if c.creds != nil {
		tok = c.creds.AccessToken
	}
	c.creds = nil
	c.ident = nil
	c.mu.Unlock()

	var err error
	if tok != "" {
		err = c.provider.SignOut(ctx, tok)
	}
	c.emit(domain.AuthEvent{Kind: domain.SignedOut})
	return err
}

// OnAuthStateChange registers fn and returns its unsubscribe func.
func (c *Client) OnAuthStateChange(fn func(domain.AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Client) emit(ev domain.AuthEvent) {
	c.mu.Lock()
	fns := make([]func(domain.AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.log.Debug().Str("kind", string(ev.Kind)).Msg("auth state change")
	for _, fn := range fns {
		fn(ev)
	}
}

package visitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/crop"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/edit"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/listing"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/session"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Deps are the collaborators shared by every visitor.
type Deps struct {
	Provider  auth.Provider
	Roles     session.RoleLookup
	Lister    listing.Lister
	Blobs     edit.BlobStore
	Records   edit.RecordStore
	Publisher edit.Publisher
	Clock     edit.Clock
	Previews  crop.PreviewStore
	Limits    crop.Limits
	Log       zerolog.Logger
}

// Visitor is the server-side half of one browser: its own auth client, session,
// list and edit modal.
type Visitor struct {
	ID    string
	Auth  *auth.Client
	Store *session.Store
	Gate  *session.Gate
	List  *listing.View
	Edit  *edit.Workflow

	mu       sync.Mutex
	lastSeen time.Time
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *Visitor) close() {
	v.Gate.Unmount()
	v.Edit.Cancel()
}

type Hub struct {
	deps    Deps
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*Visitor
}

func NewHub(d Deps, idleTTL time.Duration) *Hub {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Hub{
		deps:     d,
		idleTTL:  idleTTL,
		now:      time.Now,
		visitors: make(map[string]*Visitor),
	}
}

// Acquire returns the visitor for id, creating and mounting one when id is unknown
// or empty. accessToken comes from the visitor's cookie and is re-attached when the
// in-memory client does not already hold it.
func (h *Hub) Acquire(ctx context.Context, id, accessToken string) (*Visitor, bool) {
	now := h.now()

	h.mu.Lock()
	v, ok := h.visitors[id]
	if ok {
		h.mu.Unlock()
		v.touch(now)
		if accessToken != "" && v.Auth.AccessToken() == "" {
			v.Auth.Restore(accessToken)
			v.Gate.Refresh(ctx)
		}
		return v, false
	}

	v = h.build(uuid.NewString(), now)
	h.visitors[v.ID] = v
	h.mu.Unlock()

	if accessToken != "" {
		v.Auth.Restore(accessToken)
	}
	v.Gate.Mount(ctx)

	h.deps.Log.Debug().Str("visitor_id", v.ID).Msg("visitor created")
	return v, true
}

func (h *Hub) build(id string, now time.Time) *Visitor {
	log := h.deps.Log.With().Str("visitor_id", id).Logger()

	client := auth.NewClient(h.deps.Provider, log)
	store := session.NewStore()
	view := listing.NewView(h.deps.Lister, log)
	wf := edit.New(edit.Deps{
		Blobs:     h.deps.Blobs,
		Records:   h.deps.Records,
		Publisher: h.deps.Publisher,
		Clock:     h.deps.Clock,
		Stage:     crop.NewStage(h.deps.Previews, h.deps.Limits),
		Log:       log,
	}, func(ctx context.Context) { view.Refresh(ctx) })

	// losing admin rights, by sign-out or a token the provider stopped accepting,
	// drops any open draft and crop surface with it
	store.Subscribe(func(s domain.Session) {
		if !s.IsAdmin {
			wf.Cancel()
		}
	})

	return &Visitor{
		ID:       id,
		Auth:     client,
		Store:    store,
		Gate:     session.NewGate(client, h.deps.Roles, store, log),
		List:     view,
		Edit:     wf,
		lastSeen: now,
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.visitors)
}

// Sweep drops visitors idle for longer than the idle TTL and returns how many went.
func (h *Hub) Sweep(now time.Time) int {
	h.mu.Lock()
	var gone []*Visitor
	for id, v := range h.visitors {
		if now.Sub(v.idleSince()) > h.idleTTL {
			gone = append(gone, v)
			delete(h.visitors, id)
		}
	}
	h.mu.Unlock()

	for _, v := range gone {
		v.close()
	}
	return len(gone)
}

// Close tears every visitor down.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.visitors
	h.visitors = make(map[string]*Visitor)
	h.mu.Unlock()

	for _, v := range all {
		v.close()
	}
}

// Run sweeps on every tick until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	h.deps.Log.Info().Dur("interval", interval).Msg("visitor janitor started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.deps.Log.Info().Msg("visitor janitor stopped")
			return
		case <-ticker.C:
			if n := h.Sweep(h.now()); n > 0 {
				h.deps.Log.Info().Int("count", n).Msg("swept idle visitors")
			}
		}
	}
}

package listing

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type Lister interface {
	List(ctx context.Context) ([]domain.Event, error)
}

// Snapshot is what the page renders. Loading is true until the first fetch completes.
type Snapshot struct {
	Loading bool
	Failed  bool
	Events  []domain.Event
}

// View holds one visitor's copy of the list.
type View struct {
	src Lister
	log zerolog.Logger

	mu     sync.Mutex
	loaded bool
	failed bool
	events []domain.Event
	seq    uint64
}

func NewView(src Lister, log zerolog.Logger) *View {
	return &View{src: src, log: log}
}

// Load fetches once; later calls return the held list.
func (v *View) Load(ctx context.Context) Snapshot {
	v.mu.Lock()
	loaded := v.loaded
	v.mu.Unlock()
	if loaded {
		return v.Snapshot()
	}
	return v.Refresh(ctx)
}

// Refresh re-fetches. When two fetches overlap, the one started last wins.
func (v *View) Refresh(ctx context.Context) Snapshot {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	events, err := v.src.List(ctx)

	v.mu.Lock()
	if seq == v.seq {
		v.loaded = true
		if err != nil {
			v.log.Error().Err(err).Msg("events fetch failed")
			v.failed = true
			v.events = nil
		} else {
			v.failed = false
			v.events = events
		}
	}
	v.mu.Unlock()

	return v.Snapshot()
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return Snapshot{Loading: true}
	}
	out := make([]domain.Event, len(v.events))
	copy(out, v.events)
	return Snapshot{Failed: v.failed, Events: out}
}

// Find returns the held event with the given id.
func (v *View) Find(id string) (domain.Event, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.events {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Event{}, false
}

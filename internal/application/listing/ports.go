package listing

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// EventSource is the read side of the record store.
type EventSource interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// EventWriter is the write side of the record store.
type EventWriter interface {
	UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr bumps the integer at key, starting from zero, and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

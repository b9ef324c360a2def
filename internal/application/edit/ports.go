package edit

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// BlobStore is the collaborator's public image bucket.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(key string) string
	Remove(ctx context.Context, key string) error
}

// RecordStore writes event records. Implementations must apply the patch atomically.
type RecordStore interface {
	UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) error
}

// Publisher announces saved edits to other services.
type Publisher interface {
	PublishEventUpdated(ctx context.Context, ev domain.Event) error
}

type Clock interface {
	Now() time.Time
}

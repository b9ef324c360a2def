package edit

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type NoopPublisher struct{}

func (NoopPublisher) PublishEventUpdated(ctx context.Context, ev domain.Event) error { return nil }

package listing

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

const (
	// cacheKeyListGen counts list writes. Rows are cached under the generation they were
	// read in, so a read racing an update can never repopulate the key later reads use.
	cacheKeyListGen = "events:list:gen"
	// the v1 segment is bumped on a shape change so old JSON is never decoded
	cacheKeyListFmt = "events:list:v1:%d"
)

func cacheKeyList(gen int64) string {
	return fmt.Sprintf(cacheKeyListFmt, gen)
}

type Service struct {
	src   EventSource
	cache Cache
	ttl   time.Duration
}

// NewService builds the list reader. cache may be nil.
func NewService(src EventSource, cache Cache, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = 15 * time.Second
	}
	return &Service{src: src, cache: cache, ttl: ttl}
}

// List returns every event ordered by event date, earliest first.
func (s *Service) List(ctx context.Context) ([]domain.Event, error) {
	key, cacheable := s.listKey(ctx)
	if cacheable {
		var cached []domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			zlog.Debug().Str("key", key).Msg("cache hit")
			return cached, nil
		}
	}

	events, err := s.src.ListEvents(ctx)
	if err != nil {
		return nil, domain.ErrFetchEvents(err)
	}
	if events == nil {
		events = []domain.Event{}
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, events, s.ttl); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return events, nil
}

// listKey resolves the current generation. Without one the read bypasses the cache.
func (s *Service) listKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	var gen int64
	if _, err := s.cache.Get(ctx, cacheKeyListGen, &gen); err != nil {
		zlog.Warn().Err(err).Str("key", cacheKeyListGen).Msg("cache generation read failed")
		return "", false
	}
	return cacheKeyList(gen), true
}

// Invalidate moves readers to a fresh generation and drops the rows of the old one.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	gen, err := s.cache.Incr(ctx, cacheKeyListGen)
	if err != nil {
		zlog.Warn().Err(err).Str("key", cacheKeyListGen).Msg("cache invalidate failed")
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyList(gen-1)); err != nil {
		zlog.Debug().Err(err).Msg("stale list delete failed")
	}
}

// InvalidatingWriter drops the cached list after every successful update.
type InvalidatingWriter struct {
	next EventWriter
	svc  *Service
}

func NewInvalidatingWriter(next EventWriter, svc *Service) *InvalidatingWriter {
	return &InvalidatingWriter{next: next, svc: svc}
}

func (w *InvalidatingWriter) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) error {
	if err := w.next.UpdateEvent(ctx, id, patch); err != nil {
		return err
	}
	w.svc.Invalidate(context.WithoutCancel(ctx))
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/edit"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/listing"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/session"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/config"
	redisx "github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/db/postgres"
	rabbitpub "github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/seed"
	s3store "github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/storage/s3"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/supabase"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/listing-service/migrations"
)

// backend is the set of collaborators one BACKEND value resolves to.
type backend struct {
	provider  auth.Provider
	roles     session.RoleLookup
	lister    listing.Lister
	records   edit.RecordStore
	blobs     edit.BlobStore
	publisher edit.Publisher
	checks    map[string]handlers.Check

	closers []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// newLocalBackend: postgres records and users, redis cache and session versions,
// S3/MinIO images, optional RabbitMQ notifications.
func newLocalBackend(ctx context.Context, cfg *config.Config) (_ *backend, err error) {
	b := &backend{checks: map[string]handlers.Check{}}
	defer func() {
		if err != nil {
			b.close()
		}
	}()

	if u, perr := url.Parse(cfg.DatabaseURL); perr == nil {
		zlog.Info().
			Str("db_user", u.User.Username()).
			Str("db_host", u.Host).
			Str("db_db", u.Path).
			Msg("db config loaded")
	}

	// ---- Postgres ----
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	b.closers = append(b.closers, func() { _ = db.Close() })

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	b.closers = append(b.closers, pool.Close)

	{
		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := postgres.ApplyMigrations(mctx, pool, migrations.FS); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	repo := postgres.New(db)
	users := postgres.NewUserRepo(pool)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	if cfg.SeedFile != "" {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, fx, users, repo, hasher, logger.Logger); err != nil {
			return nil, err
		}
	}
	b.checks["postgres"] = repo.Ping

	// ---- Redis ----
	rdb, err := redisx.New(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	b.closers = append(b.closers, func() { _ = rdb.Close() })
	b.checks["redis"] = rdb.Ping
	zlog.Info().Msg("redis connected")

	// ---- Auth ----
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)
	versions := redisx.NewSessionVersions(rdb)
	b.provider = auth.NewService(users, hasher, signer, versions, cfg.AccessTokenTTL)

	// ---- Records ----
	list := listing.NewService(repo, rdb, cfg.CacheTTLList)
	b.lister = list
	b.roles = repo
	b.records = listing.NewInvalidatingWriter(repo, list)

	// ---- Blobs ----
	store, err := s3store.New(ctx, cfg, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("s3 bucket: %w", err)
	}
	b.blobs = store

	// ---- Notifications ----
	b.publisher = publisher(cfg, b)

	return b, nil
}

// newSupabaseBackend talks to the hosted project with the publishable anon key; the
// visitor's own token is forwarded on every call so the project's row-level rules apply.
func newSupabaseBackend(cfg *config.Config) (*backend, error) {
	b := &backend{checks: map[string]handlers.Check{}}

	c := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, &http.Client{Timeout: 15 * time.Second})
	records := supabase.NewRecords(c)

	b.provider = supabase.NewAuth(c)
	b.roles = records
	b.blobs = supabase.NewStorage(c, cfg.StorageBucket)

	// the cache is optional here; the hosted API is the source of truth
	var cache listing.Cache
	if cfg.RedisURL != "" {
		rdb, err := redisx.New(cfg.RedisURL)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable: event list is not cached")
		} else {
			cache = rdb
			b.closers = append(b.closers, func() { _ = rdb.Close() })
			b.checks["redis"] = rdb.Ping
		}
	}
	list := listing.NewService(records, cache, cfg.CacheTTLList)
	b.lister = list
	b.records = listing.NewInvalidatingWriter(records, list)

	b.publisher = publisher(cfg, b)

	return b, nil
}

func publisher(cfg *config.Config, b *backend) edit.Publisher {
	if cfg.RabbitURL == "" {
		zlog.Warn().Msg("RABBIT_URL empty: event.updated will not be published")
		return edit.NoopPublisher{}
	}
	p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		zlog.Warn().Err(err).Msg("rabbit publisher init failed: event.updated will not be published")
		return edit.NoopPublisher{}
	}
	b.closers = append(b.closers, func() { _ = p.Close() })
	zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	return p
}

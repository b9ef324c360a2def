package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// SessionVersions keeps sessver:<uid> -> <ver>. Access tokens carry the version
// they were issued at; bumping it revokes all of them at once.
type SessionVersions struct {
	rdb    *redis.Client
	prefix string
}

func NewSessionVersions(c *Client) *SessionVersions {
	var rdb *redis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &SessionVersions{rdb: rdb, prefix: "sessver:"}
}

func (s *SessionVersions) Current(ctx context.Context, userID string) (int64, error) {
	if s.rdb == nil {
		return 0, fmt.Errorf("redis not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrMissingField("user_id")
	}

	key := s.prefix + userID
	v, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		n, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr == nil {
			return n, nil
		}
		// unparseable value: reset so later Incr calls work
		if err := s.rdb.Set(ctx, key, "0", 0).Err(); err != nil {
			return 0, err
		}
		return 0, nil
	} else if !errors.Is(err, redis.Nil) {
		return 0, err
	}

	// default ver = 0; SETNX keeps it stable against a concurrent Bump
	if err := s.rdb.SetNX(ctx, key, "0", 0).Err(); err != nil {
		return 0, err
	}
	return 0, nil
}

func (s *SessionVersions) Bump(ctx context.Context, userID string) error {
	if s.rdb == nil {
		return fmt.Errorf("redis not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return domain.ErrMissingField("user_id")
	}
	return s.rdb.Incr(ctx, s.prefix+userID).Err()
}

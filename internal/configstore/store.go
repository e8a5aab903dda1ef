// Package configstore serves the tenant-scoped static mappings the pipeline
// depends on: participant type ids, link type ids, workflow step names. The
// entries live in Postgres and are served through a Redis read-through cache
// because the formatter resolves the same handful of keys on every job.
package configstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matter_pipeline_backend/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound reports a missing mapping. Callers that cannot proceed without
// the value treat this as a structural configuration error.
var ErrNotFound = errors.New("config entry not found")

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store resolves tenant configuration entries.
type Store struct {
	db    querier
	cache *redis.Client
	ttl   time.Duration
	log   *logger.Logger

	// group collapses concurrent cache-miss lookups for the same entry into
	// one database query.
	group singleflight.Group
}

// New creates a Store. The Redis client is optional; without it every lookup
// goes to Postgres.
func New(db querier, cache *redis.Client, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{db: db, cache: cache, ttl: ttl, log: log}
}

// Get resolves the value for a tenant key. Tags narrow the lookup: the entry
// must carry every requested tag, and among matches the least-tagged entry
// wins so a generic mapping never shadows a more specific request.
func (s *Store) Get(ctx context.Context, tenant, key string, tags ...string) (string, error) {
	cacheKey := s.cacheKey(tenant, key, tags)

	if s.cache != nil {
		if v, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			return v, nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("config cache read failed", "key", cacheKey, "error", err)
		}
	}

	if tags == nil {
		tags = []string{}
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		var value string
		err := s.db.QueryRow(ctx,
			`SELECT value FROM config_entries
			 WHERE tenant = $1 AND key = $2 AND tags @> $3
			 ORDER BY cardinality(tags)
			 LIMIT 1`,
			tenant, key, tags,
		).Scan(&value)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: tenant %q key %q tags %v", ErrNotFound, tenant, key, tags)
		}
		if err != nil {
			return "", fmt.Errorf("query config entry %q: %w", key, err)
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, cacheKey, value, s.ttl).Err(); err != nil {
				s.log.Warn("config cache write failed", "key", cacheKey, "error", err)
			}
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Upsert writes one entry, replacing any existing row with the same tenant,
// key and tag set.
func (s *Store) Upsert(ctx context.Context, tenant, key string, tags []string, value string) error {
	if tags == nil {
		tags = []string{}
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO config_entries (tenant, key, tags, value)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tenant, key, tags) DO UPDATE SET value = EXCLUDED.value`,
		tenant, key, tags, value,
	)
	if err != nil {
		return fmt.Errorf("upsert config entry %q: %w", key, err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cacheKey(tenant, key, tags)).Err(); err != nil {
			s.log.Warn("config cache invalidation failed", "key", key, "error", err)
		}
	}
	return nil
}

func (s *Store) cacheKey(tenant, key string, tags []string) string {
	if len(tags) == 0 {
		return "cfg:" + tenant + ":" + key
	}
	return "cfg:" + tenant + ":" + key + ":" + strings.Join(tags, ",")
}

package configstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"matter_pipeline_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

type fakeDB struct {
	entries map[string]string
	queries int
}

func entryKey(tenant, key string, tags []string) string {
	return tenant + "|" + key + "|" + strings.Join(tags, ",")
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	db.queries++
	k := entryKey(args[0].(string), args[1].(string), args[2].([]string))
	if v, ok := db.entries[k]; ok {
		return fakeRow{value: v}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (db *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if db.entries == nil {
		db.entries = make(map[string]string)
	}
	k := entryKey(args[0].(string), args[1].(string), args[2].([]string))
	db.entries[k] = args[3].(string)
	return pgconn.CommandTag{}, nil
}

func testStore(t *testing.T, db *fakeDB) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(db, rdb, time.Minute, logger.New("development")), mr
}

func TestGetReadsThroughCache(t *testing.T) {
	db := &fakeDB{entries: map[string]string{
		"acme|participant_type.client|buy": "101",
	}}
	store, _ := testStore(t, db)

	for i := 0; i < 3; i++ {
		v, err := store.Get(context.Background(), "acme", "participant_type.client", "buy")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if v != "101" {
			t.Fatalf("expected 101, got %q", v)
		}
	}

	if db.queries != 1 {
		t.Fatalf("expected 1 database query, got %d", db.queries)
	}
}

func TestGetExpiredCacheFallsThrough(t *testing.T) {
	db := &fakeDB{entries: map[string]string{
		"acme|step.matter_opened|": "Matter Opened",
	}}
	store, mr := testStore(t, db)

	if _, err := store.Get(context.Background(), "acme", "step.matter_opened"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(context.Background(), "acme", "step.matter_opened"); err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}

	if db.queries != 2 {
		t.Fatalf("expected cache expiry to hit the database again, got %d queries", db.queries)
	}
}

func TestGetNotFound(t *testing.T) {
	store, _ := testStore(t, &fakeDB{})

	_, err := store.Get(context.Background(), "acme", "participant_type.unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertInvalidatesCache(t *testing.T) {
	db := &fakeDB{entries: map[string]string{
		"acme|link_type.agent|buy": "201",
	}}
	store, _ := testStore(t, db)

	if _, err := store.Get(context.Background(), "acme", "link_type.agent", "buy"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := store.Upsert(context.Background(), "acme", "link_type.agent", []string{"buy"}, "299"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	v, err := store.Get(context.Background(), "acme", "link_type.agent", "buy")
	if err != nil {
		t.Fatalf("Get after upsert failed: %v", err)
	}
	if v != "299" {
		t.Fatalf("expected updated value 299, got %q", v)
	}
}

func TestSeedFromFile(t *testing.T) {
	seed := `
tenants:
  - tenant: acme
    entries:
      - key: participant_type.client
        tags: [buy]
        value: "101"
      - key: step.matter_opened
        value: "Matter Opened"
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	db := &fakeDB{}
	store, _ := testStore(t, db)

	if err := store.SeedFromFile(context.Background(), path); err != nil {
		t.Fatalf("SeedFromFile failed: %v", err)
	}

	if db.entries["acme|participant_type.client|buy"] != "101" {
		t.Fatalf("expected seeded participant type, got %v", db.entries)
	}
	if db.entries["acme|step.matter_opened|"] != "Matter Opened" {
		t.Fatalf("expected seeded step name, got %v", db.entries)
	}
}

// Package redis provides a Redis-backed CacheStore so several partsync
// agents on one network can share the fetched collections.
package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// DefaultKeyPrefix namespaces every key written by the store.
const DefaultKeyPrefix = "partsync:cache"

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// Config holds connection settings for the Redis cache.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// CacheStore keeps each collection in a hash keyed by record ID and the
// fetch cursors in one shared hash.
type CacheStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewCacheStore connects to Redis and verifies the connection.
func NewCacheStore(cfg Config) (*CacheStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewCacheStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewCacheStoreWithClient wraps an existing client.
func NewCacheStoreWithClient(client *redis.Client, keyPrefix string) *CacheStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &CacheStore{client: client, keyPrefix: keyPrefix}
}

// Close closes the underlying client.
func (s *CacheStore) Close() error {
	return s.client.Close()
}

func (s *CacheStore) recordsKey(c domain.Collection) string {
	return s.keyPrefix + ":records:" + string(c)
}

func (s *CacheStore) cursorsKey() string {
	return s.keyPrefix + ":cursors"
}

// Replace swaps the whole collection in one MULTI/EXEC.
func (s *CacheStore) Replace(ctx context.Context, c domain.Collection, records []domain.Record, cursor time.Time) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.recordsKey(c))
	if len(records) > 0 {
		pipe.HSet(ctx, s.recordsKey(c), recordValues(records)...)
	}
	pipe.HSet(ctx, s.cursorsKey(), string(c), cursor.UTC().Format(time.RFC3339Nano))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replacing %s: %w", c, err)
	}
	return nil
}

// Merge upserts records and removes deleted IDs in one MULTI/EXEC.
func (s *CacheStore) Merge(
	ctx context.Context,
	c domain.Collection,
	records []domain.Record,
	deletedIDs []string,
	cursor time.Time,
) error {
	pipe := s.client.TxPipeline()
	if len(records) > 0 {
		pipe.HSet(ctx, s.recordsKey(c), recordValues(records)...)
	}
	if len(deletedIDs) > 0 {
		pipe.HDel(ctx, s.recordsKey(c), deletedIDs...)
	}
	pipe.HSet(ctx, s.cursorsKey(), string(c), cursor.UTC().Format(time.RFC3339Nano))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("merging %s: %w", c, err)
	}
	return nil
}

// Records returns the cached records ordered by ID.
func (s *CacheStore) Records(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	values, err := s.client.HGetAll(ctx, s.recordsKey(c)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c, err)
	}

	records := make([]domain.Record, 0, len(values))
	for id, data := range values {
		records = append(records, domain.Record{ID: id, Data: []byte(data)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Cursor returns the time of the last write, or zero time.
func (s *CacheStore) Cursor(ctx context.Context, c domain.Collection) (time.Time, error) {
	value, err := s.client.HGet(ctx, s.cursorsKey(), string(c)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading %s cursor: %w", c, err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s cursor: %w", c, err)
	}
	return t, nil
}

// Collections describes every collection written at least once.
func (s *CacheStore) Collections(ctx context.Context) ([]domain.CollectionInfo, error) {
	cursors, err := s.client.HGetAll(ctx, s.cursorsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cursors: %w", err)
	}

	names := make([]string, 0, len(cursors))
	for name := range cursors {
		names = append(names, name)
	}
	sort.Strings(names)

	pipe := s.client.Pipeline()
	counts := make([]*redis.IntCmd, len(names))
	for i, name := range names {
		counts[i] = pipe.HLen(ctx, s.recordsKey(domain.Collection(name)))
	}
	if len(names) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("counting records: %w", err)
		}
	}

	infos := make([]domain.CollectionInfo, 0, len(names))
	for i, name := range names {
		cursor, _ := time.Parse(time.RFC3339Nano, cursors[name])
		infos = append(infos, domain.CollectionInfo{
			Collection: domain.Collection(name),
			Count:      int(counts[i].Val()),
			Cursor:     cursor,
		})
	}
	return infos, nil
}

// recordValues flattens records into HSET field/value pairs.
func recordValues(records []domain.Record) []interface{} {
	values := make([]interface{}, 0, len(records)*2)
	for _, r := range records {
		values = append(values, r.ID, string(r.Data))
	}
	return values
}

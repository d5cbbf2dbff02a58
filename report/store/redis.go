package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	errorskg "github.com/worklens/triage/errors"
	"github.com/worklens/triage/report"
)

// RedisStore implements report.Store using Redis
type RedisStore struct {
	client *redis.Client
	prefix string // Key prefix for namespacing
	ttl    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for keys (0 means no expiration)
}

// NewRedisStore creates a new Redis-based report store
func NewRedisStore(config *RedisConfig) *RedisStore {
	if config == nil {
		config = &RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "worklens:report:",
			TTL:    0,
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// Save upserts a record in Redis and registers it in the per-user index set.
func (s *RedisStore) Save(ctx context.Context, rec *report.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.ID == "" {
		rec.ID = report.GenerateRecordID()
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := s.key(rec.ID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report in Redis: %w", err)
	}

	if err := s.client.SAdd(ctx, s.userSetKey(rec.UserRef), key).Err(); err != nil {
		return fmt.Errorf("failed to index report key: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*report.Record, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("report %s: %w", id, errorskg.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var rec report.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rec, nil
}

// List returns records for a user, newest first.
func (s *RedisStore) List(ctx context.Context, userRef string, limit int) ([]*report.Record, error) {
	setKey := s.userSetKey(userRef)
	keys, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get report keys: %w", err)
	}
	if len(keys) == 0 {
		return []*report.Record{}, nil
	}

	records := make([]*report.Record, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				// Key expired, remove from index
				s.client.SRem(ctx, setKey, key)
				continue
			}
			return nil, fmt.Errorf("failed to get report: %w", err)
		}

		var rec report.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes a record by ID.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	key := s.key(id)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if err := s.client.SRem(ctx, s.userSetKey(rec.UserRef), key).Err(); err != nil {
		return fmt.Errorf("failed to unindex report key: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis connection is alive
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) userSetKey(userRef string) string {
	if userRef == "" {
		userRef = "_anonymous"
	}
	return fmt.Sprintf("%suser:%s", s.prefix, userRef)
}

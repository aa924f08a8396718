// Package redisstore implements storage.Store on Redis hashes.
//
// Each record lives in a hash with fields v (version), d (value) and u
// (update time, unix nanos). A lexicographic sorted set indexes keys for
// prefix listing.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	fieldVersion = "v"
	fieldData    = "d"
	fieldUpdated = "u"

	defaultNamespace = "arena"
)

// Store is a storage.Store backed by Redis
type Store struct {
	client    *redis.Client
	namespace string
}

// Connect parses a redis:// URL and verifies the server is reachable
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.WithField("addr", opt.Addr).Info("Connected to Redis")
	return client, nil
}

// New creates a store using the default key namespace
func New(client *redis.Client) *Store {
	return NewWithNamespace(client, defaultNamespace)
}

// NewWithNamespace creates a store whose Redis keys are prefixed with namespace
func NewWithNamespace(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) recordKey(key string) string {
	return s.namespace + ":rec:" + key
}

func (s *Store) indexKey() string {
	return s.namespace + ":keys"
}

func (s *Store) Get(ctx context.Context, key string) (storage.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.recordKey(key)).Result()
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return decode(key, fields)
}

func (s *Store) Put(ctx context.Context, key string, value []byte) (storage.Record, error) {
	now := time.Now().UTC()
	rk := s.recordKey(key)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, rk, fieldVersion, 1)
		p.HSet(ctx, rk, fieldData, value, fieldUpdated, now.UnixNano())
		p.ZAdd(ctx, s.indexKey(), redis.Z{Member: key})
		return nil
	})
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to put record %s: %w", key, err)
	}

	return storage.Record{Key: key, Version: incr.Val(), Value: value, UpdatedAt: now}, nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (storage.Record, error) {
	now := time.Now().UTC()
	rk := s.recordKey(key)

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, rk, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expectedVersion {
			return storage.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, rk,
				fieldVersion, expectedVersion+1,
				fieldData, value,
				fieldUpdated, now.UnixNano(),
			)
			p.ZAdd(ctx, s.indexKey(), redis.Z{Member: key})
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, rk)
	switch {
	case errors.Is(err, storage.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return storage.Record{}, storage.ErrVersionConflict
	case err != nil:
		return storage.Record{}, fmt.Errorf("failed to compare-and-swap record %s: %w", key, err)
	}

	return storage.Record{Key: key, Version: expectedVersion + 1, Value: value, UpdatedAt: now}, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.Record, error) {
	keys, err := s.client.ZRangeByLex(ctx, s.indexKey(), &redis.ZRangeBy{
		Min: "[" + prefix,
		Max: "[" + prefix + "\xff",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %s: %w", prefix, err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = p.HGetAll(ctx, s.recordKey(key))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load records with prefix %s: %w", prefix, err)
	}

	records := make([]storage.Record, 0, len(keys))
	for i, key := range keys {
		rec, err := decode(key, cmds[i].Val())
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decode(key string, fields map[string]string) (storage.Record, error) {
	if len(fields) == 0 {
		return storage.Record{}, storage.ErrNotFound
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return storage.Record{}, fmt.Errorf("corrupt version for record %s: %w", key, err)
	}

	rec := storage.Record{
		Key:     key,
		Version: version,
		Value:   []byte(fields[fieldData]),
	}
	if nanos, err := strconv.ParseInt(fields[fieldUpdated], 10, 64); err == nil {
		rec.UpdatedAt = time.Unix(0, nanos).UTC()
	}
	return rec, nil
}

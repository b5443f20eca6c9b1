package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/sgmr/pkg/lifecycle"
)

type redisStore struct {
	client *redis.Client
	prefix string
	ready  atomic.Bool
	logger *slog.Logger
}

// NewRedis creates a Redis-backed store. Create relies on SET NX so the
// server arbitrates concurrent writers.
func NewRedis(cfg *RedisConfig, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedis(client, cfg.Prefix, logger)
}

func newRedis(client *redis.Client, prefix string, logger *slog.Logger) *redisStore {
	return &redisStore{
		client: client,
		prefix: prefix,
		logger: logger.With("system", "storage", "backend", BackendRedis),
	}
}

func (s *redisStore) Start(lc *lifecycle.Coordinator) error {
	lc.AddReadiness("storage", s.ready.Load)

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), 5*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx).Err(); err != nil {
			s.logger.Error("redis ping failed", "error", err)
			return
		}
		s.ready.Store(true)
		s.logger.Info("redis storage ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.ready.Store(false)
		if err := s.client.Close(); err != nil {
			s.logger.Error("redis close failed", "error", err)
		}
	})

	return nil
}

func (s *redisStore) Create(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.prefix+key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *redisStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

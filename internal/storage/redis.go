package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"yt-summarizer/internal/model"
	"yt-summarizer/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisStorage 将会话以 JSON 保存在 Redis 中，键带 TTL，过期由 Redis 负责
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStorage(redisURL, prefix string, ttl time.Duration) (*RedisStorage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStorageWithClient(redis.NewClient(opts), prefix, ttl), nil
}

func NewRedisStorageWithClient(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) key(id string) string {
	return r.prefix + id
}

func (r *RedisStorage) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageInit, err)
	}
	logger.Infof("Redis session storage connected: %s", r.rdb.Options().Addr)
	return nil
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}

func (r *RedisStorage) save(ctx context.Context, session *model.Session, mustExist bool) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	args := redis.SetArgs{TTL: r.ttl}
	if mustExist {
		args.Mode = "XX"
	} else {
		args.Mode = "NX"
	}

	err = r.rdb.SetArgs(ctx, r.key(session.ID), data, args).Err()
	if errors.Is(err, redis.Nil) {
		if mustExist {
			return ErrSessionNotFound
		}
		return ErrSessionExists
	}
	return err
}

func (r *RedisStorage) CreateSession(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidData
	}
	return r.save(ctx, session, false)
}

func (r *RedisStorage) UpdateSession(ctx context.Context, session *model.Session) error {
	if session == nil {
		return ErrInvalidData
	}
	return r.save(ctx, session, true)
}

func (r *RedisStorage) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := r.rdb.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return &session, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, sessionID string) error {
	n, err := r.rdb.Del(ctx, r.key(sessionID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *RedisStorage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	var sessions []*model.Session
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var session model.Session
		if err := json.Unmarshal(data, &session); err != nil {
			logger.Warnf("Skipping corrupt session %s: %v", iter.Val(), err)
			continue
		}
		sessions = append(sessions, &session)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteExpired 兜底清理：TTL 配置变短后，旧键仍可能存活
func (r *RedisStorage) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	sessions, err := r.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, s := range sessions {
		if !s.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := r.DeleteSession(ctx, s.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

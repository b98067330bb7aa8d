package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timeTracker/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotAcquired = errors.New("блокировка занята")

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis - блокировка между несколькими экземплярами сервиса через SET NX PX
type Redis struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	waitLimit time.Duration
}

type RedisOptions struct {
	TTL       time.Duration
	WaitLimit time.Duration
	Prefix    string
}

func NewRedis(client redis.UniversalClient, opts RedisOptions) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.WaitLimit <= 0 {
		opts.WaitLimit = 5 * time.Second
	}
	if opts.Prefix == "" {
		opts.Prefix = "timetracker:lock:"
	}
	return &Redis{
		client:    client,
		prefix:    opts.Prefix,
		ttl:       opts.TTL,
		waitLimit: opts.WaitLimit,
	}
}

func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("подключение к redis: %w", err)
	}
	logger.Info("Lock: Подключение к Redis", zap.String("addr", addr))
	return client, nil
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := r.prefix + key
	token := uuid.NewString()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = r.waitLimit

	acquire := func() error {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("SETNX %s: %w", redisKey, err))
		}
		if !ok {
			return ErrNotAcquired
		}
		return nil
	}

	if err := backoff.Retry(acquire, backoff.WithContext(policy, ctx)); err != nil {
		logger.Warn("Lock: Не удалось захватить блокировку", zap.String("key", redisKey), zap.Error(err))
		return nil, err
	}

	return func() {
		// отпускаем даже если контекст запроса уже отменён
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil {
			logger.Warn("Lock: Не удалось освободить блокировку", zap.String("key", redisKey), zap.Error(err))
		}
	}, nil
}

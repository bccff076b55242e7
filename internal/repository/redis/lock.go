package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// CycleLock serializes work across processes sharing one redis.
type CycleLock struct {
	rdb    *goredis.Client
	locker *redislock.Client
	key    string
	ttl    time.Duration
	log    *zap.Logger
}

func NewCycleLock(cfg Config) *CycleLock {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newCycleLock(rdb, cfg)
}

func newCycleLock(rdb *goredis.Client, cfg Config) *CycleLock {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &CycleLock{
		rdb:    rdb,
		locker: redislock.New(rdb),
		key:    cfg.Key,
		ttl:    cfg.TTL,
		log:    zap.L().With(zap.String("component", "redis.lock"), zap.String("key", cfg.Key)),
	}
}

func (l *CycleLock) WithLogger(lg *zap.Logger) *CycleLock {
	if lg == nil {
		return l
	}
	cp := *l
	cp.log = lg.With(zap.String("component", "redis.lock"), zap.String("key", l.key))
	return &cp
}

// Acquire tries to take the lock once. ok is false when another holder has it.
func (l *CycleLock) Acquire(ctx context.Context) (release func(), ok bool, err error) {
	lock, err := l.locker.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtain lock %q: %w", l.key, err)
	}
	release = func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn("release lock", zap.Error(err))
		}
	}
	return release, true, nil
}

func (l *CycleLock) Ping(ctx context.Context) error { return l.rdb.Ping(ctx).Err() }

func (l *CycleLock) Close() error { return l.rdb.Close() }

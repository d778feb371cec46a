package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOpts configures the watermark store. Cursor reads and writes are tiny
// string keys; beyond the dial timeout the client defaults are fine.
type RedisOpts struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewRedisClient connects and verifies the cursor store is reachable. A sync
// run without watermarks would silently re-backfill every tenant, so an
// unreachable Redis fails the startup instead.
func NewRedisClient(opts RedisOpts) (*redis.Client, error) {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

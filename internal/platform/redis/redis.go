// Package redis owns the connection to the store backing chats, users, link
// tokens and unsigned transaction records.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options carries the connection parameters from the service configuration.
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client wraps the go-redis client so repositories depend on this package
// rather than on the driver directly.
type Client struct {
	*redis.Client
}

// Open connects to the store and pings it; the service cannot run without
// its store, so callers treat a failed ping at boot as fatal.
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("redis host not configured")
	}
	c := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis at %s:%d: %w", opts.Host, opts.Port, err)
	}
	return &Client{Client: c}, nil
}

package redisx

import (
	"context"

	"social-service/configs"

	"github.com/redis/go-redis/v9"
)

type Client struct{ R *redis.Client }

// New returns nil when no address is configured.
func New(cfg configs.RedisConfig) *Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &Client{R: rdb}
}

func (c *Client) Ping(ctx context.Context) error { return c.R.Ping(ctx).Err() }

func (c *Client) Close() error { return c.R.Close() }

package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/prebloom/pkg/config"
)

const dialCheckTimeout = 5 * time.Second

// Client holds the optional listing-cache connection
// ⭐ SSOT: Redis 연결은 여기서만 관리
// A disabled client turns every cache call into a no-op.
type Client struct {
	rdb  *redis.Client
	addr string
}

// New connects when REDIS_ENABLED is set and returns a disabled client otherwise.
// An unreachable server is an error; callers decide whether to fall back to Disabled.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return Disabled(), nil
	}

	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)
	c := &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
		addr: addr,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialCheckTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Disabled returns a client that never touches Redis
func Disabled() *Client {
	return &Client{}
}

// Ping checks the connection (nil for a disabled client)
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s unreachable: %w", c.addr, err)
	}
	return nil
}

// Addr is host:port, empty when disabled
func (c *Client) Addr() string {
	return c.addr
}

func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Redis returns the underlying client; nil when disabled
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client wraps the Redis connection used for the credential cache and the
// notification dedup guard.
type Client struct {
	rdb          *redis.Client
	usersHashKey string
}

func New(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		rdb:          rdb,
		usersHashKey: "users:auth",
	}, nil
}

// Redis exposes the underlying connection for components that build their
// own key scheme on it.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// GetUserIDByAuth looks up a user id by email and password hash in the
// credential cache.
func (c *Client) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	cacheKey := authCacheKey(email, passwordHash)

	userIDStr, err := c.rdb.HGet(ctx, c.usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

// SetUserAuth stores a verified credential pair so subsequent requests skip
// the database lookup.
func (c *Client) SetUserAuth(ctx context.Context, email, passwordHash string, userID int64) error {
	cacheKey := authCacheKey(email, passwordHash)
	return c.rdb.HSet(ctx, c.usersHashKey, cacheKey, strconv.FormatInt(userID, 10)).Err()
}

func authCacheKey(email, passwordHash string) string {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	return base64.StdEncoding.EncodeToString([]byte(authString))
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

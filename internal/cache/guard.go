package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotificationGuard suppresses duplicate host notifications for the same
// booking within a time window, using SETNX so that concurrent consumers
// agree on a single winner.
type NotificationGuard struct {
	rdb    *redis.Client
	window time.Duration
}

func NewNotificationGuard(rdb *redis.Client, window time.Duration) *NotificationGuard {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &NotificationGuard{rdb: rdb, window: window}
}

// FirstNotification reports whether this is the first notification attempt
// for (hostID, bookingID) within the window. Errors are returned so the
// caller can decide to notify anyway rather than drop silently.
func (g *NotificationGuard) FirstNotification(ctx context.Context, hostID, bookingID int64) (bool, error) {
	key := fmt.Sprintf("notify:host:%d:booking:%d", hostID, bookingID)
	ok, err := g.rdb.SetNX(ctx, key, "1", g.window).Result()
	if err != nil {
		return false, fmt.Errorf("notification guard: %w", err)
	}
	return ok, nil
}

package consumers

import (
	"context"
	"log/slog"
	"time"

	"supperclub/cmd/consumers/jobs"
	"supperclub/internal/cache"
	"supperclub/internal/config"
	"supperclub/internal/database"
	"supperclub/internal/external"
	"supperclub/internal/messaging"
	"supperclub/internal/models"
	"supperclub/internal/repository"
)

// ConsumerService is the worker process executing the fire-and-forget side
// effects published by the API, plus the background job that expires
// bookings whose payment never arrived.
type ConsumerService struct {
	db            *database.DB
	nats          *messaging.NATSClient
	redis         *cache.Client
	handlers      *Handlers
	expirationJob *jobs.BookingExpirationJob
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	// Without Redis the dedup guard degrades to always-notify, which the
	// handler tolerates.
	redisClient, err := cache.New(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, host notifications are not deduplicated", "error", err)
		redisClient = nil
	}

	passClient := external.NewPassClient(cfg.Passes)
	notifyClient := external.NewNotifyClient(cfg.Notify)

	var guard NotificationGate
	if redisClient != nil {
		guard = cache.NewNotificationGuard(redisClient.Redis(), 5*time.Minute)
	} else {
		guard = alwaysFirst{}
	}

	handlers := NewHandlers(passClient, notifyClient, guard)

	repos := repository.NewRepositories(db)
	expirationJob := jobs.NewBookingExpirationJob(repos, natsClient)

	return &ConsumerService{
		db:            db,
		nats:          natsClient,
		redis:         redisClient,
		handlers:      handlers,
		expirationJob: expirationJob,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	_, err := cs.nats.SubscribeQueue(models.EventReservationCreated, "consumers", cs.handlers.HandleReservationCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventSlotCancelled, "consumers", cs.handlers.HandleSlotCancelled)
	if err != nil {
		return err
	}

	cs.expirationJob.Start(context.Background())

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	cs.expirationJob.Stop()

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.redis != nil {
		if err := cs.redis.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

// alwaysFirst stands in for the Redis guard when the cache is down.
type alwaysFirst struct{}

func (alwaysFirst) FirstNotification(ctx context.Context, hostID, bookingID int64) (bool, error) {
	return true, nil
}

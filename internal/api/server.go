package api

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"supperclub/internal/cache"
	"supperclub/internal/config"
	"supperclub/internal/database"
	"supperclub/internal/handlers"
	"supperclub/internal/logger"
	"supperclub/internal/messaging"
	"supperclub/internal/middleware"
	"supperclub/internal/repository"
	"supperclub/internal/search"
	"supperclub/internal/service"
)

// Server is the HTTP API process: database, broker and the optional
// cache/search backends wired into the reservation services.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	redis    *cache.Client
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// The broker is required: without it confirmed bookings would silently
	// lose their passes and notifications.
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Redis and Elasticsearch are accelerators. The API stays up without
	// them; auth falls back to the database and discovery to SQL.
	redisClient, err := cache.New(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, credential cache disabled", "error", err)
		redisClient = nil
	}

	esClient, err := search.NewElasticsearchClient(config.LoadElasticsearchConfig())
	if err != nil {
		slog.Warn("Elasticsearch unavailable, slot discovery falls back to SQL", "error", err)
		esClient = nil
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, esClient, cfg.CompletionTimeout)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		redis:    redisClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.redis))
	{
		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.CreateReservation)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
		}

		slots := api.Group("/slots")
		{
			slots.POST("", h.CreateSlot)
			slots.GET("", h.ListSlots)
			slots.GET("/:id", h.GetSlot)
			slots.PATCH("/cancel", h.CancelSlot)
			slots.PATCH("/complete", h.CompleteSlot)
		}
	}

	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backing connections
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

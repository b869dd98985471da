package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"supperclub/internal/cache"
	"supperclub/internal/repository"
)

// Ctx key and helpers for the authenticated user id.
// Using unexported type to avoid collisions

type ctxKey string

const userIDKey ctxKey = "user_id"

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CORS handles cross-origin requests
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger emits a structured record for requests that complete with an
// error status
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		userID, exists := c.Get("user_id")

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if exists {
			logFields = append(logFields, "user_id", userID)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
		}
	}
}

// Recovery turns panics into 500 responses with a detailed log record
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// BasicAuth authenticates a user via HTTP Basic Auth, checking the Redis
// credential cache first and falling back to the database. Verified
// database hits are written back to the cache.
func BasicAuth(userRepo *repository.UserRepository, redisClient *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx := c.Request.Context()

		hash := sha256.Sum256([]byte(password))
		passwordHash := fmt.Sprintf("%x", hash)

		if redisClient != nil {
			userID, err := redisClient.GetUserIDByAuth(ctx, username, passwordHash)
			if err == nil {
				c.Set("user_id", userID)
				c.Request = c.Request.WithContext(ContextWithUserID(c.Request.Context(), userID))
				c.Next()
				return
			}
		}

		user, err := userRepo.GetByEmail(ctx, username)
		if err != nil || user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if passwordHash != user.PasswordHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if redisClient != nil {
			if err := redisClient.SetUserAuth(ctx, username, passwordHash, user.UserID); err != nil {
				slog.Warn("Failed to cache credentials", "error", err)
			}
		}

		c.Set("user_id", user.UserID)
		c.Request = c.Request.WithContext(ContextWithUserID(c.Request.Context(), user.UserID))

		c.Next()
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstNotificationWinsOnce(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	guard := NewNotificationGuard(rdb, 5*time.Minute)

	mock.ExpectSetNX("notify:host:10:booking:42", "1", 5*time.Minute).SetVal(true)
	mock.ExpectSetNX("notify:host:10:booking:42", "1", 5*time.Minute).SetVal(false)

	first, err := guard.FirstNotification(context.Background(), 10, 42)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = guard.FirstNotification(context.Background(), 10, 42)
	require.NoError(t, err)
	assert.False(t, first)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFirstNotificationKeyIsPerBooking(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	guard := NewNotificationGuard(rdb, 5*time.Minute)

	mock.ExpectSetNX("notify:host:10:booking:42", "1", 5*time.Minute).SetVal(true)
	mock.ExpectSetNX("notify:host:10:booking:43", "1", 5*time.Minute).SetVal(true)

	first, err := guard.FirstNotification(context.Background(), 10, 42)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = guard.FirstNotification(context.Background(), 10, 43)
	require.NoError(t, err)
	assert.True(t, first)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFirstNotificationSurfacesRedisErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	guard := NewNotificationGuard(rdb, 5*time.Minute)

	mock.ExpectSetNX("notify:host:10:booking:42", "1", 5*time.Minute).SetErr(errors.New("connection refused"))

	_, err := guard.FirstNotification(context.Background(), 10, 42)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuardDefaultsWindow(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	guard := NewNotificationGuard(rdb, 0)

	mock.ExpectSetNX("notify:host:1:booking:1", "1", 5*time.Minute).SetVal(true)

	first, err := guard.FirstNotification(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, first)

	assert.NoError(t, mock.ExpectationsWereMet())
}

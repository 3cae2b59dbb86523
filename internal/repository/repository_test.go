package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewOrderRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewNotificationLogRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewNotificationLogRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewUserNotificationRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewUserNotificationRepository(pool)
	assert.NotNil(t, repo)
}

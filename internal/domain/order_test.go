package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPendingPayment.Terminal())
	assert.False(t, OrderStatusPaid.Terminal())
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusRefunded.Terminal())
}

func TestOrderOwner(t *testing.T) {
	registered := &Order{UserID: "user-1", Email: "contact@example.com"}
	assert.True(t, registered.Registered())
	assert.Equal(t, "user-1", registered.Owner())

	guest := &Order{Email: "guest@example.com"}
	assert.False(t, guest.Registered())
	assert.Equal(t, "guest@example.com", guest.Owner())
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	// Late evening in a west-of-UTC zone still buckets on the UTC day.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 1, 22, 30, 0, 0, loc)

	assert.Equal(t, "2026-03-02", DayKey(NotificationPaymentReminder, now))
	assert.Equal(t, "2026-03-02", DayKey(NotificationInAppReminder, now))

	// Non-repeatable types share one bucket forever.
	assert.Equal(t, "", DayKey(NotificationPaymentConfirmation, now))
	assert.Equal(t, "", DayKey(NotificationPostPaymentSurvey, now))
}

func TestRepeatable(t *testing.T) {
	assert.True(t, NotificationPaymentReminder.Repeatable())
	assert.True(t, NotificationInAppReminder.Repeatable())
	assert.False(t, NotificationPaymentConfirmation.Repeatable())
	assert.False(t, NotificationAdminChatAlert.Repeatable())
	assert.False(t, NotificationTicketDelivered.Repeatable())
}

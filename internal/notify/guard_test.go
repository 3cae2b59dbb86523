package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/stretchr/testify/assert"
)

type memLog struct {
	mu      sync.Mutex
	entries []domain.NotificationLogEntry
}

func (m *memLog) WasSent(ctx context.Context, orderID string, ntype domain.NotificationType, dayKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.OrderID == orderID && e.Type == ntype && e.DayKey == dayKey && e.Status == domain.NotificationSent {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLog) Record(ctx context.Context, entry *domain.NotificationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memLog) count(status domain.NotificationStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

func TestGuard_SentEntrySuppressesResend(t *testing.T) {
	log := &memLog{}
	guard := NewGuard(log)
	ctx := context.Background()

	sent, dayKey, err := guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentConfirmation)
	assert.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, "", dayKey)

	assert.NoError(t, guard.RecordSent(ctx, "order-1", domain.NotificationPaymentConfirmation, dayKey, "a@b.com", "msg-1"))

	sent, _, err = guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentConfirmation)
	assert.NoError(t, err)
	assert.True(t, sent)
}

func TestGuard_FailedEntryDoesNotSuppress(t *testing.T) {
	log := &memLog{}
	guard := NewGuard(log)
	ctx := context.Background()

	assert.NoError(t, guard.RecordFailed(ctx, "order-1", domain.NotificationPaymentReceipt, "", "a@b.com", "boom"))

	sent, _, err := guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentReceipt)
	assert.NoError(t, err)
	assert.False(t, sent)
}

func TestGuard_ReminderKeyedByCalendarDay(t *testing.T) {
	log := &memLog{}
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	guard := &Guard{log: log, now: func() time.Time { return day1 }}
	ctx := context.Background()

	sent, dayKey, err := guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentReminder)
	assert.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, "2026-03-01", dayKey)

	assert.NoError(t, guard.RecordSent(ctx, "order-1", domain.NotificationPaymentReminder, dayKey, "a@b.com", ""))

	// Same day: suppressed.
	sent, _, _ = guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentReminder)
	assert.True(t, sent)

	// Next day: a fresh bucket.
	guard.now = func() time.Time { return day1.Add(24 * time.Hour) }
	sent, dayKey, _ = guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentReminder)
	assert.False(t, sent)
	assert.Equal(t, "2026-03-02", dayKey)
}

func TestGuard_KeysAreIndependentPerOrderAndType(t *testing.T) {
	log := &memLog{}
	guard := NewGuard(log)
	ctx := context.Background()

	assert.NoError(t, guard.RecordSent(ctx, "order-1", domain.NotificationPaymentConfirmation, "", "a@b.com", ""))

	sent, _, _ := guard.AlreadySent(ctx, "order-2", domain.NotificationPaymentConfirmation)
	assert.False(t, sent)

	sent, _, _ = guard.AlreadySent(ctx, "order-1", domain.NotificationPaymentReceipt)
	assert.False(t, sent)
}

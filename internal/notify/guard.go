package notify

import (
	"context"
	"time"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/repository"
)

// Guard is the durable check-before-act mechanism in front of every
// notification. A sent log entry for (order, type, day key) is permanent
// and suppresses any further dispatch for that key; a failed entry does
// not, so the next sweep or a redrive can retry.
type Guard struct {
	log repository.NotificationLogRepository
	now func() time.Time
}

func NewGuard(log repository.NotificationLogRepository) *Guard {
	return &Guard{log: log, now: time.Now}
}

// AlreadySent reports whether the key has a sent entry. The day key is
// derived here so callers cannot disagree about bucketing.
func (g *Guard) AlreadySent(ctx context.Context, orderID string, ntype domain.NotificationType) (bool, string, error) {
	dayKey := domain.DayKey(ntype, g.now())
	sent, err := g.log.WasSent(ctx, orderID, ntype, dayKey)
	return sent, dayKey, err
}

// RecordSent and RecordFailed always write an entry after a dispatch
// attempt; only sent entries feed back into AlreadySent.
func (g *Guard) RecordSent(ctx context.Context, orderID string, ntype domain.NotificationType, dayKey, recipient, messageID string) error {
	return g.log.Record(ctx, &domain.NotificationLogEntry{
		OrderID:   orderID,
		Type:      ntype,
		DayKey:    dayKey,
		Recipient: recipient,
		Status:    domain.NotificationSent,
		MessageID: messageID,
	})
}

func (g *Guard) RecordFailed(ctx context.Context, orderID string, ntype domain.NotificationType, dayKey, recipient, sendErr string) error {
	return g.log.Record(ctx, &domain.NotificationLogEntry{
		OrderID:   orderID,
		Type:      ntype,
		DayKey:    dayKey,
		Recipient: recipient,
		Status:    domain.NotificationFailed,
		Error:     sendErr,
	})
}

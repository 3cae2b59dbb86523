package repository

import (
	"context"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationLogRepository interface {
	// WasSent reports whether a sent entry already exists for the
	// (order, type, day key) triple. Failed entries do not count.
	WasSent(ctx context.Context, orderID string, ntype domain.NotificationType, dayKey string) (bool, error)
	Record(ctx context.Context, entry *domain.NotificationLogEntry) error
}

type PGNotificationLogRepository struct {
	db *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) NotificationLogRepository {
	return &PGNotificationLogRepository{db: db}
}

func (r *PGNotificationLogRepository) WasSent(ctx context.Context, orderID string, ntype domain.NotificationType, dayKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM notification_log WHERE order_id=$1 AND type=$2 AND day_key=$3 AND status=$4)`,
		orderID, ntype, dayKey, domain.NotificationSent).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGNotificationLogRepository) Record(ctx context.Context, entry *domain.NotificationLogEntry) error {
	return r.db.QueryRow(ctx, `INSERT INTO notification_log (order_id, type, day_key, recipient, status, message_id, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		entry.OrderID, entry.Type, entry.DayKey, entry.Recipient, entry.Status, entry.MessageID, entry.Error).
		Scan(&entry.ID, &entry.CreatedAt)
}

var _ NotificationLogRepository = (*PGNotificationLogRepository)(nil)

type UserNotificationRepository interface {
	Create(ctx context.Context, n *domain.UserNotification) error
}

type PGUserNotificationRepository struct {
	db *pgxpool.Pool
}

func NewUserNotificationRepository(db *pgxpool.Pool) UserNotificationRepository {
	return &PGUserNotificationRepository{db: db}
}

func (r *PGUserNotificationRepository) Create(ctx context.Context, n *domain.UserNotification) error {
	return r.db.QueryRow(ctx, `INSERT INTO user_notifications (user_id, order_id, type, title, message, action_url)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		n.UserID, n.OrderID, n.Type, n.Title, n.Message, n.ActionURL).
		Scan(&n.ID, &n.CreatedAt)
}

var _ UserNotificationRepository = (*PGUserNotificationRepository)(nil)

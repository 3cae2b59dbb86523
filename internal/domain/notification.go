package domain

import "time"

type NotificationType string

const (
	NotificationPaymentConfirmation NotificationType = "payment_confirmation"
	NotificationPaymentReceipt      NotificationType = "payment_receipt"
	NotificationAdminAlert          NotificationType = "admin_alert"
	NotificationAdminChatAlert      NotificationType = "admin_chat_alert"
	NotificationInAppPayment        NotificationType = "in_app_payment"
	NotificationTicketDelivered     NotificationType = "ticket_delivered"
	NotificationPaymentReminder     NotificationType = "payment_reminder"
	NotificationInAppReminder       NotificationType = "in_app_reminder"
	NotificationPostPaymentSurvey   NotificationType = "post_payment_survey"
)

// Repeatable reports whether the type is re-sendable on a later calendar
// day. Repeatable types are keyed by (order, type, day), everything else
// by (order, type) alone.
func (t NotificationType) Repeatable() bool {
	return t == NotificationPaymentReminder || t == NotificationInAppReminder
}

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// NotificationLogEntry is the durable record behind the idempotency
// guard: at most one sent entry may exist per (order, type, day key).
type NotificationLogEntry struct {
	ID        int64
	OrderID   string
	Type      NotificationType
	DayKey    string
	Recipient string
	Status    NotificationStatus
	MessageID string
	Error     string
	CreatedAt time.Time
}

// DayKey buckets repeatable notifications by UTC calendar day.
func DayKey(t NotificationType, now time.Time) string {
	if !t.Repeatable() {
		return ""
	}
	return now.UTC().Format("2006-01-02")
}

// UserNotification is an in-app notification row for a registered user.
type UserNotification struct {
	ID        int64
	UserID    string
	OrderID   string
	Type      NotificationType
	Title     string
	Message   string
	ActionURL string
	CreatedAt time.Time
}

package notify

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/flightpay/internal/chat"
	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/email"
	"github.com/Domenick1991/flightpay/internal/repository"
)

// Outcome is what a single dispatch attempt came to. The dispatcher
// never propagates a delivery failure to its caller; the order status
// write must not depend on any channel.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type Dispatcher struct {
	guard *Guard
	email email.Sender
	chat  chat.Sender
	inapp repository.UserNotificationRepository
	log   *slog.Logger
}

func NewDispatcher(guard *Guard, emailSender email.Sender, chatSender chat.Sender, inapp repository.UserNotificationRepository, log *slog.Logger) *Dispatcher {
	return &Dispatcher{guard: guard, email: emailSender, chat: chatSender, inapp: inapp, log: log}
}

// SendEmail dispatches one guarded email. A guard read failure counts as
// failed rather than risking a duplicate send.
func (d *Dispatcher) SendEmail(ctx context.Context, orderID string, ntype domain.NotificationType, msg email.Message) Outcome {
	sent, dayKey, err := d.guard.AlreadySent(ctx, orderID, ntype)
	if err != nil {
		d.log.Error("notification guard check failed", "order_id", orderID, "type", ntype, "err", err)
		return OutcomeFailed
	}
	if sent {
		return OutcomeSkipped
	}

	result, sendErr := d.email.Send(ctx, msg)
	if sendErr != nil {
		d.log.Error("email dispatch failed", "order_id", orderID, "type", ntype, "to", msg.To, "err", sendErr)
		if err := d.guard.RecordFailed(ctx, orderID, ntype, dayKey, msg.To, sendErr.Error()); err != nil {
			d.log.Error("notification log write failed", "order_id", orderID, "type", ntype, "err", err)
		}
		return OutcomeFailed
	}

	if err := d.guard.RecordSent(ctx, orderID, ntype, dayKey, msg.To, result.MessageID); err != nil {
		d.log.Error("notification log write failed", "order_id", orderID, "type", ntype, "err", err)
	}
	d.log.Info("email dispatched", "order_id", orderID, "type", ntype, "to", msg.To, "message_id", result.MessageID)
	return OutcomeSent
}

// SendChat dispatches the admin chat alert. The channel being disabled
// is a skip, not a failure.
func (d *Dispatcher) SendChat(ctx context.Context, orderID, to, text string) Outcome {
	if d.chat == nil || !d.chat.Enabled() {
		return OutcomeSkipped
	}

	ntype := domain.NotificationAdminChatAlert
	sent, dayKey, err := d.guard.AlreadySent(ctx, orderID, ntype)
	if err != nil {
		d.log.Error("notification guard check failed", "order_id", orderID, "type", ntype, "err", err)
		return OutcomeFailed
	}
	if sent {
		return OutcomeSkipped
	}

	if sendErr := d.chat.Send(ctx, to, text); sendErr != nil {
		d.log.Warn("chat dispatch failed", "order_id", orderID, "err", sendErr)
		if err := d.guard.RecordFailed(ctx, orderID, ntype, dayKey, to, sendErr.Error()); err != nil {
			d.log.Error("notification log write failed", "order_id", orderID, "type", ntype, "err", err)
		}
		return OutcomeFailed
	}

	if err := d.guard.RecordSent(ctx, orderID, ntype, dayKey, to, ""); err != nil {
		d.log.Error("notification log write failed", "order_id", orderID, "type", ntype, "err", err)
	}
	return OutcomeSent
}

// CreateInApp writes a guarded in-app notification for a registered user.
func (d *Dispatcher) CreateInApp(ctx context.Context, ntype domain.NotificationType, n domain.UserNotification) Outcome {
	sent, dayKey, err := d.guard.AlreadySent(ctx, n.OrderID, ntype)
	if err != nil {
		d.log.Error("notification guard check failed", "order_id", n.OrderID, "type", ntype, "err", err)
		return OutcomeFailed
	}
	if sent {
		return OutcomeSkipped
	}

	n.Type = ntype
	if createErr := d.inapp.Create(ctx, &n); createErr != nil {
		d.log.Error("in-app notification failed", "order_id", n.OrderID, "type", ntype, "err", createErr)
		if err := d.guard.RecordFailed(ctx, n.OrderID, ntype, dayKey, n.UserID, createErr.Error()); err != nil {
			d.log.Error("notification log write failed", "order_id", n.OrderID, "type", ntype, "err", err)
		}
		return OutcomeFailed
	}

	if err := d.guard.RecordSent(ctx, n.OrderID, ntype, dayKey, n.UserID, ""); err != nil {
		d.log.Error("notification log write failed", "order_id", n.OrderID, "type", ntype, "err", err)
	}
	return OutcomeSent
}

package notify

import (
	"fmt"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/email"
)

// Message builders for the customer and admin emails. Markup stays
// deliberately minimal; the mail provider template handles styling.

func ConfirmationEmail(o *domain.Order, siteURL string) email.Message {
	return email.Message{
		To:      o.Email,
		Subject: fmt.Sprintf("Payment received for order %s", o.OrderNumber),
		HTML: fmt.Sprintf(`<p>We received your payment of %s %s for order <strong>%s</strong> (%s, %s &rarr; %s).</p><p><a href="%s/orders/%s">View your order</a></p>`,
			o.Amount.StringFixed(2), o.Currency, o.OrderNumber, o.FlightNumber, o.Origin, o.Destination, siteURL, o.ID),
	}
}

func ReceiptEmail(o *domain.Order, siteURL string) email.Message {
	return email.Message{
		To:      o.Email,
		Subject: fmt.Sprintf("Receipt for order %s", o.OrderNumber),
		HTML: fmt.Sprintf(`<p>Receipt for order <strong>%s</strong>: %s %s, paid via %s.</p><p><a href="%s/orders/%s/receipt">Download receipt</a></p>`,
			o.OrderNumber, o.Amount.StringFixed(2), o.Currency, o.Provider, siteURL, o.ID),
	}
}

func AdminAlertEmail(o *domain.Order, adminAddress string) email.Message {
	return email.Message{
		To:      adminAddress,
		Subject: fmt.Sprintf("[URGENT] Order %s paid - ticket needed", o.OrderNumber),
		HTML: fmt.Sprintf(`<p>Order <strong>%s</strong> was just paid (%s %s via %s). Upload the ticket to complete it.</p>`,
			o.OrderNumber, o.Amount.StringFixed(2), o.Currency, o.Provider),
	}
}

func ReminderEmail(o *domain.Order, siteURL string) email.Message {
	return email.Message{
		To:      o.Email,
		Subject: fmt.Sprintf("Your booking %s is waiting for payment", o.OrderNumber),
		HTML: fmt.Sprintf(`<p>Your booking <strong>%s</strong> (%s &rarr; %s) has not been paid yet.</p><p><a href="%s/orders/%s/pay">Complete your payment</a></p>`,
			o.OrderNumber, o.Origin, o.Destination, siteURL, o.ID),
	}
}

func SurveyEmail(o *domain.Order, siteURL string) email.Message {
	return email.Message{
		To:      o.Email,
		Subject: "How was your booking experience?",
		HTML: fmt.Sprintf(`<p>Thanks for booking with us. We would love to hear how order <strong>%s</strong> went.</p><p><a href="%s/survey?order=%s">Take the survey</a></p>`,
			o.OrderNumber, siteURL, o.ID),
	}
}

func TicketEmail(o *domain.Order, siteURL, ticketURL string) email.Message {
	msg := email.Message{
		To:      o.Email,
		Subject: fmt.Sprintf("Your ticket for order %s", o.OrderNumber),
		HTML: fmt.Sprintf(`<p>Your ticket for order <strong>%s</strong> (%s, %s &rarr; %s) is attached.</p><p><a href="%s/orders/%s">View your order</a></p>`,
			o.OrderNumber, o.FlightNumber, o.Origin, o.Destination, siteURL, o.ID),
	}
	if ticketURL != "" {
		msg.Attachments = []email.Attachment{{Filename: fmt.Sprintf("ticket-%s.pdf", o.OrderNumber), URL: ticketURL}}
	}
	return msg
}

func PaymentInApp(o *domain.Order, siteURL string) domain.UserNotification {
	return domain.UserNotification{
		UserID:    o.UserID,
		OrderID:   o.ID,
		Title:     "Payment confirmed",
		Message:   fmt.Sprintf("Your payment for order %s was confirmed.", o.OrderNumber),
		ActionURL: fmt.Sprintf("%s/orders/%s", siteURL, o.ID),
	}
}

func ReminderInApp(o *domain.Order, siteURL string) domain.UserNotification {
	return domain.UserNotification{
		UserID:    o.UserID,
		OrderID:   o.ID,
		Title:     "Payment pending",
		Message:   fmt.Sprintf("Order %s is still waiting for payment.", o.OrderNumber),
		ActionURL: fmt.Sprintf("%s/orders/%s/pay", siteURL, o.ID),
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusRefunded       OrderStatus = "refunded"
)

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRefunded
}

type PaymentProvider string

const (
	ProviderStripe      PaymentProvider = "stripe"
	ProviderFlutterwave PaymentProvider = "flutterwave"
)

type Order struct {
	ID            string
	OrderNumber   string
	Status        OrderStatus
	Provider      PaymentProvider
	Amount        decimal.Decimal
	Currency      string
	UserID        string
	Email         string
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate time.Time
	CreatedAt     time.Time
	PaidAt        *time.Time
	CompletedAt   *time.Time
	UpdatedAt     time.Time
}

// Registered reports whether the order belongs to a registered user
// rather than a guest checkout.
func (o *Order) Registered() bool {
	return o.UserID != ""
}

// Owner identifies the order's owner: the user id for registered
// customers, the contact email for guest checkouts.
func (o *Order) Owner() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.Email
}

type Passenger struct {
	ID             int64
	OrderID        string
	FirstName      string
	LastName       string
	DocumentNumber string
}

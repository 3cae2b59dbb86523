package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/email"
	"github.com/Domenick1991/flightpay/internal/gateway"
	"github.com/Domenick1991/flightpay/internal/kafka"
	"github.com/Domenick1991/flightpay/internal/notify"
	"github.com/Domenick1991/flightpay/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnauthorized      = errors.New("principal is not authorized")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOwnerRequired     = errors.New("exactly one of user id or guest email must be set")
	ErrContactRequired   = errors.New("contact email is required")
	ErrNoPassengers      = errors.New("at least one passenger is required")
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, []domain.Passenger, error)
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error)
	CompleteOrder(ctx context.Context, principal, orderID, ticketURL string) (*domain.Order, error)
	RefundOrder(ctx context.Context, principal, orderID string) (*domain.Order, error)
	RedriveNotifications(ctx context.Context, principal, orderID string) error
}

// Verifier is the payment verification boundary (see internal/gateway).
type Verifier interface {
	Verify(ctx context.Context, provider domain.PaymentProvider, ref gateway.Reference) (gateway.VerificationResult, error)
}

// Dispatcher sends one guarded notification per call and never returns
// an error; delivery failure must not reach the state transition.
type Dispatcher interface {
	SendEmail(ctx context.Context, orderID string, ntype domain.NotificationType, msg email.Message) notify.Outcome
	CreateInApp(ctx context.Context, ntype domain.NotificationType, n domain.UserNotification) notify.Outcome
}

type Cache interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseOrderLock(ctx context.Context, orderID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// Authorizer decides whether a principal may perform admin actions.
type Authorizer func(principal string) bool

type OrderService struct {
	orders             repository.OrderRepository
	verifier           Verifier
	dispatcher         Dispatcher
	cache              Cache
	producer           Producer
	isAuthorized       Authorizer
	log                *slog.Logger
	eventsTopic        string
	notificationsTopic string
	adminEmail         string
	adminPhone         string
	siteURL            string
	lockTTL            time.Duration
}

type OrderServiceOption func(*OrderService)

func WithCache(cache Cache) OrderServiceOption {
	return func(s *OrderService) { s.cache = cache }
}

func WithProducer(producer Producer, eventsTopic, notificationsTopic string) OrderServiceOption {
	return func(s *OrderService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func NewOrderService(
	orders repository.OrderRepository,
	verifier Verifier,
	dispatcher Dispatcher,
	isAuthorized Authorizer,
	adminEmail, adminPhone, siteURL string,
	log *slog.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	s := &OrderService{
		orders:       orders,
		verifier:     verifier,
		dispatcher:   dispatcher,
		isAuthorized: isAuthorized,
		adminEmail:   adminEmail,
		adminPhone:   adminPhone,
		siteURL:      siteURL,
		log:          log,
		lockTTL:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateOrderInput struct {
	UserID       string
	GuestEmail   string
	ContactEmail string
	FlightNumber string
	Origin       string
	Destination  string
	Departure    time.Time
	Amount       decimal.Decimal
	Currency     string
	Passengers   []domain.Passenger
}

func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if (input.UserID == "") == (input.GuestEmail == "") {
		return nil, ErrOwnerRequired
	}
	if len(input.Passengers) == 0 {
		return nil, ErrNoPassengers
	}
	contact := input.ContactEmail
	if contact == "" {
		contact = input.GuestEmail
	}
	if contact == "" {
		return nil, ErrContactRequired
	}

	order := &domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   newOrderNumber(),
		Status:        domain.OrderStatusPendingPayment,
		UserID:        input.UserID,
		Email:         contact,
		FlightNumber:  input.FlightNumber,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.Departure,
		Amount:        input.Amount,
		Currency:      strings.ToUpper(input.Currency),
	}

	if err := s.orders.CreateWithPassengers(ctx, order, input.Passengers); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, "order_created", order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, []domain.Passenger, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	passengers, err := s.orders.Passengers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, passengers, nil
}

type ConfirmPaymentInput struct {
	OrderID       string
	Provider      domain.PaymentProvider
	SessionID     string
	TransactionID string
	TxRef         string
}

type ConfirmPaymentResult struct {
	Status domain.OrderStatus
	// Verified is true only when the order was observed paid, whether by
	// this call or an earlier one. Callers must report success from this
	// field, never from the client's say-so.
	Verified bool
	// AlreadyPaid marks the no-op path: a racing caller or an earlier
	// delivery of the same event performed the transition.
	AlreadyPaid bool
}

// ConfirmPayment drives the pending_payment -> paid transition for one
// verified payment event. The redirect callback and the provider webhook
// both land here; whichever arrives second becomes a no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*ConfirmPaymentResult, error) {
	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusPendingPayment {
		return &ConfirmPaymentResult{Status: order.Status, Verified: order.Status != domain.OrderStatusRefunded, AlreadyPaid: true}, nil
	}

	// Best-effort lock to keep the common race down to one gateway call.
	// Correctness does not depend on it: the conditional update below is
	// the real arbiter.
	if s.cache != nil {
		if ok, lockErr := s.cache.AcquireOrderLock(ctx, order.ID, s.lockTTL); lockErr != nil {
			s.log.Warn("order lock unavailable", "order_id", order.ID, "err", lockErr)
		} else if ok {
			defer func() { _ = s.cache.ReleaseOrderLock(ctx, order.ID) }()
		}
	}

	result, err := s.verifier.Verify(ctx, input.Provider, gateway.Reference{
		SessionID:     input.SessionID,
		TransactionID: input.TransactionID,
		TxRef:         input.TxRef,
	})
	if err != nil {
		return nil, fmt.Errorf("verify payment for order %s: %w", order.ID, err)
	}

	if !result.Verified {
		s.log.Info("payment not verified", "order_id", order.ID, "provider", input.Provider, "provider_status", result.ProviderStatus)
		return &ConfirmPaymentResult{Status: domain.OrderStatusPendingPayment}, nil
	}

	currency := result.Currency
	if currency == "" {
		currency = order.Currency
	}
	now := time.Now().UTC()
	won, err := s.orders.MarkPaid(ctx, order.ID, input.Provider, result.Amount, currency, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// A racing call got there first; its side effects are theirs.
		return &ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true, AlreadyPaid: true}, nil
	}

	order.Status = domain.OrderStatusPaid
	order.Provider = input.Provider
	order.Amount = result.Amount
	order.Currency = currency
	order.PaidAt = &now

	s.dispatchPaymentNotifications(ctx, order)
	s.publishEvent(ctx, "payment_confirmed", order)

	return &ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true}, nil
}

// dispatchPaymentNotifications fires the paid-order side-effect set in
// order. Each channel is independently guarded and best-effort.
func (s *OrderService) dispatchPaymentNotifications(ctx context.Context, order *domain.Order) {
	s.dispatcher.SendEmail(ctx, order.ID, domain.NotificationPaymentConfirmation, notify.ConfirmationEmail(order, s.siteURL))
	s.dispatcher.SendEmail(ctx, order.ID, domain.NotificationPaymentReceipt, notify.ReceiptEmail(order, s.siteURL))
	if s.adminEmail != "" {
		s.dispatcher.SendEmail(ctx, order.ID, domain.NotificationAdminAlert, notify.AdminAlertEmail(order, s.adminEmail))
	}
	s.publishChatAlert(ctx, order)
	if order.Registered() {
		s.dispatcher.CreateInApp(ctx, domain.NotificationInAppPayment, notify.PaymentInApp(order, s.siteURL))
	}
}

func (s *OrderService) CompleteOrder(ctx context.Context, principal, orderID, ticketURL string) (*domain.Order, error) {
	if !s.isAuthorized(principal) {
		return nil, ErrUnauthorized
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCompleted {
		return order, nil
	}
	if order.Status != domain.OrderStatusPaid {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, domain.OrderStatusCompleted)
	}

	changed, err := s.orders.Transition(ctx, orderID, domain.OrderStatusPaid, domain.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost a race; re-read and treat an observed completion as success.
		order, err = s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status == domain.OrderStatusCompleted {
			return order, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, domain.OrderStatusCompleted)
	}

	now := time.Now().UTC()
	order.Status = domain.OrderStatusCompleted
	order.CompletedAt = &now

	s.dispatcher.SendEmail(ctx, order.ID, domain.NotificationTicketDelivered, notify.TicketEmail(order, s.siteURL, ticketURL))
	s.publishEvent(ctx, "order_completed", order)
	return order, nil
}

func (s *OrderService) RefundOrder(ctx context.Context, principal, orderID string) (*domain.Order, error) {
	if !s.isAuthorized(principal) {
		return nil, ErrUnauthorized
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusRefunded {
		return order, nil
	}
	if order.Status != domain.OrderStatusPaid {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, domain.OrderStatusRefunded)
	}

	changed, err := s.orders.Transition(ctx, orderID, domain.OrderStatusPaid, domain.OrderStatusRefunded)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, domain.OrderStatusRefunded)
	}

	order.Status = domain.OrderStatusRefunded
	s.publishEvent(ctx, "order_refunded", order)
	return order, nil
}

// RedriveNotifications re-runs the paid-order dispatch set through the
// guard: sent channels are skipped, previously failed ones retried. This
// is the recovery path for a first transition whose notifications partly
// failed; the confirmation no-op path stays a pure no-op.
func (s *OrderService) RedriveNotifications(ctx context.Context, principal, orderID string) error {
	if !s.isAuthorized(principal) {
		return ErrUnauthorized
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPaid && order.Status != domain.OrderStatusCompleted {
		return fmt.Errorf("%w: cannot redrive notifications for %s order", ErrInvalidTransition, order.Status)
	}

	s.dispatchPaymentNotifications(ctx, order)
	return nil
}

func (s *OrderService) publishChatAlert(ctx context.Context, order *domain.Order) {
	if s.producer == nil || s.notificationsTopic == "" || s.adminPhone == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:        "admin_chat_alert",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Provider:    string(order.Provider),
		Amount:      order.Amount.StringFixed(2),
		Currency:    order.Currency,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, order.ID, event, 3); err != nil {
		s.log.Warn("failed to publish chat alert", "order_id", order.ID, "err", err)
	}
}

func (s *OrderService) publishEvent(ctx context.Context, eventType string, order *domain.Order) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Provider:    string(order.Provider),
		Amount:      order.Amount.StringFixed(2),
		Currency:    order.Currency,
		Email:       order.Email,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, order.ID, event); err != nil {
		s.log.Warn("failed to publish order event", "order_id", order.ID, "type", eventType, "err", err)
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("FP-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

var _ OrderUseCase = (*OrderService)(nil)

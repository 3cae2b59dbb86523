package sweeps

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightpay/config"
	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/email"
	"github.com/Domenick1991/flightpay/internal/notify"
	"github.com/Domenick1991/flightpay/internal/repository"
)

type SweepUseCase interface {
	// RunReminderSweep emails unpaid orders past the reminder threshold,
	// at most once per order per calendar day. Returns the number of
	// reminders actually sent.
	RunReminderSweep(ctx context.Context) (int, error)
	// RunSurveySweep emails the post-payment survey to recently paid
	// orders, once per order ever.
	RunSurveySweep(ctx context.Context) (int, error)
}

type Dispatcher interface {
	SendEmail(ctx context.Context, orderID string, ntype domain.NotificationType, msg email.Message) notify.Outcome
	CreateInApp(ctx context.Context, ntype domain.NotificationType, n domain.UserNotification) notify.Outcome
}

type Locker interface {
	AcquireSweepLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context, name string) error
}

type SweepService struct {
	orders         repository.OrderRepository
	dispatcher     Dispatcher
	locker         Locker
	log            *slog.Logger
	siteURL        string
	reminderAfter  time.Duration
	surveyDelay    time.Duration
	surveyLookback time.Duration
	batchSize      int
	lockTTL        time.Duration
	now            func() time.Time
}

func NewSweepService(orders repository.OrderRepository, dispatcher Dispatcher, locker Locker, cfg config.SweepConfig, siteURL string, log *slog.Logger) *SweepService {
	return &SweepService{
		orders:         orders,
		dispatcher:     dispatcher,
		locker:         locker,
		log:            log,
		siteURL:        siteURL,
		reminderAfter:  time.Duration(cfg.ReminderAfterHours) * time.Hour,
		surveyDelay:    time.Duration(cfg.SurveyDelayHours) * time.Hour,
		surveyLookback: time.Duration(cfg.SurveyLookbackDays) * 24 * time.Hour,
		batchSize:      cfg.BatchSize,
		lockTTL:        5 * time.Minute,
		now:            time.Now,
	}
}

func (s *SweepService) RunReminderSweep(ctx context.Context) (int, error) {
	release, ok := s.tryLock(ctx, "reminders")
	if !ok {
		return 0, nil
	}
	defer release()

	cutoff := s.now().Add(-s.reminderAfter)
	orders, err := s.orders.ListPendingOlderThan(ctx, cutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range orders {
		order := &orders[i]
		if s.dispatcher.SendEmail(ctx, order.ID, domain.NotificationPaymentReminder, notify.ReminderEmail(order, s.siteURL)) == notify.OutcomeSent {
			sent++
		}
		if order.Registered() {
			s.dispatcher.CreateInApp(ctx, domain.NotificationInAppReminder, notify.ReminderInApp(order, s.siteURL))
		}
	}

	s.log.Info("reminder sweep finished", "scanned", len(orders), "sent", sent)
	return sent, nil
}

func (s *SweepService) RunSurveySweep(ctx context.Context) (int, error) {
	release, ok := s.tryLock(ctx, "surveys")
	if !ok {
		return 0, nil
	}
	defer release()

	now := s.now()
	from := now.Add(-s.surveyLookback)
	to := now.Add(-s.surveyDelay)
	orders, err := s.orders.ListPaidBetween(ctx, from, to, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range orders {
		order := &orders[i]
		if s.dispatcher.SendEmail(ctx, order.ID, domain.NotificationPostPaymentSurvey, notify.SurveyEmail(order, s.siteURL)) == notify.OutcomeSent {
			sent++
		}
	}

	s.log.Info("survey sweep finished", "scanned", len(orders), "sent", sent)
	return sent, nil
}

// tryLock takes the advisory sweep lock. When redis is down the sweep
// still runs; the idempotency guard keeps duplicates out regardless.
func (s *SweepService) tryLock(ctx context.Context, name string) (func(), bool) {
	if s.locker == nil {
		return func() {}, true
	}
	ok, err := s.locker.AcquireSweepLock(ctx, name, s.lockTTL)
	if err != nil {
		s.log.Warn("sweep lock unavailable, running anyway", "sweep", name, "err", err)
		return func() {}, true
	}
	if !ok {
		s.log.Info("sweep already running elsewhere, skipping", "sweep", name)
		return nil, false
	}
	return func() { _ = s.locker.ReleaseSweepLock(ctx, name) }, true
}

var _ SweepUseCase = (*SweepService)(nil)

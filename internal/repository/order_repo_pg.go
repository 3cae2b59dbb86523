package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	// CreateWithPassengers inserts the order row, then the passenger rows.
	// Passengers are owned by the order; if any passenger insert fails the
	// order row is deleted again and the error returned.
	CreateWithPassengers(ctx context.Context, order *domain.Order, passengers []domain.Passenger) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// MarkPaid transitions pending_payment -> paid in a single conditional
	// update and reports whether this call won the transition. paid_at,
	// provider and the settled amount are written only by the winner.
	MarkPaid(ctx context.Context, id string, provider domain.PaymentProvider, amount decimal.Decimal, currency string, paidAt time.Time) (bool, error)
	// Transition moves the order from one exact status to another,
	// reporting whether a row changed. completed_at is set when the target
	// status is completed.
	Transition(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.Order, error)
	ListPaidBetween(ctx context.Context, from, to time.Time, limit int) ([]domain.Order, error)
	Passengers(ctx context.Context, orderID string) ([]domain.Passenger, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

const orderColumns = `id, order_number, status, provider, amount, currency, user_id, email, flight_number, origin, destination, departure_date, created_at, paid_at, completed_at, updated_at`

func (r *PGOrderRepository) CreateWithPassengers(ctx context.Context, order *domain.Order, passengers []domain.Passenger) error {
	order.Status = domain.OrderStatusPendingPayment
	if err := r.db.QueryRow(ctx, `INSERT INTO orders (id, order_number, status, amount, currency, user_id, email, flight_number, origin, destination, departure_date)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		order.ID, order.OrderNumber, order.Status, order.Amount, order.Currency, order.UserID, order.Email,
		order.FlightNumber, order.Origin, order.Destination, order.DepartureDate).
		Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return err
	}

	for i := range passengers {
		passengers[i].OrderID = order.ID
		if err := r.db.QueryRow(ctx, `INSERT INTO passengers (order_id, first_name, last_name, document_number)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			order.ID, passengers[i].FirstName, passengers[i].LastName, passengers[i].DocumentNumber).
			Scan(&passengers[i].ID); err != nil {
			// Compensate: the order must not survive without its passengers.
			_, _ = r.db.Exec(ctx, `DELETE FROM passengers WHERE order_id=$1`, order.ID)
			_, _ = r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, order.ID)
			return err
		}
	}
	return nil
}

func (r *PGOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *PGOrderRepository) MarkPaid(ctx context.Context, id string, provider domain.PaymentProvider, amount decimal.Decimal, currency string, paidAt time.Time) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE orders SET status=$1, provider=$2, amount=$3, currency=$4, paid_at=$5, updated_at=now()
		WHERE id=$6 AND status=$7`,
		domain.OrderStatusPaid, provider, amount, currency, paidAt, id, domain.OrderStatusPendingPayment)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGOrderRepository) Transition(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	var res pgconn.CommandTag
	var err error
	if to == domain.OrderStatusCompleted {
		res, err = r.db.Exec(ctx, `UPDATE orders SET status=$1, completed_at=now(), updated_at=now() WHERE id=$2 AND status=$3`, to, id, from)
	} else {
		res, err = r.db.Exec(ctx, `UPDATE orders SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`, to, id, from)
	}
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGOrderRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE status=$1 AND created_at < $2 ORDER BY created_at LIMIT $3`,
		domain.OrderStatusPendingPayment, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PGOrderRepository) ListPaidBetween(ctx context.Context, from, to time.Time, limit int) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE status=$1 AND paid_at IS NOT NULL AND paid_at > $2 AND paid_at < $3 ORDER BY paid_at LIMIT $4`,
		domain.OrderStatusPaid, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PGOrderRepository) Passengers(ctx context.Context, orderID string) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, order_id, first_name, last_name, document_number FROM passengers WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []domain.Passenger
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.OrderID, &p.FirstName, &p.LastName, &p.DocumentNumber); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var provider, userID *string
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.Status, &provider, &o.Amount, &o.Currency, &userID, &o.Email,
		&o.FlightNumber, &o.Origin, &o.Destination, &o.DepartureDate, &o.CreatedAt, &o.PaidAt, &o.CompletedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if provider != nil {
		o.Provider = domain.PaymentProvider(*provider)
	}
	if userID != nil {
		o.UserID = *userID
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

var _ OrderRepository = (*PGOrderRepository)(nil)

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// ServiceOrderRepository reads the service order log
type ServiceOrderRepository struct {
	DB *pgxpool.Pool
}

func NewServiceOrderRepository(db *pgxpool.Pool) *ServiceOrderRepository {
	return &ServiceOrderRepository{DB: db}
}

// ListByOrderIDs returns every log entry for the given order ids
func (r *ServiceOrderRepository) ListByOrderIDs(ctx context.Context, orderIDs []string) ([]models.ServiceOrder, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	rows, err := r.DB.Query(ctx,
		`SELECT order_id, completed_at, serial_number, observations
		 FROM service_orders
		 WHERE order_id = ANY($1)
		 ORDER BY completed_at`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.ServiceOrder
	for rows.Next() {
		var o models.ServiceOrder
		if err := rows.Scan(&o.OrderID, &o.CompletedAt, &o.SerialNumber, &o.Observations); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// LatestSince returns the most recent log entry of an order completed strictly
// after since. Entries of an older order that reused the number are ignored.
func (r *ServiceOrderRepository) LatestSince(ctx context.Context, orderID string, since time.Time) (*models.ServiceOrder, error) {
	var o models.ServiceOrder
	err := r.DB.QueryRow(ctx,
		`SELECT order_id, completed_at, serial_number, observations
		 FROM service_orders
		 WHERE order_id = $1 AND completed_at > $2
		 ORDER BY completed_at DESC
		 LIMIT 1`, orderID, since,
	).Scan(&o.OrderID, &o.CompletedAt, &o.SerialNumber, &o.Observations)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

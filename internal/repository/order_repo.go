package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/velstore/velstore-api/internal/models"
)

// OrderRepository handles data access for orders and order items.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderFilter holds filters for admin order listing.
type OrderFilter struct {
	Status string
	Page   int
	Limit  int
}

// OrderListResult contains paginated order results.
type OrderListResult struct {
	Orders     []models.Order
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// List returns orders for the admin dashboard, newest first.
func (r *OrderRepository) List(filter *OrderFilter) (*OrderListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	const baseWhere = `WHERE ($1 = '' OR status = $1)`

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM orders `+baseWhere, filter.Status); err != nil {
		return nil, err
	}

	const listQuery = `
        SELECT id, customer_name, customer_email, status, total_amount, created_at, updated_at
        FROM orders ` + baseWhere + `
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	var orders []models.Order
	if err := r.db.Select(&orders, listQuery, filter.Status, filter.Limit, offset); err != nil {
		return nil, err
	}

	return &OrderListResult{
		Orders:     orders,
		TotalItems: total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetByID returns one order with its items.
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	const q = `
        SELECT id, customer_name, customer_email, status, total_amount, created_at, updated_at
        FROM orders WHERE id = $1 LIMIT 1`

	var order models.Order
	if err := r.db.Get(&order, q, id); err != nil {
		return nil, err
	}

	const itemsQuery = `
        SELECT id, order_id, variant_id, product_name, storage, color_name, quantity, price
        FROM order_items WHERE order_id = $1 ORDER BY id`

	if err := r.db.Select(&order.Items, itemsQuery, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus sets the status of an order.
func (r *OrderRepository) UpdateStatus(id int, status models.OrderStatus) error {
	const q = `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.Exec(q, id, status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/velstore/velstore-api/internal/models"
	"github.com/velstore/velstore-api/internal/repository"
	"github.com/velstore/velstore-api/internal/utils"
)

// OrderService serves the admin order dashboard. Orders are written by the
// checkout flow; here they are only listed and moved through their statuses.
type OrderService struct {
	orders *repository.OrderRepository
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders *repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ListOrders returns paginated orders, optionally filtered by status.
func (s *OrderService) ListOrders(filter *repository.OrderFilter) (*repository.OrderListResult, error) {
	if filter.Status != "" && !models.ValidOrderStatus(filter.Status) {
		return nil, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, filter.Status)
	}
	result, err := s.orders.List(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", utils.ErrPersistence, err)
	}
	return result, nil
}

// GetOrder returns one order with its items.
func (s *OrderService) GetOrder(id int) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %d", utils.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: fetch order: %v", utils.ErrPersistence, err)
	}
	return order, nil
}

// UpdateOrderStatus moves an order to a new status.
func (s *OrderService) UpdateOrderStatus(id int, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: %q", utils.ErrInvalidStatus, status)
	}
	if err := s.orders.UpdateStatus(id, models.OrderStatus(status)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: order %d", utils.ErrNotFound, id)
		}
		return fmt.Errorf("%w: update order: %v", utils.ErrPersistence, err)
	}
	log.Info().Int("order_id", id).Str("status", status).Msg("order status updated")
	return nil
}

package models

import "time"

// OrderStatus enumerates the order lifecycle states shown in the dashboard.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a customer order. Rows are written by the checkout flow;
// this service only lists and updates them.
type Order struct {
	ID            int         `db:"id" json:"id"`
	CustomerName  string      `db:"customer_name" json:"customerName"`
	CustomerEmail string      `db:"customer_email" json:"customerEmail"`
	Status        OrderStatus `db:"status" json:"status"`
	TotalAmount   float64     `db:"total_amount" json:"totalAmount"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is one purchased variant line of an order. Product data is
// denormalized so the line survives product deletion.
type OrderItem struct {
	ID          int     `db:"id" json:"id"`
	OrderID     int     `db:"order_id" json:"orderId"`
	VariantID   *int    `db:"variant_id" json:"variantId,omitempty"`
	ProductName string  `db:"product_name" json:"productName"`
	Storage     string  `db:"storage" json:"storage"`
	ColorName   string  `db:"color_name" json:"colorName"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
}

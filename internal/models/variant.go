package models

import "time"

// Variant represents a purchasable configuration of a product
// (storage capacity + color). Every variant belongs to exactly one product.
type Variant struct {
	ID        int       `db:"id" json:"id"`
	ProductID int       `db:"product_id" json:"productId"`
	Stock     int       `db:"stock" json:"stock"`
	Price     float64   `db:"price" json:"price"`
	Storage   string    `db:"storage" json:"storage"`
	Color     string    `db:"color" json:"color"`
	ColorName string    `db:"color_name" json:"colorName"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

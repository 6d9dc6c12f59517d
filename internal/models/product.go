package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a catalog product. Images holds the public URLs of every
// object currently stored in the product's storage folder, in display order.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID          int            `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Brand       string         `db:"brand" json:"brand"`
	Slug        string         `db:"slug" json:"slug"`
	Features    pq.StringArray `db:"features" json:"features"`
	Description string         `db:"description" json:"description"`
	Images      pq.StringArray `db:"images" json:"images"`
	CreatedAt   time.Time      `db:"created_at" json:"-"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`

	// Populated via subquery on list endpoints
	MinPrice *float64 `db:"min_price" json:"minPrice,omitempty"`
}

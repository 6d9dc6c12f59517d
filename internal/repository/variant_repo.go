package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/velstore/velstore-api/internal/models"
)

// VariantRepository handles data access for product variants.
type VariantRepository struct {
	db *sqlx.DB
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(db *sqlx.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// GetByProductID returns all variants of a product.
func (r *VariantRepository) GetByProductID(productID int) ([]models.Variant, error) {
	const q = `SELECT * FROM variants WHERE product_id = $1 ORDER BY storage, price`

	var variants []models.Variant
	if err := r.db.Select(&variants, q, productID); err != nil {
		return nil, err
	}
	return variants, nil
}

// Upsert bulk-inserts variants that carry an id, replacing the stored row on
// id conflict. All rows go in one statement; any rejection fails the batch.
func (r *VariantRepository) Upsert(variants []models.Variant) error {
	if len(variants) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(variants))
	args := make([]interface{}, 0, len(variants)*7)
	for i, v := range variants {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, v.ID, v.ProductID, v.Stock, v.Price, v.Storage, v.Color, v.ColorName)
	}

	q := `
        INSERT INTO variants (id, product_id, stock, price, storage, color, color_name)
        VALUES ` + strings.Join(placeholders, ", ") + `
        ON CONFLICT (id) DO UPDATE SET
            product_id = EXCLUDED.product_id,
            stock = EXCLUDED.stock,
            price = EXCLUDED.price,
            storage = EXCLUDED.storage,
            color = EXCLUDED.color,
            color_name = EXCLUDED.color_name,
            updated_at = NOW()`

	_, err := r.db.Exec(q, args...)
	return err
}

// Insert bulk-inserts new variants and returns the assigned ids in input
// order. Any rejection fails the whole batch.
func (r *VariantRepository) Insert(variants []models.Variant) ([]int, error) {
	if len(variants) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(variants))
	args := make([]interface{}, 0, len(variants)*6)
	for i, v := range variants {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, v.ProductID, v.Stock, v.Price, v.Storage, v.Color, v.ColorName)
	}

	q := `
        INSERT INTO variants (product_id, stock, price, storage, color, color_name)
        VALUES ` + strings.Join(placeholders, ", ") + `
        RETURNING id`

	rows, err := r.db.Queryx(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, len(variants))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteExcept deletes every variant of a product whose id is not in keepIDs.
// An empty keep-set must still scope the delete to real rows, so the sentinel
// id 0 is substituted; serial ids start at 1 and never match it.
func (r *VariantRepository) DeleteExcept(productID int, keepIDs []int) error {
	if len(keepIDs) == 0 {
		keepIDs = []int{0}
	}

	const q = `DELETE FROM variants WHERE product_id = $1 AND id <> ALL($2)`
	_, err := r.db.Exec(q, productID, pq.Array(keepIDs))
	return err
}

// DeleteByProductID deletes all variants of a product.
func (r *VariantRepository) DeleteByProductID(productID int) error {
	const q = `DELETE FROM variants WHERE product_id = $1`
	_, err := r.db.Exec(q, productID)
	return err
}

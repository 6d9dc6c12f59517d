package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/velstore/velstore-api/internal/models"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product row. The caller controls the images value;
// reconciliation always starts with an empty list because the storage folder
// is keyed by the id assigned here.
func (r *ProductRepository) Create(p *models.Product) error {
	const q = `
        INSERT INTO products (name, brand, slug, features, description, images)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	if p.Features == nil {
		p.Features = pq.StringArray{}
	}
	if p.Images == nil {
		p.Images = pq.StringArray{}
	}
	return r.db.QueryRowx(q,
		p.Name,
		p.Brand,
		p.Slug,
		p.Features,
		p.Description,
		p.Images,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	const q = `SELECT id, name, brand, slug, features, description, images, created_at, updated_at
               FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.Get(&p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySlug returns a single product by slug.
func (r *ProductRepository) GetBySlug(slug string) (*models.Product, error) {
	const q = `SELECT id, name, brand, slug, features, description, images, created_at, updated_at
               FROM products WHERE slug = $1 LIMIT 1`

	var p models.Product
	if err := r.db.Get(&p, q, slug); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetImages returns the stored image URL list of a product.
func (r *ProductRepository) GetImages(id int) ([]string, error) {
	const q = `SELECT images FROM products WHERE id = $1 LIMIT 1`

	var images pq.StringArray
	if err := r.db.Get(&images, q, id); err != nil {
		return nil, err
	}
	return []string(images), nil
}

// UpdateScalars updates the scalar fields of a product, leaving images
// untouched. p is refreshed with the persisted images and timestamps.
func (r *ProductRepository) UpdateScalars(p *models.Product) error {
	const q = `
        UPDATE products
        SET name = $1, brand = $2, slug = $3, features = $4, description = $5, updated_at = NOW()
        WHERE id = $6
        RETURNING images, created_at, updated_at`

	if p.Features == nil {
		p.Features = pq.StringArray{}
	}
	return r.db.QueryRowx(q,
		p.Name,
		p.Brand,
		p.Slug,
		p.Features,
		p.Description,
		p.ID,
	).Scan(&p.Images, &p.CreatedAt, &p.UpdatedAt)
}

// UpdateImages replaces the image URL list of a product.
func (r *ProductRepository) UpdateImages(id int, images []string) error {
	const q = `UPDATE products SET images = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.Exec(q, id, pq.StringArray(images))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete deletes a product by ID.
func (r *ProductRepository) Delete(id int) error {
	const q = `DELETE FROM products WHERE id = $1`

	res, err := r.db.Exec(q, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListFilter holds filters for storefront product listing.
type ListFilter struct {
	Brand  string
	Search string
	Page   int
	Limit  int
}

// ListResult contains paginated product results.
type ListResult struct {
	Products   []models.Product
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// List returns products with optional brand filter and text search, paginated
// and annotated with the cheapest variant price.
func (r *ProductRepository) List(filter *ListFilter) (*ListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	const baseWhere = `WHERE ($1 = '' OR brand = $1)
        AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR brand ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`

	countQuery := `SELECT COUNT(1) FROM products ` + baseWhere
	var total int
	if err := r.db.Get(&total, countQuery, filter.Brand, filter.Search); err != nil {
		return nil, err
	}

	listQuery := `
        SELECT p.id, p.name, p.brand, p.slug, p.features, p.description, p.images,
               p.created_at, p.updated_at, v.min_price
        FROM products p
        LEFT JOIN (
            SELECT product_id, MIN(price) AS min_price
            FROM variants
            GROUP BY product_id
        ) v ON v.product_id = p.id ` + baseWhere + `
        ORDER BY p.created_at DESC
        LIMIT $3 OFFSET $4`

	var products []models.Product
	if err := r.db.Select(&products, listQuery, filter.Brand, filter.Search, filter.Limit, offset); err != nil {
		return nil, err
	}

	return &ListResult{
		Products:   products,
		TotalItems: total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetDistinctBrands returns all distinct brands for storefront filters.
func (r *ProductRepository) GetDistinctBrands() ([]string, error) {
	const q = `SELECT DISTINCT brand FROM products WHERE brand != '' ORDER BY brand`

	var brands []string
	if err := r.db.Select(&brands, q); err != nil {
		return nil, err
	}
	return brands, nil
}

// AllImageURLs returns every image URL referenced by any product. Used by the
// storage sweep worker to decide which stored objects are orphaned.
func (r *ProductRepository) AllImageURLs() ([]string, error) {
	const q = `SELECT COALESCE(img, '') FROM products, unnest(images) AS img`

	var urls []string
	if err := r.db.Select(&urls, q); err != nil {
		return nil, err
	}
	return urls, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/velstore/velstore-api/internal/models"
	"github.com/velstore/velstore-api/internal/utils"
)

// ProductStore is the subset of product persistence the admin flows need.
type ProductStore interface {
	Create(p *models.Product) error
	GetByID(id int) (*models.Product, error)
	GetImages(id int) ([]string, error)
	UpdateScalars(p *models.Product) error
	UpdateImages(id int, images []string) error
	Delete(id int) error
}

// VariantStore is the subset of variant persistence the admin flows need.
type VariantStore interface {
	Upsert(variants []models.Variant) error
	Insert(variants []models.Variant) ([]int, error)
	DeleteExcept(productID int, keepIDs []int) error
	DeleteByProductID(productID int) error
}

// ObjectStore abstracts the product-images bucket.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, keys []string) error
}

// CatalogInvalidator drops cached storefront reads after a write.
type CatalogInvalidator interface {
	InvalidateProduct(ctx context.Context, slugs ...string) error
}

// ImageInput is one desired image entry: either an existing stored URL to
// retain, or new binary content to upload.
type ImageInput struct {
	URL         string
	Data        []byte
	Filename    string
	ContentType string
}

// ExistingImage builds an entry retaining an already stored URL.
func ExistingImage(url string) ImageInput {
	return ImageInput{URL: url}
}

// NewImage builds an entry carrying new binary content.
func NewImage(data []byte, filename, contentType string) ImageInput {
	return ImageInput{Data: data, Filename: filename, ContentType: contentType}
}

func (i ImageInput) isNew() bool {
	return len(i.Data) > 0
}

func (i ImageInput) isEmpty() bool {
	return i.URL == "" && len(i.Data) == 0
}

// VariantInput is one desired variant. ID > 0 marks an update target; ID == 0
// marks a variant to create.
type VariantInput struct {
	ID        int     `json:"id"`
	Stock     int     `json:"stock"`
	Price     float64 `json:"price"`
	Storage   string  `json:"storage"`
	Color     string  `json:"color"`
	ColorName string  `json:"colorName"`
}

// ProductInput is the desired state of a product supplied by the dashboard.
type ProductInput struct {
	Name        string
	Brand       string
	Slug        string
	Features    []string
	Description string
	Images      []ImageInput
	Variants    []VariantInput
}

// ProductAdminService reconciles persisted product state (row, stored images,
// variant rows) to a caller-supplied desired state. The backend offers no
// cross-table transaction, so each operation is an ordered sequence of
// idempotent steps: base row, then images, then variants. A failure aborts
// the remaining steps without rolling back completed ones; retrying the whole
// call converges. Concurrent reconciliations of the same product are not
// coordinated; last writer wins.
type ProductAdminService struct {
	products ProductStore
	variants VariantStore
	store    ObjectStore
	cache    CatalogInvalidator
}

// NewProductAdminService constructs a ProductAdminService. cache may be nil.
func NewProductAdminService(products ProductStore, variants VariantStore, store ObjectStore, cache CatalogInvalidator) *ProductAdminService {
	return &ProductAdminService{
		products: products,
		variants: variants,
		store:    store,
		cache:    cache,
	}
}

// CreateProduct creates a product with its images and variants.
//
// The row is inserted first with an empty image list because the storage
// folder is keyed by the id assigned on insert; images are uploaded and
// persisted in a second pass. The returned product is the row as inserted,
// matching what the insert round trip reported.
func (s *ProductAdminService) CreateProduct(ctx context.Context, input *ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:        input.Name,
		Brand:       input.Brand,
		Slug:        input.Slug,
		Features:    input.Features,
		Description: input.Description,
		Images:      []string{},
	}
	if err := s.products.Create(product); err != nil {
		return nil, fmt.Errorf("%w: insert product: %v", utils.ErrPersistence, err)
	}

	images, err := s.syncImages(ctx, product.ID, nil, input.Images)
	if err != nil {
		return nil, err
	}
	if err := s.products.UpdateImages(product.ID, images); err != nil {
		return nil, fmt.Errorf("%w: persist image list: %v", utils.ErrPersistence, err)
	}

	if len(input.Variants) > 0 {
		rows := make([]models.Variant, 0, len(input.Variants))
		for _, v := range input.Variants {
			rows = append(rows, variantRow(product.ID, v))
		}
		if _, err := s.variants.Insert(rows); err != nil {
			return nil, fmt.Errorf("%w: insert variants: %v", utils.ErrPersistence, err)
		}
	}

	s.invalidate(ctx, product.Slug)
	log.Info().Int("product_id", product.ID).Str("slug", product.Slug).
		Int("images", len(images)).Int("variants", len(input.Variants)).
		Msg("product created")
	return product, nil
}

// UpdateProduct drives the persisted state of an existing product to match
// input: scalar fields, then stored images, then the variant set.
func (s *ProductAdminService) UpdateProduct(ctx context.Context, productID int, input *ProductInput) (*models.Product, error) {
	existing, err := s.products.GetImages(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("%w: fetch images: %v", utils.ErrPersistence, err)
	}

	product := &models.Product{
		ID:          productID,
		Name:        input.Name,
		Brand:       input.Brand,
		Slug:        input.Slug,
		Features:    input.Features,
		Description: input.Description,
	}
	if err := s.products.UpdateScalars(product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %d", utils.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("%w: update product: %v", utils.ErrPersistence, err)
	}

	images, err := s.syncImages(ctx, productID, existing, input.Images)
	if err != nil {
		return nil, err
	}
	if err := s.products.UpdateImages(productID, images); err != nil {
		return nil, fmt.Errorf("%w: persist image list: %v", utils.ErrPersistence, err)
	}

	if err := s.syncVariants(productID, input.Variants); err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.Slug)
	log.Info().Int("product_id", productID).Str("slug", input.Slug).
		Int("images", len(images)).Int("variants", len(input.Variants)).
		Msg("product updated")
	return product, nil
}

// DeleteProduct removes a product, its variants, and its stored images.
//
// Variants and the image-list read come before the row delete so the
// folder-derived storage keys remain resolvable; storage removal runs last so
// a failure there leaves the relational data already consistent, at the cost
// of orphaned objects (the sweep worker reclaims those).
func (s *ProductAdminService) DeleteProduct(ctx context.Context, productID int) error {
	if err := s.variants.DeleteByProductID(productID); err != nil {
		return fmt.Errorf("%w: delete variants: %v", utils.ErrPersistence, err)
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: product %d", utils.ErrNotFound, productID)
		}
		return fmt.Errorf("%w: fetch product: %v", utils.ErrPersistence, err)
	}

	if err := s.products.Delete(productID); err != nil {
		return fmt.Errorf("%w: delete product: %v", utils.ErrPersistence, err)
	}

	if len(product.Images) > 0 {
		keys := make([]string, 0, len(product.Images))
		for _, url := range product.Images {
			keys = append(keys, objectKey(productID, utils.ObjectKeyFromURL(url)))
		}
		if err := s.store.Remove(ctx, keys); err != nil {
			return fmt.Errorf("%w: remove images: %v", utils.ErrStorage, err)
		}
	}

	s.invalidate(ctx, product.Slug)
	log.Info().Int("product_id", productID).Str("slug", product.Slug).Msg("product deleted")
	return nil
}

// syncImages reconciles the stored objects of a product's folder with the
// desired entries. Stored URLs absent from the desired list are removed in
// one bulk call; new binary entries are uploaded concurrently; retained URLs
// pass through. The returned list preserves desired order, because results
// are collected positionally.
func (s *ProductAdminService) syncImages(ctx context.Context, productID int, existing []string, desired []ImageInput) ([]string, error) {
	valid := make([]ImageInput, 0, len(desired))
	for _, img := range desired {
		if !img.isEmpty() {
			valid = append(valid, img)
		}
	}

	retained := make(map[string]bool, len(valid))
	for _, img := range valid {
		if !img.isNew() {
			retained[img.URL] = true
		}
	}

	var toDelete []string
	for _, url := range existing {
		if !retained[url] {
			toDelete = append(toDelete, objectKey(productID, utils.ObjectKeyFromURL(url)))
		}
	}
	if len(toDelete) > 0 {
		if err := s.store.Remove(ctx, toDelete); err != nil {
			return nil, fmt.Errorf("%w: remove images: %v", utils.ErrStorage, err)
		}
	}

	out := make([]string, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range valid {
		if !img.isNew() {
			out[i] = img.URL
			continue
		}
		i, img := i, img
		g.Go(func() error {
			key := objectKey(productID, fmt.Sprintf("%d-%s", productID, img.Filename))
			url, err := s.store.Upload(gctx, key, img.Data, img.ContentType)
			if err != nil {
				return fmt.Errorf("%w: upload %s: %v", utils.ErrStorage, key, err)
			}
			out[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// syncVariants reconciles the variant rows of a product to exactly match the
// desired list: upsert entries carrying an id, insert the rest, then sweep
// away every row outside the retained id set.
func (s *ProductAdminService) syncVariants(productID int, desired []VariantInput) error {
	var withID, withoutID []models.Variant
	for _, v := range desired {
		row := variantRow(productID, v)
		if v.ID > 0 {
			withID = append(withID, row)
		} else {
			withoutID = append(withoutID, row)
		}
	}

	if len(withID) > 0 {
		if err := s.variants.Upsert(withID); err != nil {
			return fmt.Errorf("%w: upsert variants: %v", utils.ErrPersistence, err)
		}
	}

	keep := make([]int, 0, len(desired))
	for _, v := range withID {
		keep = append(keep, v.ID)
	}
	if len(withoutID) > 0 {
		ids, err := s.variants.Insert(withoutID)
		if err != nil {
			return fmt.Errorf("%w: insert variants: %v", utils.ErrPersistence, err)
		}
		keep = append(keep, ids...)
	}

	if err := s.variants.DeleteExcept(productID, keep); err != nil {
		return fmt.Errorf("%w: delete stale variants: %v", utils.ErrPersistence, err)
	}
	return nil
}

func (s *ProductAdminService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, slugs...); err != nil {
		log.Warn().Err(err).Strs("slugs", slugs).Msg("cache invalidation failed")
	}
}

func variantRow(productID int, v VariantInput) models.Variant {
	return models.Variant{
		ID:        v.ID,
		ProductID: productID,
		Stock:     v.Stock,
		Price:     v.Price,
		Storage:   v.Storage,
		Color:     v.Color,
		ColorName: v.ColorName,
	}
}

// objectKey builds the storage key for an object inside a product's folder.
func objectKey(productID int, name string) string {
	return fmt.Sprintf("%d/%s", productID, name)
}

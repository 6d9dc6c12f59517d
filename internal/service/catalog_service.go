package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/velstore/velstore-api/internal/cache"
	"github.com/velstore/velstore-api/internal/repository"
	"github.com/velstore/velstore-api/internal/utils"
)

// CatalogService serves the public storefront read surface.
type CatalogService struct {
	products *repository.ProductRepository
	variants *repository.VariantRepository
	cache    *cache.CatalogCache
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(products *repository.ProductRepository, variants *repository.VariantRepository, catalogCache *cache.CatalogCache) *CatalogService {
	return &CatalogService{
		products: products,
		variants: variants,
		cache:    catalogCache,
	}
}

// ListProducts returns a filtered, paginated product listing.
func (s *CatalogService) ListProducts(filter *repository.ListFilter) (*repository.ListResult, error) {
	result, err := s.products.List(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", utils.ErrPersistence, err)
	}
	return result, nil
}

// GetProductBySlug returns a product and its variants for the product page.
// Lookups are cached; writers invalidate by slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*cache.ProductDetail, error) {
	if s.cache != nil {
		if detail, err := s.cache.GetProduct(ctx, slug); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("catalog cache read failed")
		} else if detail != nil {
			return detail, nil
		}
	}

	product, err := s.products.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %q", utils.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("%w: fetch product: %v", utils.ErrPersistence, err)
	}

	variants, err := s.variants.GetByProductID(product.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch variants: %v", utils.ErrPersistence, err)
	}

	detail := &cache.ProductDetail{Product: *product, Variants: variants}
	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, detail); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("catalog cache write failed")
		}
	}
	return detail, nil
}

// GetBrands returns the distinct brands available for filtering.
func (s *CatalogService) GetBrands() ([]string, error) {
	brands, err := s.products.GetDistinctBrands()
	if err != nil {
		return nil, fmt.Errorf("%w: list brands: %v", utils.ErrPersistence, err)
	}
	return brands, nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/velstore/velstore-api/internal/models"
)

// catalogTTL keeps slug lookups fresh enough that a changed slug falls out
// quickly even when the writer misses an invalidation.
const catalogTTL = 5 * time.Minute

// ProductDetail is a product together with its variants, as served by the
// storefront product page.
type ProductDetail struct {
	Product  models.Product   `json:"product"`
	Variants []models.Variant `json:"variants"`
}

// CatalogCache caches storefront slug lookups in Redis.
type CatalogCache struct {
	redis *RedisClient
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(redis *RedisClient) *CatalogCache {
	return &CatalogCache{redis: redis}
}

func (c *CatalogCache) keyBySlug(slug string) string {
	return fmt.Sprintf("catalog:product:%s", slug)
}

// GetProduct returns a cached product detail, or (nil, nil) on a miss.
func (c *CatalogCache) GetProduct(ctx context.Context, slug string) (*ProductDetail, error) {
	raw, err := c.redis.Get(ctx, c.keyBySlug(slug))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var detail ProductDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &detail, nil
}

// SetProduct stores a product detail under its slug.
func (c *CatalogCache) SetProduct(ctx context.Context, detail *ProductDetail) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal product detail: %w", err)
	}
	return c.redis.Set(ctx, c.keyBySlug(detail.Product.Slug), string(raw), catalogTTL)
}

// InvalidateProduct drops cached entries for the given slugs.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, c.keyBySlug(s))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Delete(ctx, keys...)
}

package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/velstore/velstore-api/internal/repository"
	"github.com/velstore/velstore-api/internal/service"
	"github.com/velstore/velstore-api/internal/utils"
)

// CatalogHandler handles the public storefront endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := &repository.ListFilter{
		Brand:  c.Query("brand"),
		Search: c.Query("search"),
		Page:   1,
		Limit:  20,
	}
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}

	result, err := h.catalog.ListProducts(filter)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved", result.Products,
		result.Page, result.Limit, result.TotalItems)
}

// GetProductBySlug handles GET /v1/products/:slug
func (h *CatalogHandler) GetProductBySlug(c *gin.Context) {
	detail, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve product")
		return
	}

	utils.Success(c, 200, "Product retrieved", detail)
}

// GetBrands handles GET /v1/products/brands
func (h *CatalogHandler) GetBrands(c *gin.Context) {
	brands, err := h.catalog.GetBrands()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve brands")
		return
	}

	utils.Success(c, 200, "Brands retrieved", brands)
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/velstore/velstore-api/internal/service"
	"github.com/velstore/velstore-api/internal/utils"
)

// ProductAdminHandler handles the dashboard product CRUD endpoints.
type ProductAdminHandler struct {
	admin *service.ProductAdminService
}

// NewProductAdminHandler constructs a ProductAdminHandler.
func NewProductAdminHandler(admin *service.ProductAdminService) *ProductAdminHandler {
	return &ProductAdminHandler{admin: admin}
}

// imagePayload is one desired image entry of the payload: a retained URL or a
// reference to a file part of the multipart form. Order in the array is the
// display order that will be persisted.
type imagePayload struct {
	URL    string `json:"url"`
	Upload string `json:"upload"`
}

// productPayload is the JSON body (or the "payload" multipart field) of the
// create/update endpoints.
type productPayload struct {
	Name        string                 `json:"name" binding:"required"`
	Brand       string                 `json:"brand" binding:"required"`
	Slug        string                 `json:"slug" binding:"required"`
	Features    []string               `json:"features"`
	Description string                 `json:"description"`
	Images      []imagePayload         `json:"images"`
	Variants    []service.VariantInput `json:"variants"`
}

// CreateProduct handles POST /v1/admin/products
func (h *ProductAdminHandler) CreateProduct(c *gin.Context) {
	input, ok := h.bindProductInput(c)
	if !ok {
		return
	}

	product, err := h.admin.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err, "Failed to create product")
		return
	}

	utils.Success(c, 201, "Product created successfully", product)
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *ProductAdminHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid product ID")
		return
	}

	input, ok := h.bindProductInput(c)
	if !ok {
		return
	}

	product, err := h.admin.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		h.writeError(c, err, "Failed to update product")
		return
	}

	utils.Success(c, 200, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *ProductAdminHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid product ID")
		return
	}

	if err := h.admin.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "Failed to delete product")
		return
	}

	utils.Success(c, 200, "Product deleted successfully", gin.H{"deleted": true})
}

// bindProductInput reads the product payload from either a JSON body or a
// multipart form whose "payload" field carries the JSON and whose file parts
// carry new image content. Responds with 400 and returns false on bad input.
func (h *ProductAdminHandler) bindProductInput(c *gin.Context) (*service.ProductInput, bool) {
	var payload productPayload

	isMultipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	if isMultipart {
		raw := c.PostForm("payload")
		if raw == "" {
			utils.Error(c, 400, "INVALID_REQUEST", "Missing payload field")
			return nil, false
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			utils.Error(c, 400, "INVALID_REQUEST", "Invalid payload JSON")
			return nil, false
		}
	} else if err := c.ShouldBindJSON(&payload); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return nil, false
	}

	if payload.Name == "" || payload.Brand == "" || payload.Slug == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "name, brand and slug are required")
		return nil, false
	}
	for _, v := range payload.Variants {
		if v.Stock < 0 || v.Price < 0 {
			utils.Error(c, 400, "INVALID_REQUEST", "variant stock and price must be non-negative")
			return nil, false
		}
	}

	input := &service.ProductInput{
		Name:        payload.Name,
		Brand:       payload.Brand,
		Slug:        payload.Slug,
		Features:    payload.Features,
		Description: payload.Description,
		Variants:    payload.Variants,
	}

	for _, img := range payload.Images {
		switch {
		case img.Upload != "":
			if !isMultipart {
				utils.Error(c, 400, "INVALID_REQUEST", "Image uploads require a multipart request")
				return nil, false
			}
			fileHeader, err := c.FormFile(img.Upload)
			if err != nil {
				utils.Error(c, 400, "INVALID_REQUEST", "Missing file part: "+img.Upload)
				return nil, false
			}
			f, err := fileHeader.Open()
			if err != nil {
				utils.Error(c, 400, "INVALID_REQUEST", "Unreadable file part: "+img.Upload)
				return nil, false
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				utils.Error(c, 400, "INVALID_REQUEST", "Unreadable file part: "+img.Upload)
				return nil, false
			}
			contentType := fileHeader.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			input.Images = append(input.Images, service.NewImage(data, fileHeader.Filename, contentType))
		case img.URL != "":
			input.Images = append(input.Images, service.ExistingImage(img.URL))
		}
	}

	return input, true
}

// writeError maps service error kinds to stable API codes. Backend messages
// stay in logs; clients only get failure-vs-success plus a code.
func (h *ProductAdminHandler) writeError(c *gin.Context, err error, fallback string) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("product admin operation failed")

	switch {
	case errors.Is(err, utils.ErrNotFound):
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, utils.ErrStorage):
		utils.Error(c, 500, "STORAGE_ERROR", fallback)
	default:
		utils.Error(c, 500, "PERSISTENCE_ERROR", fallback)
	}
}

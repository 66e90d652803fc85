package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kepacart/backend/internal/domain"
	"github.com/kepacart/backend/internal/infrastructure/logger"
	"github.com/kepacart/backend/internal/usecase"
	"go.uber.org/zap"
)

const (
	serviceName    = "kepacart-backend"
	serviceVersion = "1.0.0"

	searchCacheControl = "public, s-maxage=300, stale-while-revalidate=600"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search       *usecase.SearchService
	registration *usecase.RegistrationService
}

// NewHandler creates a new HTTP handler
func NewHandler(search *usecase.SearchService, registration *usecase.RegistrationService) *Handler {
	return &Handler{
		search:       search,
		registration: registration,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Search handles GET /api/v1/search?keyword=
func (h *Handler) Search(c *gin.Context) {
	keyword := c.Query("keyword")

	if err := h.search.Preprocessor().Validate(keyword); err != nil {
		c.JSON(http.StatusBadRequest, domain.EmptyResultSet(keyword, validationMessage(err)))
		return
	}

	result := h.search.Search(c.Request.Context(), keyword)
	if result.Error != "" {
		c.JSON(http.StatusBadGateway, result)
		return
	}

	c.Header("Cache-Control", searchCacheControl)
	c.JSON(http.StatusOK, result)
}

// RegisterProduct handles POST /api/v1/products
func (h *Handler) RegisterProduct(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   bindingMessage(err),
		})
		return
	}

	product, err := h.registration.Register(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Product registered",
			"product": product,
		})
	case errors.Is(err, domain.ErrDuplicateBarcode):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "Barcode is already registered",
			"existingProduct": gin.H{
				"id":          product.ID,
				"productName": product.ProductName,
				"company":     product.Company,
			},
		})
	default:
		h.respondError(c, err)
	}
}

// GetProduct handles GET /api/v1/products/:barcode
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.registration.Lookup(c.Request.Context(), c.Param("barcode"))
	if errors.Is(err, domain.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"found":   false,
			"error":   "Product not found",
		})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"found":   true,
		"product": product,
	})
}

// ListProducts handles GET /api/v1/products?limit=&offset=
func (h *Handler) ListProducts(c *gin.Context) {
	limit, err := intQuery(c, "limit", usecase.DefaultListLimit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.registration.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": page.Products,
		"pagination": gin.H{
			"total":   page.Total,
			"limit":   page.Limit,
			"offset":  page.Offset,
			"hasMore": page.HasMore,
		},
	})
}

// respondError maps domain errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrRegistryUnavailable):
		status = http.StatusServiceUnavailable
		message = "Product registry is temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	}
	_ = c.Error(err)

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidRequest, name)
	}
	return n, nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrKeywordRequired):
		return "keyword is required"
	case errors.Is(err, usecase.ErrKeywordTooShort):
		return "keyword must be at least 2 characters"
	default:
		return err.Error()
	}
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "barcode":
		return "barcode must be 8 to 13 digits"
	default:
		return fe.Field() + " is invalid"
	}
}

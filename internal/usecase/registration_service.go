package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kepacart/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultListLimit is the page size used when none is requested
	DefaultListLimit = 50
	// MaxListLimit caps the page size
	MaxListLimit = 100
)

// ProductPage is one page of registered products, newest first
type ProductPage struct {
	Products []domain.RegisteredProduct
	Total    int
	Limit    int
	Offset   int
	HasMore  bool
}

// RegistrationService manages products registered by hand for barcodes the marketplace does not know
type RegistrationService struct {
	registry domain.ProductRegistry
	now      domain.Clock
	newID    func() string
	logger   *zap.Logger
}

// NewRegistrationService creates a new registration service. A nil clock uses time.Now.
func NewRegistrationService(registry domain.ProductRegistry, clock domain.Clock, logger *zap.Logger) *RegistrationService {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		registry: registry,
		now:      clock,
		newID:    uuid.NewString,
		logger:   logger.Named("registration"),
	}
}

// Register stores a new product. Registering a known barcode returns the
// existing product together with ErrDuplicateBarcode.
func (s *RegistrationService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisteredProduct, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}

	product := &domain.RegisteredProduct{
		Barcode:     strings.TrimSpace(req.Barcode),
		ProductName: strings.TrimSpace(req.ProductName),
		Company:     strings.TrimSpace(req.Company),
		Country:     strings.TrimSpace(req.Country),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product.ID = s.newID()
	product.RegisteredAt = now
	product.UpdatedAt = now

	existing, inserted, err := s.registry.InsertIfAbsent(ctx, product)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return existing, domain.ErrDuplicateBarcode
	}

	s.logger.Info("product registered",
		zap.String("id", product.ID),
		zap.String("barcode", product.Barcode),
		zap.String("product_name", product.ProductName))
	return product, nil
}

// Lookup returns the product registered under barcode
func (s *RegistrationService) Lookup(ctx context.Context, barcode string) (*domain.RegisteredProduct, error) {
	barcode = strings.TrimSpace(barcode)
	if !IsBarcode(barcode) {
		return nil, fmt.Errorf("%w: barcode must be 8 to 13 digits", domain.ErrInvalidRequest)
	}
	return s.registry.Get(ctx, barcode)
}

// List returns a page of registered products. Non-positive limits use the default.
func (s *RegistrationService) List(ctx context.Context, offset, limit int) (*ProductPage, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, total, err := s.registry.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.RegisteredProduct{}
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+len(products) < total,
	}, nil
}

func validateProduct(p *domain.RegisteredProduct) error {
	switch {
	case p.Barcode == "":
		return fmt.Errorf("%w: barcode is required", domain.ErrInvalidRequest)
	case !IsBarcode(p.Barcode):
		return fmt.Errorf("%w: barcode must be 8 to 13 digits", domain.ErrInvalidRequest)
	case p.ProductName == "":
		return fmt.Errorf("%w: productName is required", domain.ErrInvalidRequest)
	case p.Company == "":
		return fmt.Errorf("%w: company is required", domain.ErrInvalidRequest)
	case p.Country == "":
		return fmt.Errorf("%w: country is required", domain.ErrInvalidRequest)
	case p.Category == "":
		return fmt.Errorf("%w: category is required", domain.ErrInvalidRequest)
	}
	return nil
}

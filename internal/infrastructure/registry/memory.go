package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/kepacart/backend/internal/domain"
)

// MemoryRegistry is a thread-safe in-memory product registry.
// Contents are lost on restart.
type MemoryRegistry struct {
	data  map[string]domain.RegisteredProduct
	order []string // barcodes in insertion order
	mutex sync.RWMutex
}

// NewMemoryRegistry creates a new in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		data: make(map[string]domain.RegisteredProduct),
	}
}

// Get retrieves a product by barcode
func (r *MemoryRegistry) Get(ctx context.Context, barcode string) (*domain.RegisteredProduct, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	product, exists := r.data[barcode]
	if !exists {
		return nil, domain.ErrProductNotFound
	}
	return &product, nil
}

// InsertIfAbsent stores product unless its barcode is already registered
func (r *MemoryRegistry) InsertIfAbsent(ctx context.Context, product *domain.RegisteredProduct) (*domain.RegisteredProduct, bool, error) {
	if product == nil {
		return nil, false, domain.ErrInvalidRequest
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, exists := r.data[product.Barcode]; exists {
		return &existing, false, nil
	}

	r.data[product.Barcode] = *product
	r.order = append(r.order, product.Barcode)

	stored := *product
	return &stored, true, nil
}

// List returns products ordered by registration time, newest first
func (r *MemoryRegistry) List(ctx context.Context, offset, limit int) ([]domain.RegisteredProduct, int, error) {
	r.mutex.RLock()
	all := make([]domain.RegisteredProduct, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		all = append(all, r.data[r.order[i]])
	}
	r.mutex.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RegisteredAt.After(all[j].RegisteredAt)
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []domain.RegisteredProduct{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Size returns the number of registered products
func (r *MemoryRegistry) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.data)
}

// Clear removes all products
func (r *MemoryRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.data = make(map[string]domain.RegisteredProduct)
	r.order = nil
}

var _ domain.ProductRegistry = (*MemoryRegistry)(nil)

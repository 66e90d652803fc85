package domain

import (
	"context"
	"time"
)

// MarketplaceClient defines the interface for the external marketplace search API
type MarketplaceClient interface {
	SearchProducts(ctx context.Context, keyword string, limit int) ([]Candidate, error)
}

// Scorer measures textual similarity between a query and a candidate name.
// Implementations must be pure and return values in [0, 1].
type Scorer interface {
	Score(query, text string) float64
}

// ProductRegistry stores manually registered products keyed by barcode
type ProductRegistry interface {
	Get(ctx context.Context, barcode string) (*RegisteredProduct, error)
	// InsertIfAbsent stores product unless its barcode exists, in which case
	// the existing product is returned with inserted == false.
	InsertIfAbsent(ctx context.Context, product *RegisteredProduct) (existing *RegisteredProduct, inserted bool, err error)
	// List returns products newest first along with the total count.
	List(ctx context.Context, offset, limit int) ([]RegisteredProduct, int, error)
}

// Clock supplies the current time
type Clock func() time.Time

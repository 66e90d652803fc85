package coupang

import (
	"strings"

	"github.com/kepacart/backend/internal/domain"
)

// MapToCandidates converts a search response into domain candidates.
// Listings without a name are dropped since they cannot be scored.
func MapToCandidates(resp *SearchResponse) []domain.Candidate {
	if resp == nil || resp.Data == nil {
		return []domain.Candidate{}
	}

	candidates := make([]domain.Candidate, 0, len(resp.Data.ProductData))
	for _, item := range resp.Data.ProductData {
		name := strings.TrimSpace(item.ProductName)
		if name == "" {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			ID:             item.ProductID.String(),
			Name:           name,
			Price:          item.ProductPrice,
			ImageURL:       item.ProductImage,
			Link:           item.ProductURL,
			StoreName:      domain.StoreCoupang,
			CategoryName:   item.CategoryName,
			IsRocket:       item.IsRocket,
			IsFreeShipping: item.IsFreeShipping,
		})
	}
	return candidates
}

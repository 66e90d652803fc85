package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kepacart/backend/internal/domain"
	"go.uber.org/zap"
)

// User-facing messages attached to empty result sets
const (
	MsgSearchFailed        = "Failed to fetch search results. Please try again."
	MsgSearchTimeout       = "The search took too long. Please try again."
	MsgSearchCancelled     = "The search was cancelled."
	MsgSearchNotConfigured = "Search is not available right now."
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	SearchLimit         int
	Timeout             time.Duration
	SimilarityThreshold float64
	MinResults          int
	EnableDebugLogging  bool
}

// SearchService turns a scanned barcode or typed keyword into relevant marketplace listings
type SearchService struct {
	client       domain.MarketplaceClient
	registry     domain.ProductRegistry
	preprocessor *QueryPreprocessor
	filter       *RelevanceFilter
	searchLimit  int
	timeout      time.Duration
	logger       *zap.Logger
}

// NewSearchService creates a new search service. registry may be nil.
func NewSearchService(
	client domain.MarketplaceClient,
	registry domain.ProductRegistry,
	config SearchServiceConfig,
	logger *zap.Logger,
) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}

	searchLimit := config.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 10
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &SearchService{
		client:       client,
		registry:     registry,
		preprocessor: NewQueryPreprocessor(config.EnableDebugLogging, logger),
		filter: NewRelevanceFilter(NewBigramScorer(), RelevanceConfig{
			SimilarityThreshold: config.SimilarityThreshold,
			MinResults:          config.MinResults,
			EnableDebugLogging:  config.EnableDebugLogging,
		}, logger),
		searchLimit: searchLimit,
		timeout:     timeout,
		logger:      logger.Named("search"),
	}
}

// Preprocessor exposes the keyword rules so callers can validate at the boundary
func (s *SearchService) Preprocessor() *QueryPreprocessor {
	return s.preprocessor
}

// Search looks up keyword on the marketplace and returns the relevant listings.
// Flow: normalize -> resolve registered barcode -> marketplace search -> relevance filter.
// It never fails: upstream problems produce an empty result set carrying a message.
func (s *SearchService) Search(ctx context.Context, keyword string) *domain.ResultSet {
	keyword = strings.TrimSpace(keyword)

	query := s.preprocessor.Normalize(keyword)
	if query == "" {
		return domain.NewResultSet(keyword, nil)
	}

	searchTerm := s.resolveSearchTerm(ctx, query)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.client.SearchProducts(ctx, searchTerm, s.searchLimit)
	if err != nil {
		msg := s.failureMessage(ctx, err)
		s.logger.Warn("marketplace search failed",
			zap.String("keyword", keyword),
			zap.String("search_term", searchTerm),
			zap.Error(err))
		return domain.EmptyResultSet(keyword, msg)
	}

	result := s.filter.Assemble(searchTerm, candidates)
	result.Keyword = keyword

	s.logger.Info("search completed",
		zap.String("keyword", keyword),
		zap.Int("upstream_count", len(candidates)),
		zap.Int("total_count", result.TotalCount))

	return result
}

// resolveSearchTerm swaps a scanned barcode for its registered product name, if any
func (s *SearchService) resolveSearchTerm(ctx context.Context, query string) string {
	if s.registry == nil || !IsBarcode(query) {
		return query
	}

	product, err := s.registry.Get(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Warn("registry lookup failed", zap.String("barcode", query), zap.Error(err))
		}
		return query
	}

	term := product.ProductName
	if product.Company != "" && !strings.Contains(term, product.Company) {
		term = product.Company + " " + term
	}

	s.logger.Debug("barcode resolved from registry",
		zap.String("barcode", query),
		zap.String("search_term", term))
	return s.preprocessor.Normalize(term)
}

func (s *SearchService) failureMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, domain.ErrSigningKeyMissing):
		return MsgSearchNotConfigured
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return MsgSearchTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return MsgSearchCancelled
	default:
		return MsgSearchFailed
	}
}

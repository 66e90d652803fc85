package usecase

import (
	"sort"

	"github.com/kepacart/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultSimilarityThreshold is the minimum score a listing needs under normal filtering
	DefaultSimilarityThreshold = 0.3
	// DefaultMinResults is how many listings the fallback tries to guarantee
	DefaultMinResults = 3

	debugTopN = 5
)

// RelevanceConfig holds configuration for the relevance filter
type RelevanceConfig struct {
	SimilarityThreshold float64
	MinResults          int
	EnableDebugLogging  bool
}

// RelevanceFilter scores marketplace listings against a query and keeps the relevant ones
type RelevanceFilter struct {
	scorer             domain.Scorer
	threshold          float64
	minResults         int
	enableDebugLogging bool
	logger             *zap.Logger
}

// NewRelevanceFilter creates a filter; non-positive settings fall back to defaults
func NewRelevanceFilter(scorer domain.Scorer, config RelevanceConfig, logger *zap.Logger) *RelevanceFilter {
	if scorer == nil {
		scorer = NewBigramScorer()
	}
	threshold := config.SimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	minResults := config.MinResults
	if minResults <= 0 {
		minResults = DefaultMinResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RelevanceFilter{
		scorer:             scorer,
		threshold:          threshold,
		minResults:         minResults,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger.Named("relevance"),
	}
}

// Rank scores every candidate and sorts by descending score, keeping upstream order on ties
func (f *RelevanceFilter) Rank(query string, candidates []domain.Candidate) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.ScoredCandidate{
			Candidate: c,
			Score:     f.scorer.Score(query, c.Name),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Filter returns the relevant candidates in descending score order.
//
// Candidates scoring at least the threshold are kept. When fewer than MinResults
// pass but at least MinResults candidates exist, the top MinResults by score are
// returned instead, skipping any candidate that shares nothing with the query.
func (f *RelevanceFilter) Filter(query string, candidates []domain.Candidate) []domain.Candidate {
	if len(candidates) == 0 {
		return []domain.Candidate{}
	}

	scored := f.Rank(query, candidates)

	passed := 0
	for passed < len(scored) && scored[passed].Score >= f.threshold {
		passed++
	}

	selected := scored[:passed]
	fallback := false
	if passed < f.minResults && len(scored) >= f.minResults {
		n := 0
		for n < f.minResults && scored[n].Score > 0 {
			n++
		}
		if n > passed {
			selected = scored[:n]
			fallback = true
		}
	}

	if f.enableDebugLogging {
		f.logScores(query, scored, len(selected), fallback)
	}

	result := make([]domain.Candidate, len(selected))
	for i, sc := range selected {
		result[i] = sc.Candidate
	}
	return result
}

// Assemble filters candidates and wraps them in a result set for query
func (f *RelevanceFilter) Assemble(query string, candidates []domain.Candidate) *domain.ResultSet {
	return domain.NewResultSet(query, f.Filter(query, candidates))
}

func (f *RelevanceFilter) logScores(query string, scored []domain.ScoredCandidate, kept int, fallback bool) {
	top := scored
	if len(top) > debugTopN {
		top = top[:debugTopN]
	}
	for i, sc := range top {
		f.logger.Debug("candidate score",
			zap.Int("rank", i+1),
			zap.String("name", sc.Candidate.Name),
			zap.Float64("score", sc.Score))
	}
	f.logger.Debug("relevance filter applied",
		zap.String("query", query),
		zap.Int("before", len(scored)),
		zap.Int("after", kept),
		zap.Float64("threshold", f.threshold),
		zap.Bool("fallback", fallback))
}

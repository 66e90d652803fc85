package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kepacart/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinKeywordLength is the shortest keyword accepted at the boundary, in characters
	MinKeywordLength = 2
	// maxKeywordLength caps what is forwarded upstream, in characters
	maxKeywordLength = 100
)

var (
	multiSpacePattern = regexp.MustCompile(`\s+`)
	barcodePattern    = regexp.MustCompile(`^\d{8,13}$`)
)

var (
	// ErrKeywordRequired is returned for an empty keyword
	ErrKeywordRequired = fmt.Errorf("%w: keyword is required", domain.ErrInvalidRequest)
	// ErrKeywordTooShort is returned for keywords under MinKeywordLength characters
	ErrKeywordTooShort = fmt.Errorf("%w: keyword must be at least %d characters", domain.ErrInvalidRequest, MinKeywordLength)
)

// QueryPreprocessor cleans raw scanner or keyboard input before it is searched
type QueryPreprocessor struct {
	enableDebugLogging bool
	logger             *zap.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(enableDebugLogging bool, logger *zap.Logger) *QueryPreprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryPreprocessor{
		enableDebugLogging: enableDebugLogging,
		logger:             logger.Named("preprocess"),
	}
}

// Normalize folds width variants, collapses whitespace and caps the keyword length
func (p *QueryPreprocessor) Normalize(keyword string) string {
	if keyword == "" {
		return ""
	}

	cleaned := norm.NFKC.String(keyword)
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if utf8.RuneCountInString(cleaned) > maxKeywordLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxKeywordLength])
		// Cut at a word boundary when one is reasonably close
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > 0 && utf8.RuneCountInString(cleaned[:lastSpace]) > maxKeywordLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	if p.enableDebugLogging && cleaned != keyword {
		p.logger.Debug("keyword normalized", zap.String("input", keyword), zap.String("output", cleaned))
	}

	return cleaned
}

// Validate checks a keyword against the boundary rules
func (p *QueryPreprocessor) Validate(keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ErrKeywordRequired
	}
	if utf8.RuneCountInString(keyword) < MinKeywordLength {
		return ErrKeywordTooShort
	}
	return nil
}

// IsBarcode reports whether s looks like an EAN/UPC barcode (8 to 13 digits)
func IsBarcode(s string) bool {
	return barcodePattern.MatchString(s)
}

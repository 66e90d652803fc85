package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// punctuationRegex matches anything that is not a letter, digit or space in any script
var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Weights of the three similarity signals; they sum to 1 so the score stays in [0, 1]
const (
	queryCoverageWeight = 0.60 // how much of the query appears in the listing name
	textCoverageWeight  = 0.20 // how much of the listing name appears in the query
	wholeStringWeight   = 0.20 // bigram overlap of the whole strings
)

// BigramScorer scores text by rune-bigram Dice overlap, token by token and as a whole
type BigramScorer struct{}

// NewBigramScorer creates the default similarity scorer
func NewBigramScorer() *BigramScorer {
	return &BigramScorer{}
}

// Score returns the similarity of query and text in [0, 1].
// Identical strings (ignoring case, width and punctuation) score 1.
func (s *BigramScorer) Score(query, text string) float64 {
	if strings.EqualFold(query, text) {
		return 1.0
	}

	queryTokens := tokenize(query)
	textTokens := tokenize(text)
	if len(queryTokens) == 0 || len(textTokens) == 0 {
		return 0
	}

	queryJoined := strings.Join(queryTokens, "")
	textJoined := strings.Join(textTokens, "")
	if queryJoined == textJoined {
		return 1.0
	}

	score := queryCoverageWeight*coverage(queryTokens, textTokens) +
		textCoverageWeight*coverage(textTokens, queryTokens) +
		wholeStringWeight*diceCoefficient(queryJoined, textJoined)

	if score > 1 {
		score = 1
	}
	return score
}

// normalizeText folds width variants (NFKC), lower-cases and strips punctuation
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return punctuationRegex.ReplaceAllString(s, " ")
}

// tokenize splits normalized text on whitespace
func tokenize(s string) []string {
	return strings.Fields(normalizeText(s))
}

// coverage is the mean, over tokens in from, of the best Dice match in to
func coverage(from, to []string) float64 {
	if len(from) == 0 {
		return 0
	}
	var total float64
	for _, f := range from {
		best := 0.0
		for _, t := range to {
			if d := diceCoefficient(f, t); d > best {
				best = d
				if best == 1 {
					break
				}
			}
		}
		total += best
	}
	return total / float64(len(from))
}

// diceCoefficient compares the rune-bigram multisets of a and b
func diceCoefficient(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := string(rb[i : i+2])
		if bigrams[bg] > 0 {
			bigrams[bg]--
			intersection++
		}
	}

	return 2.0 * float64(intersection) / float64(len(ra)+len(rb)-2)
}

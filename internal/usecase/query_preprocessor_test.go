package usecase

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kepacart/backend/internal/domain"
)

func TestNewQueryPreprocessor(t *testing.T) {
	t.Run("creates preprocessor with debug logging disabled", func(t *testing.T) {
		p := NewQueryPreprocessor(false, nil)
		if p.enableDebugLogging {
			t.Error("expected debug logging to be disabled")
		}
	})

	t.Run("creates preprocessor with debug logging enabled", func(t *testing.T) {
		p := NewQueryPreprocessor(true, nil)
		if !p.enableDebugLogging {
			t.Error("expected debug logging to be enabled")
		}
	})
}

func TestNormalize(t *testing.T) {
	p := NewQueryPreprocessor(true, nil)

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   \t ", want: ""},
		{name: "trims", input: "  우유  ", want: "우유"},
		{name: "collapses inner whitespace", input: "서울  우유\t1L", want: "서울 우유 1L"},
		{name: "folds full width", input: "ＴＶ　５５", want: "TV 55"},
		{name: "keeps barcode digits", input: " 8801115114154 ", want: "8801115114154"},
		{name: "keeps case", input: "Galaxy Buds", want: "Galaxy Buds"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeCapsLength(t *testing.T) {
	p := NewQueryPreprocessor(false, nil)

	t.Run("cuts at word boundary", func(t *testing.T) {
		input := strings.Repeat("우유 ", 60)
		got := p.Normalize(input)
		if n := utf8.RuneCountInString(got); n > maxKeywordLength {
			t.Errorf("length = %d, want <= %d", n, maxKeywordLength)
		}
		if strings.HasSuffix(got, " ") {
			t.Errorf("Normalize() left trailing space: %q", got)
		}
	})

	t.Run("hard cut without spaces", func(t *testing.T) {
		input := strings.Repeat("가", 150)
		got := p.Normalize(input)
		if n := utf8.RuneCountInString(got); n != maxKeywordLength {
			t.Errorf("length = %d, want %d", n, maxKeywordLength)
		}
	})
}

func TestValidate(t *testing.T) {
	p := NewQueryPreprocessor(false, nil)

	testCases := []struct {
		name    string
		keyword string
		wantErr error
	}{
		{name: "empty", keyword: "", wantErr: ErrKeywordRequired},
		{name: "spaces only", keyword: "   ", wantErr: ErrKeywordRequired},
		{name: "one character", keyword: "우", wantErr: ErrKeywordTooShort},
		{name: "one character padded", keyword: " a ", wantErr: ErrKeywordTooShort},
		{name: "two hangul characters", keyword: "우유", wantErr: nil},
		{name: "barcode", keyword: "8801115114154", wantErr: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := p.Validate(tc.keyword)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tc.keyword, err, tc.wantErr)
			}
			if tc.wantErr != nil && !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("Validate(%q) error should wrap ErrInvalidRequest", tc.keyword)
			}
		})
	}
}

func TestIsBarcode(t *testing.T) {
	testCases := map[string]bool{
		"8801115114154":  true,
		"12345678":       true,
		"1234567":        false,
		"12345678901234": false,
		"880111511415a":  false,
		"우유":             false,
		"":               false,
	}

	for input, want := range testCases {
		if got := IsBarcode(input); got != want {
			t.Errorf("IsBarcode(%q) = %v, want %v", input, got, want)
		}
	}
}

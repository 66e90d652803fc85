package coupang

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kepacart/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	client := NewClient(ClientConfig{
		AccessKey: "test-access",
		SecretKey: "test-secret",
		BaseURL:   baseURL,
	}, zap.NewNop())
	client.backoff = func(int) time.Duration { return time.Millisecond }
	return client
}

func writeSearchResponse(t *testing.T, w http.ResponseWriter, items ...ProductData) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(SearchResponse{
		RCode: "0",
		Data:  &SearchData{ProductData: items},
	})
	require.NoError(t, err)
}

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{AccessKey: "ak", SecretKey: "sk"}, nil)

	assert.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultAPIPath, client.apiPath)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient(ClientConfig{}, nil)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestSearchURL(t *testing.T) {
	t.Run("encodes keyword", func(t *testing.T) {
		got := SearchURL(DefaultAPIPath, "우유", 10)
		assert.Equal(t, testPath+"?"+testQuery, got)
	})

	t.Run("encodes spaces as %20", func(t *testing.T) {
		got := SearchURL("/v1", "서울 우유", 5)
		assert.Equal(t, "/v1/products/search?keyword=%EC%84%9C%EC%9A%B8%20%EC%9A%B0%EC%9C%A0&limit=5", got)
	})

	t.Run("escapes reserved characters", func(t *testing.T) {
		got := SearchURL("/v1", "a&b=c", 1)
		assert.Equal(t, "/v1/products/search?keyword=a%26b%3Dc&limit=1", got)
	})
}

func TestSearchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, DefaultAPIPath+"/products/search", r.URL.Path)
		assert.Equal(t, testQuery, r.URL.RawQuery)
		assert.Equal(t, "우유", r.URL.Query().Get("keyword"))

		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "CEA algorithm=HmacSHA256, access-key=test-access, signed-date="))
		assert.Contains(t, auth, ", signature=")

		writeSearchResponse(t, w, ProductData{ProductID: "1", ProductName: "서울우유 1L"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "우유", 10)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)
	assert.Equal(t, "서울우유 1L", result[0].Name)
}

func TestSearchProducts_SignatureMatchesSentRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		signedDate := between(auth, "signed-date=", ",")
		signature := auth[strings.Index(auth, "signature=")+len("signature="):]

		want := Signature("test-secret", signedDate, r.Method, r.URL.Path, r.URL.RawQuery)
		assert.Equal(t, want, signature)

		writeSearchResponse(t, w)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SearchProducts(context.Background(), "서울 우유 1L", 10)
	require.NoError(t, err)
}

func TestSearchProducts_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSearchResponse(t, w)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "empty-results", 10)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestSearchProducts_MissingKeys(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{AccessKey: "ak", BaseURL: server.URL}, nil)

	result, err := client.SearchProducts(context.Background(), "우유", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSigningKeyMissing)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestSearchProducts_ServerError_Retries(t *testing.T) {
	var attempts int32
	var dates []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dates = append(dates, between(r.Header.Get("Authorization"), "signed-date=", ","))
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeSearchResponse(t, w, ProductData{ProductID: "123", ProductName: "Success after retry"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "retry-test", 10)

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Len(t, dates, 3)
}

func TestSearchProducts_ClientError_NoRetry(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "bad-request", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMarketplaceAPIFailure)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestSearchProducts_TooManyRequests_Retries(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeSearchResponse(t, w, ProductData{ProductID: "456", ProductName: "Success after rate limit"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "rate-limit-test", 10)

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestSearchProducts_AllRetriesFail(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "all-fail", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMarketplaceAPIFailure)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestSearchProducts_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "invalid-json", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMarketplaceAPIFailure)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestSearchProducts_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rCode":"400","rMessage":"Invalid signature"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.SearchProducts(context.Background(), "우유", 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMarketplaceAPIFailure)
	assert.Contains(t, err.Error(), "Invalid signature")
}

func TestSearchProducts_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := client.SearchProducts(ctx, "timeout-test", 10)

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestSearchProducts_DefaultLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		writeSearchResponse(t, w)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SearchProducts(context.Background(), "우유", 0)
	require.NoError(t, err)
}

func TestSearchProducts_RequestCreationError(t *testing.T) {
	client := newTestClient("://invalid-url")

	result, err := client.SearchProducts(context.Background(), "test", 10)

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader("short content"), 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader(strings.Repeat("0123456789", 100)), 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}

func TestDebugLog(t *testing.T) {
	client := NewClient(ClientConfig{}, zap.NewNop())

	client.debug = false
	client.debugLog("test message", zap.String("k", "v"))

	client.debug = true
	client.debugLog("test message", zap.String("k", "v"))
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i < 0 {
		return ""
	}
	s = s[i+len(start):]
	if j := strings.Index(s, end); j >= 0 {
		return s[:j]
	}
	return s
}

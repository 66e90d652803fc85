package coupang

import (
	"encoding/json"
	"testing"

	"github.com/kepacart/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToCandidates(t *testing.T) {
	t.Run("nil response yields empty slice", func(t *testing.T) {
		got := MapToCandidates(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("missing data yields empty slice", func(t *testing.T) {
		got := MapToCandidates(&SearchResponse{RCode: "0"})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("maps fields from payload", func(t *testing.T) {
		payload := `{
			"rCode": "0",
			"rMessage": "",
			"data": {
				"landingUrl": "https://link.coupang.com/re/AFFSRP?lptag=AF1234567",
				"productData": [
					{"productId": 7031523, "productName": "서울우유 1L", "productPrice": 2500,
					 "productImage": "https://static.coupangcdn.com/a.jpg",
					 "productUrl": "https://link.coupang.com/re/AFFSDP?pageKey=7031523",
					 "categoryName": "우유", "isRocket": true, "isFreeShipping": false, "rank": 1},
					{"productId": "88", "productName": "   ", "productPrice": 100}
				]
			}
		}`

		var resp SearchResponse
		require.NoError(t, json.Unmarshal([]byte(payload), &resp))

		got := MapToCandidates(&resp)

		require.Len(t, got, 1)
		assert.Equal(t, "7031523", got[0].ID)
		assert.Equal(t, "서울우유 1L", got[0].Name)
		assert.True(t, decimal.NewFromInt(2500).Equal(got[0].Price))
		assert.Equal(t, "https://static.coupangcdn.com/a.jpg", got[0].ImageURL)
		assert.Equal(t, "https://link.coupang.com/re/AFFSDP?pageKey=7031523", got[0].Link)
		assert.Equal(t, domain.StoreCoupang, got[0].StoreName)
		assert.Equal(t, "우유", got[0].CategoryName)
		assert.True(t, got[0].IsRocket)
	})
}

func TestSearchResponse_IsSuccess(t *testing.T) {
	assert.True(t, (&SearchResponse{RCode: "0"}).IsSuccess())
	assert.True(t, (&SearchResponse{}).IsSuccess())
	assert.False(t, (&SearchResponse{RCode: "400", RMessage: "Invalid signature"}).IsSuccess())
}

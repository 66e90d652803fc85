package coupang

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// successCode is the rCode the API returns for a successful call
const successCode = "0"

// SearchResponse is the envelope returned by the products/search endpoint
type SearchResponse struct {
	RCode    string      `json:"rCode"`
	RMessage string      `json:"rMessage"`
	Data     *SearchData `json:"data"`
}

// SearchData holds the listing payload
type SearchData struct {
	LandingURL  string        `json:"landingUrl"`
	ProductData []ProductData `json:"productData"`
}

// ProductData is a single marketplace listing
type ProductData struct {
	ProductID      json.Number     `json:"productId"`
	ProductName    string          `json:"productName"`
	ProductPrice   decimal.Decimal `json:"productPrice"`
	ProductImage   string          `json:"productImage"`
	ProductURL     string          `json:"productUrl"`
	CategoryName   string          `json:"categoryName"`
	Keyword        string          `json:"keyword"`
	Rank           int             `json:"rank"`
	IsRocket       bool            `json:"isRocket"`
	IsFreeShipping bool            `json:"isFreeShipping"`
}

// IsSuccess reports whether the envelope signals success
func (r *SearchResponse) IsSuccess() bool {
	return r.RCode == "" || r.RCode == successCode
}

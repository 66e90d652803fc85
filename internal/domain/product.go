package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// StoreCoupang is the source label attached to marketplace listings
const StoreCoupang = "coupang"

// Candidate is one listing returned by the marketplace search API
type Candidate struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Link           string          `json:"link,omitempty"`
	StoreName      string          `json:"storeName,omitempty"`
	CategoryName   string          `json:"categoryName,omitempty"`
	IsRocket       bool            `json:"isRocket,omitempty"`
	IsFreeShipping bool            `json:"isFreeShipping,omitempty"`
}

// MarshalJSON writes the price as a JSON number rather than decimal's quoted string
func (c Candidate) MarshalJSON() ([]byte, error) {
	type plain Candidate
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain(c), json.Number(c.Price.String())})
}

// ScoredCandidate pairs a candidate with its similarity to the query.
// It never leaves the relevance filter.
type ScoredCandidate struct {
	Candidate Candidate
	Score     float64
}

// ResultSet is the answer to a single keyword query
type ResultSet struct {
	Keyword    string      `json:"keyword"`
	Products   []Candidate `json:"products"`
	TotalCount int         `json:"totalCount"`
	Error      string      `json:"error,omitempty"`
}

// NewResultSet builds a result set whose count always matches its products
func NewResultSet(keyword string, products []Candidate) *ResultSet {
	if products == nil {
		products = []Candidate{}
	}
	return &ResultSet{
		Keyword:    keyword,
		Products:   products,
		TotalCount: len(products),
	}
}

// EmptyResultSet is returned whenever no upstream data is available
func EmptyResultSet(keyword, message string) *ResultSet {
	rs := NewResultSet(keyword, nil)
	rs.Error = message
	return rs
}

// RegisteredProduct is a product entered manually for a barcode the marketplace does not know
type RegisteredProduct struct {
	ID           string    `json:"id"`
	Barcode      string    `json:"barcode"`
	ProductName  string    `json:"productName"`
	Company      string    `json:"company"`
	Country      string    `json:"country"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	RegisteredAt time.Time `json:"registeredAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterRequest carries the fields accepted by product registration
type RegisterRequest struct {
	Barcode     string `json:"barcode" binding:"required,barcode"`
	ProductName string `json:"productName" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Country     string `json:"country" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description,omitempty"`
}

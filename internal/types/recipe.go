package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Recipe represents a recipe in its normalized form
type Recipe struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Instructions string   `json:"instructions"`
	Category     *string  `json:"category,omitempty"`
	PrepTime     Quantity `json:"prep_time"`
	CookTime     Quantity `json:"cook_time"`
	Servings     Quantity `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	ImageURL     string   `json:"image_url"`
}

// Quantity is a numeric recipe attribute (minutes, servings, totals).
// The upstream sends these either as JSON numbers or as numeric strings.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	// Try to unmarshal as number first
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*q = Quantity(num)
		return nil
	}

	// Try to unmarshal as string
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		str = strings.TrimSpace(str)
		if str == "" {
			*q = 0
			return nil
		}
		num, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid quantity %q", str)
		}
		*q = Quantity(num)
		return nil
	}

	if string(data) == "null" {
		*q = 0
		return nil
	}

	return fmt.Errorf("invalid quantity format")
}

// ListQuery holds the listing parameters forwarded to the upstream service.
// Values are copied verbatim; no numeric or range validation is applied.
type ListQuery struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	Category string `form:"category"`
	SortBy   string `form:"sortBy"`
	Order    string `form:"order"`
}

const (
	DefaultPage  = "1"
	DefaultLimit = "10"
	DefaultOrder = "asc"
)

// WithDefaults returns a copy of q with page, limit and order defaulted
func (q ListQuery) WithDefaults() ListQuery {
	if q.Page == "" {
		q.Page = DefaultPage
	}
	if q.Limit == "" {
		q.Limit = DefaultLimit
	}
	if q.Order == "" {
		q.Order = DefaultOrder
	}
	return q
}

// SearchRequest represents the request body for a keyword search
type SearchRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// ListRecipesResponse is the envelope returned by the listing endpoint
type ListRecipesResponse struct {
	Recipes    []Recipe        `json:"recipes"`
	Pagination json.RawMessage `json:"pagination"`
	Total      Quantity        `json:"total"`
}

package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog item as returned by the remote shop API.
type Product struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Rating      Rating `json:"rating"`
}

// Price decodes leniently: a JSON number or a numeric string. Anything else
// (null, missing, garbage) decodes to zero so it never breaks a cart total.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Price(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, errParse := strconv.ParseFloat(strings.TrimSpace(s), 64); errParse == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*p = Price(v)
			return nil
		}
	}
	*p = 0
	return nil
}

func (p Price) Float64() float64 {
	return float64(p)
}

func (p Price) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(p))
}

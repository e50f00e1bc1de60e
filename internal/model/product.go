package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are exchanged as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrNonPositivePrice is returned when a discount is computed against an
// original price that is zero or negative.
var ErrNonPositivePrice = errors.New("original price must be greater than zero")

var hundred = decimal.NewFromInt(100)

// Product is a catalog entry belonging to exactly one business.
type Product struct {
	ID                  uint64          `json:"id"`                    // products.id
	Name                string          `json:"name"`                  // products.name
	Category            string          `json:"category"`              // products.category
	OriginalPrice       decimal.Decimal `json:"original_price"`        // products.original_price
	NewPrice            decimal.Decimal `json:"new_price"`             // products.new_price
	PercentageDiscount  decimal.Decimal `json:"percentage_discount"`   // products.percentage_discount
	OfferExpirationDate Date            `json:"offer_expiration_date"` // products.offer_expiration_date
	ProductImage        string          `json:"product_image"`         // products.product_image
	DatePublished       time.Time       `json:"date_published"`        // products.date_published
	BusinessID          uint64          `json:"business_id"`           // products.business_id
}

// PercentageDiscount returns (original − new) / original × 100 rounded to two
// decimal places. A raise in price yields a negative discount.
func PercentageDiscount(original, newPrice decimal.Decimal) (decimal.Decimal, error) {
	if !original.IsPositive() {
		return decimal.Zero, ErrNonPositivePrice
	}
	return original.Sub(newPrice).Div(original).Mul(hundred).Round(2), nil
}

// ApplyDiscount recomputes PercentageDiscount from the current prices.
func (p *Product) ApplyDiscount() error {
	d, err := PercentageDiscount(p.OriginalPrice, p.NewPrice)
	if err != nil {
		return err
	}
	p.PercentageDiscount = d
	return nil
}

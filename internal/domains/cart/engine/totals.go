package engine

import (
	"storefront-backend/internal/domains/cart/model"

	"github.com/shopspring/decimal"
)

var (
	taxRate        = decimal.RequireFromString(model.TaxRate)
	discount20Off  = decimal.RequireFromString(model.DiscountAmount20Off)
	moneyPrecision = int32(model.MoneyPlaces)
)

// ComputeTotals prices items against prices.
//
//	subTotal = Σ quantity × price          (not rounded)
//	tax      = round2(subTotal × 0.10)
//	total    = round2(subTotal + tax − discount), never below 0
//
// Items missing from prices contribute nothing.
func ComputeTotals(items []model.LineItem, prices model.PriceBook, discountAmount decimal.Decimal) model.Totals {
	subTotal := decimal.Zero
	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			continue
		}
		subTotal = subTotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax := subTotal.Mul(taxRate).Round(moneyPrecision)

	total := subTotal.Add(tax).Sub(discountAmount).Round(moneyPrecision)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return model.Totals{
		SubTotal:       subTotal,
		Tax:            tax,
		DiscountAmount: discountAmount,
		Total:          total,
	}
}

// ApplyDiscount resolves a discount code to its amount.
func ApplyDiscount(code string) (decimal.Decimal, error) {
	if code != model.DiscountCode20Off {
		return decimal.Zero, model.ErrInvalidDiscountCode
	}
	return discount20Off, nil
}

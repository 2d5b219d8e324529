package sales

import "github.com/shopspring/decimal"

// PriceLine snapshots a product's current unit price into a line and computes
// its subtotal. Pure: the caller is responsible for supplying a
// transaction-consistent price.
func PriceLine(unitPrice decimal.Decimal, quantity int) (unitPriceAtSale, subtotal decimal.Decimal) {
	unitPriceAtSale = unitPrice.Round(2)
	subtotal = unitPriceAtSale.Mul(decimal.NewFromInt(int64(quantity)))
	return unitPriceAtSale, subtotal
}

package sniper

import (
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

var oneHundred = decimal.NewFromInt(100)

// OrderPlan is the rounded price and quantity for one submission attempt.
// Created by BuildPlan, consumed once by the submitter, then discarded.
type OrderPlan struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// BuildPlan computes the target limit price P - P*offset/100 truncated to
// the price precision, and the sell quantity min(desired, balance) when the
// balance is known, truncated to the quantity precision. Truncation always
// rounds down: rounding up would place above the intended discount or sell
// more than is held, and the exchange rejects anything off the tick grid.
// All arithmetic is exact decimal; binary floating point never touches a
// price or quantity.
func BuildPlan(intent TradeIntent, price decimal.Decimal, balance *decimal.Decimal, filters SymbolFilters) (OrderPlan, error) {
	if !price.IsPositive() {
		return OrderPlan{}, fmt.Errorf("market price must be positive, got %s", price)
	}

	discount := price.Mul(intent.OffsetPercent).Div(oneHundred)
	target := price.Sub(discount).RoundDown(filters.PricePrecision)
	if !target.IsPositive() {
		return OrderPlan{}, fmt.Errorf("target price %s truncated to zero at precision %d", price.Sub(discount), filters.PricePrecision)
	}

	quantity := intent.Quantity
	if balance != nil && balance.LessThan(quantity) {
		logger.WithFields(logger.Fields{
			"requested": quantity.String(),
			"balance":   balance.String(),
		}).Warn("Requested quantity exceeds free balance, selling balance")
		quantity = *balance
	}
	quantity = quantity.RoundDown(filters.QuantityPrecision)
	if !quantity.IsPositive() {
		return OrderPlan{}, fmt.Errorf("sell quantity truncated to zero at precision %d", filters.QuantityPrecision)
	}

	logger.WithFields(logger.Fields{
		"marketPrice": price.String(),
		"offsetPct":   intent.OffsetPercent.String(),
		"limitPrice":  target.String(),
		"quantity":    quantity.String(),
	}).Info("Order plan computed")

	return OrderPlan{Price: target, Quantity: quantity}, nil
}

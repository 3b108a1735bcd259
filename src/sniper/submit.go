package sniper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"listingsniper/src/connectors"
	"listingsniper/src/model"
	"listingsniper/src/poll"
)

// OrderHandle identifies the one resting order a successful submission
// produced. Owned by the fill supervisor until a terminal status is
// observed or cancellation succeeds.
type OrderHandle struct {
	Symbol        string
	OrderID       int64
	ClientOrderID string
}

// Submit places the limit sell with bounded retry on transient rejections.
// Each attempt carries a fresh client order ID so that an attempt whose
// outcome is ambiguous (transport failure, 5xx, execution-status-unknown)
// can be reconciled by querying that ID before retrying: if the order
// landed anyway it is adopted instead of placed a second time, keeping at
// most one order on the book. Exhausting the budget is terminal for the
// run; by then no attempt has verifiably placed an order.
func Submit(ctx context.Context, gw Gateway, intent TradeIntent, plan OrderPlan) (*model.Order, error) {
	quantity := plan.Quantity.String()
	price := plan.Price.String()

	var placed *model.Order
	attempt := 0

	err := poll.Until(ctx, poll.Options{
		Interval:    intent.SubmitBackoff,
		MaxAttempts: intent.SubmitAttempts,
		Retryable:   connectors.IsRetryable,
	}, func(ctx context.Context) (bool, error) {
		attempt++
		clientOrderID := "snipe-" + uuid.NewString()

		logger.WithFields(logger.Fields{
			"symbol":   intent.Symbol,
			"attempt":  attempt,
			"attempts": intent.SubmitAttempts,
			"price":    price,
			"quantity": quantity,
		}).Info("Attempting to place order")

		order, err := gw.PlaceLimitSell(ctx, intent.Symbol, quantity, price, clientOrderID)
		if err == nil {
			placed = order
			return true, nil
		}

		logger.WithError(err).WithField("attempt", attempt).Error("Order placement failed")

		if connectors.IsAmbiguousPlacement(err) {
			if adopted := lookupAttempt(ctx, gw, intent.Symbol, clientOrderID); adopted != nil {
				logger.WithFields(logger.Fields{
					"orderId":       adopted.OrderID,
					"clientOrderId": clientOrderID,
				}).Warn("Failed attempt had placed an order, adopting it")
				placed = adopted
				return true, nil
			}
		}
		return false, err
	})
	if err != nil {
		return nil, fmt.Errorf("submit limit sell for %s: %w", intent.Symbol, err)
	}

	logger.WithFields(logger.Fields{
		"symbol":  placed.Symbol,
		"orderId": placed.OrderID,
		"status":  string(placed.Status),
	}).Info("Order placed successfully")
	return placed, nil
}

// lookupAttempt checks whether an ambiguously-failed placement attempt
// actually produced an order. Best effort: a lookup failure other than
// "no such order" only means the ambiguity stands, and the retry loop
// proceeds as if nothing was placed.
func lookupAttempt(ctx context.Context, gw Gateway, symbol, clientOrderID string) *model.Order {
	order, err := gw.QueryOrder(ctx, symbol, 0, clientOrderID)
	if err != nil {
		if !connectors.IsUnknownOrder(err) {
			logger.WithError(err).Warn("Could not verify ambiguous placement attempt")
		}
		return nil
	}
	return order
}

// HandleOf builds the supervisor's handle from a placed order.
func HandleOf(order *model.Order) OrderHandle {
	return OrderHandle{
		Symbol:        order.Symbol,
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
	}
}

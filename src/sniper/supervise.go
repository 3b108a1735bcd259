package sniper

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"listingsniper/src/connectors"
	"listingsniper/src/model"
	"listingsniper/src/poll"
)

// SupervisorState is the fill supervisor's position in its state machine.
type SupervisorState string

const (
	// StatePending: order is resting, polling continues.
	StatePending SupervisorState = "pending"
	// StateTerminalFilled: order filled completely.
	StateTerminalFilled SupervisorState = "terminal_filled"
	// StateTerminalClosed: exchange closed the order (canceled/rejected/expired).
	StateTerminalClosed SupervisorState = "terminal_closed"
	// StateCanceling: timeout cancellation was issued but its outcome is unknown.
	StateCanceling SupervisorState = "canceling"
	// StateCanceled: the order was cancelled, or had already resolved when
	// the cancel arrived (treated the same, see the cancel race below).
	StateCanceled SupervisorState = "canceled"
)

// bestEffortCancelTimeout bounds the detached cancel issued when
// supervision is aborted externally.
const bestEffortCancelTimeout = 5 * time.Second

// SupervisionResult reports how supervision ended and the last order
// payload observed (nil when no successful poll happened).
type SupervisionResult struct {
	State SupervisorState
	Order *model.Order
}

// Supervise polls the order until a terminal status or the timeout, at
// which point it issues exactly one cancellation. The invariant is that
// it never returns normally while the order is both non-terminal and
// un-cancelled: if the surrounding run is aborted while the order may
// still rest, one best-effort cancel on a detached context is attempted
// before the abort propagates. Transient poll errors are logged and
// retried; only cancellation of ctx itself is fatal here.
func Supervise(ctx context.Context, gw Gateway, handle OrderHandle, intent TradeIntent) (*SupervisionResult, error) {
	deadline := time.Now().Add(intent.OrderTimeout)
	result := &SupervisionResult{State: StatePending}

	logger.WithFields(logger.Fields{
		"symbol":  handle.Symbol,
		"orderId": handle.OrderID,
		"timeout": intent.OrderTimeout.String(),
	}).Info("Supervising order until fill or timeout")

	pollErr := poll.Until(ctx, poll.Options{Interval: intent.StatusPollInterval}, func(ctx context.Context) (bool, error) {
		order, err := gw.QueryOrder(ctx, handle.Symbol, handle.OrderID, handle.ClientOrderID)
		if err != nil {
			logger.WithError(err).Warn("Order status poll failed, retrying")
			if time.Now().After(deadline) {
				cancelResting(ctx, gw, handle, result)
				return true, nil
			}
			return false, err
		}

		result.Order = order

		switch {
		case order.Status == model.OrderStatusFilled:
			result.State = StateTerminalFilled
			logger.WithFields(logger.Fields{
				"orderId":     order.OrderID,
				"executedQty": order.ExecutedQty,
			}).Info("Order filled, sale completed")
			return true, nil

		case order.Status.Terminal():
			result.State = StateTerminalClosed
			logger.WithFields(logger.Fields{
				"orderId": order.OrderID,
				"status":  string(order.Status),
			}).Warn("Order closed by exchange without filling")
			return true, nil

		case time.Now().After(deadline):
			logger.WithField("orderId", handle.OrderID).Info("Timeout reached, cancelling order")
			cancelResting(ctx, gw, handle, result)
			return true, nil
		}

		return false, nil
	})
	if pollErr == nil {
		// The timeout cancellation can lose a race against an external
		// abort: the cancel call fails with the context error while the
		// loop itself still concludes normally. Surface the abort so the
		// run never reports success with an unconfirmed order.
		if cerr := ctx.Err(); cerr != nil &&
			result.State != StateTerminalFilled && result.State != StateTerminalClosed {
			return result, cerr
		}
		return result, nil
	}

	// External abort while the order may still be resting: a resting
	// order must not outlive program intent.
	if result.State == StatePending || result.State == StateCanceling {
		detached, stop := context.WithTimeout(context.WithoutCancel(ctx), bestEffortCancelTimeout)
		defer stop()
		logger.WithField("orderId", handle.OrderID).Warn("Supervision aborted, issuing best-effort cancellation")
		cancelResting(detached, gw, handle, result)
	}
	return result, pollErr
}

// cancelResting cancels the supervised order and folds the outcome into
// result. When the cancel itself is aborted by ctx the order is still
// unaccounted for, so one retry is made on a detached short-deadline
// context before giving up. Any other cancel failure is logged and
// supervision stops regardless.
func cancelResting(ctx context.Context, gw Gateway, handle OrderHandle, result *SupervisionResult) {
	result.State = StateCanceling

	err := cancelOnce(ctx, gw, handle, result)
	if err == nil {
		return
	}

	if ctx.Err() != nil {
		detached, stop := context.WithTimeout(context.WithoutCancel(ctx), bestEffortCancelTimeout)
		defer stop()
		logger.WithField("orderId", handle.OrderID).Warn("Cancellation lost to the abort, retrying on a detached context")
		if err = cancelOnce(detached, gw, handle, result); err == nil {
			return
		}
	}

	logger.WithError(err).WithField("orderId", handle.OrderID).Error("Order cancellation failed")
}

// cancelOnce issues one cancellation call. An "unknown order" response
// means the order resolved naturally between the last poll and the cancel
// attempt: a benign race, not an error.
func cancelOnce(ctx context.Context, gw Gateway, handle OrderHandle, result *SupervisionResult) error {
	canceled, err := gw.CancelOrder(ctx, handle.Symbol, handle.OrderID)
	if err == nil {
		result.State = StateCanceled
		result.Order = canceled
		logger.WithField("orderId", handle.OrderID).Info("Order cancelled")
		return nil
	}

	if connectors.IsUnknownOrder(err) {
		logger.WithField("orderId", handle.OrderID).Info("Order already resolved before cancel, treating as settled")
		result.State = StateCanceled
		if final, qerr := gw.QueryOrder(ctx, handle.Symbol, handle.OrderID, handle.ClientOrderID); qerr == nil {
			result.Order = final
			if final.Status == model.OrderStatusFilled {
				result.State = StateTerminalFilled
			}
		}
		return nil
	}

	return err
}

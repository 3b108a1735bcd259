package sniper

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"listingsniper/src/model"
	"listingsniper/src/poll"
	"listingsniper/src/report"
	"listingsniper/src/repository"
)

// dustThreshold mirrors the exchange's smallest representable balance; a
// free balance below it means there is nothing to sell.
var dustThreshold = decimal.RequireFromString("0.00000001")

// Runner executes one snipe end to end: launch sync, listing detection,
// concurrent price/balance fetch, planning, submission, supervision. All
// stages are strictly sequential except the two independent fetches.
type Runner struct {
	Gateway Gateway
	Intent  TradeIntent
	// Journal records phase outcomes; optional, and never feeds back
	// into control flow.
	Journal *repository.ExecutionLogRepository
}

// Run drives the pipeline. Any returned error means no resting unmanaged
// order exists: either none was placed, or the supervisor already handled
// cancellation.
func (r *Runner) Run(ctx context.Context) error {
	intent := r.Intent

	if err := WaitForLaunch(ctx, r.Gateway, intent); err != nil {
		r.journalError(ctx, model.PhaseLaunch, err)
		return fmt.Errorf("launch synchronization: %w", err)
	}
	r.journalOK(ctx, model.PhaseLaunch)

	info, err := WaitForListing(ctx, r.Gateway, intent.Symbol, intent.ListingInterval)
	if err != nil {
		r.journalError(ctx, model.PhaseListing, err)
		return fmt.Errorf("listing detection: %w", err)
	}
	r.journalOK(ctx, model.PhaseListing)

	symbolInfo := info.FindSymbol(intent.Symbol)
	if symbolInfo == nil {
		err := fmt.Errorf("symbol %s missing from metadata snapshot", intent.Symbol)
		r.journalError(ctx, model.PhasePlanning, err)
		return err
	}
	filters := ResolveFilters(symbolInfo)

	price, balance, err := r.fetchPriceAndBalance(ctx, symbolInfo.BaseAsset)
	if err != nil {
		r.journalError(ctx, model.PhasePlanning, err)
		return err
	}

	if balance != nil && balance.LessThan(dustThreshold) {
		err := fmt.Errorf("no available %s for sale, balance %s", symbolInfo.BaseAsset, balance)
		r.journalError(ctx, model.PhasePlanning, err)
		return err
	}

	plan, err := BuildPlan(intent, price, balance, filters)
	if err != nil {
		r.journalError(ctx, model.PhasePlanning, err)
		return fmt.Errorf("order planning: %w", err)
	}
	r.journal(ctx, &model.ExecutionLog{
		Phase:    model.PhasePlanning,
		Symbol:   intent.Symbol,
		Price:    plan.Price.String(),
		Quantity: plan.Quantity.String(),
		Outcome:  model.OutcomeOK,
	})

	order, err := Submit(ctx, r.Gateway, intent, plan)
	if err != nil {
		r.journalError(ctx, model.PhaseSubmission, err)
		return err
	}
	r.journal(ctx, &model.ExecutionLog{
		Phase:           model.PhaseSubmission,
		Symbol:          order.Symbol,
		ExchangeOrderID: order.OrderID,
		ClientOrderID:   order.ClientOrderID,
		Price:           order.Price,
		Quantity:        order.OrigQty,
		Status:          string(order.Status),
		Outcome:         model.OutcomeOK,
	})

	result, supErr := Supervise(ctx, r.Gateway, HandleOf(order), intent)
	r.journalSupervision(ctx, order, result, supErr)

	if supErr != nil {
		return fmt.Errorf("order supervision: %w", supErr)
	}
	if result.State == StateTerminalFilled && result.Order != nil {
		report.PrintOrderDetails(os.Stdout, result.Order)
	}
	return nil
}

// fetchPriceAndBalance runs the two independent reads concurrently; the
// planner waits for both. The price fetch has a bounded retry budget and
// its exhaustion is fatal. The balance fetch is best effort: on failure
// the balance is simply unknown and the planner falls back to the
// configured quantity.
func (r *Runner) fetchPriceAndBalance(ctx context.Context, baseAsset string) (decimal.Decimal, *decimal.Decimal, error) {
	type priceResult struct {
		price decimal.Decimal
		err   error
	}
	type balanceResult struct {
		balance decimal.Decimal
		err     error
	}

	priceCh := make(chan priceResult, 1)
	balanceCh := make(chan balanceResult, 1)

	go func() {
		var price decimal.Decimal
		err := poll.Until(ctx, poll.Options{
			Interval:    r.Intent.PriceRetryDelay,
			MaxAttempts: r.Intent.PriceRetryCount,
		}, func(ctx context.Context) (bool, error) {
			p, err := r.Gateway.TickerPrice(ctx, r.Intent.Symbol)
			if err != nil {
				logger.WithError(err).Warn("Price fetch failed, retrying")
				return false, err
			}
			price = p
			return true, nil
		})
		priceCh <- priceResult{price: price, err: err}
	}()

	go func() {
		balance, err := r.Gateway.FreeBalance(ctx, baseAsset)
		balanceCh <- balanceResult{balance: balance, err: err}
	}()

	pr := <-priceCh
	br := <-balanceCh

	if pr.err != nil {
		return decimal.Zero, nil, fmt.Errorf("fetch market price: %w", pr.err)
	}

	if br.err != nil {
		logger.WithError(br.err).Warn("Balance fetch failed, planning with configured quantity")
		return pr.price, nil, nil
	}

	logger.WithFields(logger.Fields{
		"price":   pr.price.String(),
		"asset":   baseAsset,
		"balance": br.balance.String(),
	}).Info("Market price and balance fetched")
	return pr.price, &br.balance, nil
}

func (r *Runner) journalSupervision(ctx context.Context, order *model.Order, result *SupervisionResult, supErr error) {
	row := &model.ExecutionLog{
		Phase:           model.PhaseSupervised,
		Symbol:          order.Symbol,
		ExchangeOrderID: order.OrderID,
		ClientOrderID:   order.ClientOrderID,
		Price:           order.Price,
		Quantity:        order.OrigQty,
	}
	if result.Order != nil {
		row.Status = string(result.Order.Status)
	}

	switch {
	case supErr != nil:
		row.Outcome = model.OutcomeAborted
		msg := supErr.Error()
		row.ErrorMessage = &msg
	case result.State == StateTerminalFilled:
		row.Outcome = model.OutcomeFilled
	case result.State == StateTerminalClosed:
		row.Outcome = model.OutcomeClosed
	case result.State == StateCanceled:
		row.Outcome = model.OutcomeCanceled
	default:
		row.Outcome = model.OutcomeCancelError
	}

	r.journal(ctx, row)
}

func (r *Runner) journalOK(ctx context.Context, phase string) {
	r.journal(ctx, &model.ExecutionLog{
		Phase:   phase,
		Symbol:  r.Intent.Symbol,
		Outcome: model.OutcomeOK,
	})
}

func (r *Runner) journalError(ctx context.Context, phase string, err error) {
	msg := err.Error()
	r.journal(ctx, &model.ExecutionLog{
		Phase:        phase,
		Symbol:       r.Intent.Symbol,
		Outcome:      model.OutcomeError,
		ErrorMessage: &msg,
	})
}

// journal persists a row best-effort. A journaling failure is logged and
// otherwise ignored; it must never disturb the trade path. Rows are
// written even when ctx is already cancelled, so the abort trail survives.
func (r *Runner) journal(ctx context.Context, row *model.ExecutionLog) {
	if r.Journal == nil {
		return
	}
	if err := r.Journal.Create(context.WithoutCancel(ctx), row); err != nil {
		logger.WithError(err).Warn("Failed to journal execution log row")
	}
}

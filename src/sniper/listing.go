package sniper

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"listingsniper/src/model"
	"listingsniper/src/poll"
)

// WaitForListing polls exchange metadata until symbol appears among the
// tradable pairs, returning the full snapshot for reuse by the precision
// resolver. Listing delays are expected, so every gateway error here is
// transient: logged and retried at the same interval, indefinitely. The
// only terminal exit besides success is external cancellation.
func WaitForListing(ctx context.Context, gw Gateway, symbol string, interval time.Duration) (*model.ExchangeInfo, error) {
	logger.WithField("symbol", symbol).Info("Waiting for pair listing via REST polling")

	var snapshot *model.ExchangeInfo

	err := poll.Until(ctx, poll.Options{Interval: interval}, func(ctx context.Context) (bool, error) {
		info, err := gw.ExchangeInfo(ctx)
		if err != nil {
			logger.WithError(err).Warn("Exchange info query failed, retrying")
			return false, err
		}

		s := info.FindSymbol(symbol)
		if s == nil || !s.Tradable() {
			return false, nil
		}

		logger.WithFields(logger.Fields{
			"symbol":     symbol,
			"baseAsset":  s.BaseAsset,
			"quoteAsset": s.QuoteAsset,
		}).Info("Pair found and tradable")
		snapshot = info
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

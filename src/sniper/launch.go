package sniper

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"listingsniper/src/poll"
)

// launchSampleInterval is how often the remote clock is re-sampled while
// waiting for the launch instant. Each sample is a fresh round trip; the
// tick itself carries network latency and is never assumed free of it.
const launchSampleInterval = time.Second

// WaitForLaunch blocks until the gateway's clock reaches the launch
// instant minus the configured lead. The decision is made exclusively
// against the remote clock: local clock skew would defeat a listing-time
// snipe. A clock sample failure is fatal, not retried, since a missed
// synchronization undermines the whole run.
func WaitForLaunch(ctx context.Context, gw Gateway, intent TradeIntent) error {
	if intent.LaunchAt.IsZero() {
		logger.Info("No launch time configured, skipping launch synchronization")
		return nil
	}

	gate := intent.LaunchAt.Add(-intent.LaunchLead)

	logger.WithFields(logger.Fields{
		"launchAt": intent.LaunchAt.Format(time.RFC3339),
		"lead":     intent.LaunchLead.String(),
	}).Info("Synchronizing against exchange clock")

	fatal := func(error) bool { return false }

	return poll.Until(ctx, poll.Options{Interval: launchSampleInterval, Retryable: fatal}, func(ctx context.Context) (bool, error) {
		now, err := gw.ServerTime(ctx)
		if err != nil {
			return false, fmt.Errorf("sample exchange clock: %w", err)
		}

		if !now.Before(gate) {
			logger.WithField("serverTime", now.Format(time.RFC3339)).Info("Launch window reached")
			return true, nil
		}

		logger.WithFields(logger.Fields{
			"serverTime": now.Format(time.RFC3339),
			"remaining":  gate.Sub(now).Truncate(time.Second).String(),
		}).Info("Waiting for launch window")
		return false, nil
	})
}

package search

import "time"

// Monitor observes tier executions. err is nil on success.
type Monitor interface {
	TierCompleted(tier Tier, hits int, elapsed time.Duration, err error)
}

type noopMonitor struct{}

var _ Monitor = noopMonitor{}

func (noopMonitor) TierCompleted(Tier, int, time.Duration, error) {}

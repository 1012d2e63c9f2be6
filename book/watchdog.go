package book

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/market"
)

const (
	CheckInterval = 30 * time.Second
	StaleAfter    = 5 * time.Second
)

// CheckStale sweeps for orders stuck in Submitted. It runs at most once per
// CheckInterval of event time; OnQuote calls it with each quote's time.
// Stale orders are marked Unknown and replayed through OnOrder.
func (b *Book) CheckStale(now int64) {
	if now-b.lastCheck < int64(CheckInterval) {
		return
	}
	for _, o := range b.ActiveOrders() {
		if o.Status != market.StatusSubmitted || now-o.InsertTime < int64(StaleAfter) {
			continue
		}
		b.log.Warn("order went stale", zap.Uint64("order_id", o.OrderID),
			zap.Duration("age", time.Duration(now-o.InsertTime)))
		o.Status = market.StatusUnknown
		b.OnOrder(o)
	}
	b.publish(b.Event())
	b.lastCheck = now
}

// LastCheck is the event time of the last sweep.
func (b *Book) LastCheck() int64 { return b.lastCheck }

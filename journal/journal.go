// journal/journal.go
package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/events"
)

// AssetRow is a persisted ledger level snapshot.
type AssetRow struct {
	ID string
	broker.Asset
}

// PositionRow is a persisted position snapshot.
type PositionRow struct {
	ID string
	broker.PositionReport
}

type Journal interface {
	RecordAsset(AssetRow) error
	RecordPosition(PositionRow) error
	Close() error
}

// Record writes one published event to j.
func Record(j Journal, e events.Event) error {
	switch e.Type {
	case events.MsgAsset:
		a, ok := e.Asset()
		if !ok {
			return fmt.Errorf("event %s: asset payload is %T", e.ID, e.Data)
		}
		return j.RecordAsset(AssetRow{ID: e.ID, Asset: a})
	case events.MsgPosition:
		p, ok := e.Position()
		if !ok {
			return fmt.Errorf("event %s: position payload is %T", e.ID, e.Data)
		}
		return j.RecordPosition(PositionRow{ID: e.ID, PositionReport: p})
	}
	return fmt.Errorf("event %s: unknown type %q", e.ID, e.Type)
}

// Recorder drains a bus subscription into a journal.
type Recorder struct {
	j   Journal
	ch  <-chan events.Event
	log *zap.Logger
}

func NewRecorder(j Journal, ch <-chan events.Event, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{j: j, ch: ch, log: log}
}

// Run records events until the channel closes or ctx is done. Write errors
// are logged; they never reach the publisher.
func (r *Recorder) Run(ctx context.Context) int {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n
		case e, ok := <-r.ch:
			if !ok {
				return n
			}
			if err := Record(r.j, e); err != nil {
				r.log.Error("journal write failed", zap.String("id", e.ID), zap.Error(err))
				continue
			}
			n++
		}
	}
}

package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/bookkeeper/events"
)

type memJournal struct {
	assets    []AssetRow
	positions []PositionRow
	fail      bool
}

func (m *memJournal) RecordAsset(a AssetRow) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.assets = append(m.assets, a)
	return nil
}

func (m *memJournal) RecordPosition(p PositionRow) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.positions = append(m.positions, p)
	return nil
}

func (m *memJournal) Close() error { return nil }

func TestRecord(t *testing.T) {
	m := &memJournal{}

	require.NoError(t, Record(m, events.NewAsset(testAsset("20240102"))))
	require.NoError(t, Record(m, events.NewPosition(testPosition("20240102"))))
	assert.Len(t, m.assets, 1)
	assert.Len(t, m.positions, 1)

	assert.Error(t, Record(m, events.Event{ID: "x", Type: events.MsgAsset, Data: 1}))
	assert.Error(t, Record(m, events.Event{ID: "x", Type: events.MsgPosition}))
	assert.Error(t, Record(m, events.Event{ID: "x", Type: "Trade"}))
}

func TestRecorderDrainsBus(t *testing.T) {
	bus := events.NewBus(nil)
	ch, unsubscribe := bus.Subscribe(8)

	bus.Publish(events.NewAsset(testAsset("20240102")))
	bus.Publish(events.NewPosition(testPosition("20240102")))
	bus.Publish(events.NewPosition(testPosition("20240102")))
	unsubscribe()

	m := &memJournal{}
	n := NewRecorder(m, ch, nil).Run(context.Background())

	assert.Equal(t, 3, n)
	assert.Len(t, m.assets, 1)
	assert.Len(t, m.positions, 2)
}

func TestRecorderLogsWriteErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ch := make(chan events.Event, 1)
	ch <- events.NewAsset(testAsset("20240102"))
	close(ch)

	n := NewRecorder(&memJournal{fail: true}, ch, zap.New(core)).Run(context.Background())

	assert.Equal(t, 0, n)
	assert.Equal(t, 1, logs.FilterMessage("journal write failed").Len())
}

func TestRecorderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := NewRecorder(&memJournal{}, make(chan events.Event), nil).Run(ctx)
	assert.Equal(t, 0, n)
}

package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/events"
	"github.com/rustyeddy/bookkeeper/location"
)

var (
	day1 = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
)

type testHost struct {
	now int64
	day time.Time
}

func (h *testHost) Now() int64            { return h.now }
func (h *testHost) TradingDay() time.Time { return h.day }

type testPublisher struct {
	events []events.Event
}

func (p *testPublisher) Publish(e events.Event) { p.events = append(p.events, e) }

func (p *testPublisher) types() []events.MsgType {
	out := make([]events.MsgType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func sec(n int64) int64 { return n * int64(time.Second) }

func newBook(t *testing.T, opts Options) (*Book, *testPublisher) {
	t.Helper()
	pub := &testPublisher{}
	opts.Publisher = pub
	b, err := New(&testHost{now: 42, day: day1}, location.New(location.TD, "sim", "acct-1"), opts)
	require.NoError(t, err)
	return b, pub
}

func newBookWithLogger(t *testing.T, opts Options, log *zap.Logger) (*Book, *testPublisher) {
	t.Helper()
	opts.Logger = log
	return newBook(t, opts)
}

func locStrategy() location.Location { return location.New(location.Strategy, "default", "demo") }

package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/bookkeeper/market"
)

func readAll(t *testing.T, src string) []Event {
	t.Helper()
	feed := NewCSVFeed(strings.NewReader(src))
	var out []Event
	for {
		e, ok, err := feed.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

func TestCSVFeedParsesEveryKind(t *testing.T) {
	t.Parallel()

	src := `time,event
# comment
2024-07-01T09:00:00Z,quote,rb2410,SHFE,3600,3590,,,3580,120
2024-07-01T09:00:01Z,order_input,1,rb2410,SHFE,buy,open,limit,3601,2
2024-07-01T09:00:02Z,order,1,rb2410,SHFE,buy,open,filled,2,0,3601
2024-07-01T09:00:02Z,trade,10,1,rb2410,SHFE,buy,open,3600,2,1.5
2024-07-01T09:00:03Z,asset,990000,12.5
1719824400000000000,trading_day,20240702
`
	got := readAll(t, src)
	require.Len(t, got, 6)

	ts := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC).UnixNano()

	q := got[0]
	assert.Equal(t, KindQuote, q.Kind)
	assert.Equal(t, ts, q.Time)
	assert.Equal(t, "rb2410", q.Quote.InstrumentID)
	assert.Equal(t, 3600.0, q.Quote.LastPrice)
	assert.Equal(t, 3590.0, q.Quote.PreClosePrice)
	assert.Equal(t, 3580.0, q.Quote.PreSettlement)
	assert.Equal(t, 120.0, q.Quote.Volume)
	assert.Equal(t, ts, q.Quote.DataTime)

	in := got[1].OrderInput
	assert.Equal(t, uint64(1), in.OrderID)
	assert.Equal(t, market.Buy, in.Side)
	assert.Equal(t, market.Open, in.Offset)
	assert.Equal(t, market.Limit, in.PriceType)
	assert.Equal(t, 3601.0, in.LimitPrice)
	assert.Equal(t, 2.0, in.Volume)

	o := got[2].Order
	assert.Equal(t, market.StatusFilled, o.Status)
	assert.Equal(t, 0.0, o.VolumeLeft)
	assert.Equal(t, int64(0), o.InsertTime)
	assert.Equal(t, got[2].Time, o.UpdateTime)

	tr := got[3].Trade
	assert.Equal(t, uint64(10), tr.TradeID)
	assert.Equal(t, uint64(1), tr.OrderID)
	assert.Equal(t, 1.5, tr.Commission)
	assert.Equal(t, 0.0, tr.Tax)

	assert.Equal(t, 990000.0, got[4].Asset.Avail)
	assert.Equal(t, 12.5, got[4].Asset.RealizedPnl)

	assert.Equal(t, KindTradingDay, got[5].Kind)
	assert.Equal(t, int64(1719824400000000000), got[5].Time)
	assert.Equal(t, time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), got[5].TradingDay)
}

func TestCSVFeedGroupsPositions(t *testing.T) {
	t.Parallel()

	src := `2024-07-02T08:55:00Z,position,rb2410,SHFE,long,2,2,3600,3610
2024-07-02T08:55:00Z,position,600000,SSE,long,100,100,10.5
2024-07-02T08:56:00Z,position,cu2409,SHFE,short,1,1,78000
2024-07-02T08:57:00Z,quote,cu2409,SHFE,78100
`
	got := readAll(t, src)
	require.Len(t, got, 3)

	require.Len(t, got[0].Positions, 2)
	assert.Equal(t, "rb2410", got[0].Positions[0].InstrumentID)
	assert.Equal(t, market.InstrumentFuture, got[0].Positions[0].InstrumentType)
	assert.Equal(t, 3610.0, got[0].Positions[0].LastPrice)
	assert.Equal(t, market.InstrumentStock, got[0].Positions[1].InstrumentType)

	require.Len(t, got[1].Positions, 1)
	assert.Equal(t, market.Short, got[1].Positions[0].Direction)
	assert.Equal(t, KindQuote, got[2].Kind)
}

func TestCSVFeedSkipsBadPositionRows(t *testing.T) {
	t.Parallel()

	src := `2024-07-02T08:55:00Z,position,rb2410,SHFE,long,2,2,3600
2024-07-02T08:55:00Z,position,cu2409,SHFE,long,abc,0,78000
2024-07-02T08:55:00Z,position,au2412,SHFE,up,1,1,560
2024-07-02T08:55:00Z,position,600000,SSE,long,100,100,10.5
`
	got := readAll(t, src)
	require.Len(t, got, 1)

	ev := got[0]
	require.Len(t, ev.Positions, 2)
	assert.Equal(t, "rb2410", ev.Positions[0].InstrumentID)
	assert.Equal(t, "600000", ev.Positions[1].InstrumentID)
	require.Len(t, ev.Skipped, 2)
	assert.Contains(t, ev.Skipped[0].Error(), "line 2")
	assert.Contains(t, ev.Skipped[1].Error(), "line 3")
}

func TestCSVFeedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
	}{
		{"unknown event", "2024-07-01T09:00:00Z,heartbeat"},
		{"bad time", "yesterday,quote,rb2410,SHFE,1"},
		{"short row", "2024-07-01T09:00:00Z"},
		{"missing fields", "2024-07-01T09:00:00Z,order_input,1,rb2410"},
		{"bad side", "2024-07-01T09:00:00Z,trade,1,1,rb2410,SHFE,hold,open,1,1"},
		{"bad status", "2024-07-01T09:00:00Z,order,1,rb2410,SHFE,buy,open,lost,1,1"},
		{"bad number", "2024-07-01T09:00:00Z,asset,lots"},
		{"bad day", "2024-07-01T09:00:00Z,trading_day,July"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewCSVFeed(strings.NewReader(tt.row + "\n")).Next()
			assert.Error(t, err)
		})
	}

	_, _, err := NewCSVFeed(strings.NewReader("2024-07-01T09:00:00Z,heartbeat\n")).Next()
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestOpenCSVFeed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("2024-07-01T09:00:00Z,trading_day,20240701\n"), 0o644))

	feed, err := OpenCSVFeed(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = feed.Close() })

	e, ok, err := feed.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindTradingDay, e.Kind)

	_, err = OpenCSVFeed(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

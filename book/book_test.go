package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/events"
	"github.com/rustyeddy/bookkeeper/market"
	"github.com/rustyeddy/bookkeeper/position"
)

const tol = 1e-9

func TestAssetReports(t *testing.T) {
	b, pub := newBook(t, Options{Avail: 1_000_000})

	b.OnAsset(broker.Asset{Avail: 950_000, RealizedPnl: 5_000})
	assert.Equal(t, 950_000.0, b.TotalCash())
	assert.Equal(t, 5_000.0, b.RealizedPnl())

	b.OnAsset(broker.Asset{Avail: 960_000, RealizedPnl: 0})
	assert.Equal(t, 960_000.0, b.Avail())
	assert.Equal(t, 5_000.0, b.RealizedPnl())

	b.OnAsset(broker.Asset{Avail: 960_000, RealizedPnl: -300})
	assert.Equal(t, 5_000.0, b.RealizedPnl())

	b.OnAsset(broker.Asset{Avail: 960_000, RealizedPnl: 7_500})
	assert.Equal(t, 7_500.0, b.RealizedPnl())

	assert.Empty(t, pub.events)
}

func TestTotalCashIsAvailPlusFrozen(t *testing.T) {
	b, _ := newBook(t, Options{Avail: 100, FrozenCash: 25})
	assert.Equal(t, 125.0, b.TotalCash())

	b.OnTrade(broker.Trade{OrderID: 1, InstrumentID: "600000", ExchangeID: market.SSE, Side: market.Buy, Price: 10, Volume: 100})
	b.OnAsset(broker.Asset{Avail: 80})
	assert.Equal(t, 105.0, b.TotalCash())
}

func TestOrderInputFrozenPrice(t *testing.T) {
	b, pub := newBook(t, Options{})

	b.OnOrderInput(sec(1), broker.OrderInput{OrderID: 1, InstrumentID: "600000", ExchangeID: market.SSE,
		Side: market.Buy, PriceType: market.Limit, LimitPrice: 10.5, Volume: 100})
	b.OnOrderInput(sec(2), broker.OrderInput{OrderID: 2, InstrumentID: "600000", ExchangeID: market.SSE,
		Side: market.Buy, PriceType: market.Any, Volume: 100})

	o, ok := b.Order(1)
	require.True(t, ok)
	assert.Equal(t, 10.5, o.FrozenPrice)
	assert.Equal(t, sec(1), o.InsertTime)
	assert.Equal(t, market.StatusSubmitted, o.Status)
	assert.Equal(t, 0.0, b.FrozenPrice(2))

	// order input creates the position bucket but publishes nothing
	_, ok = b.Position("600000", market.SSE, market.Long)
	assert.True(t, ok)
	assert.Empty(t, pub.events)
}

func TestOrderInputMarketUsesLastPrice(t *testing.T) {
	b, _ := newBook(t, Options{})
	b.OnQuote(sec(1), market.Quote{InstrumentID: "600000", ExchangeID: market.SSE, LastPrice: 11.2})

	b.OnOrderInput(sec(2), broker.OrderInput{OrderID: 3, InstrumentID: "600000", ExchangeID: market.SSE,
		Side: market.Buy, PriceType: market.Any, Volume: 100})
	assert.Equal(t, 11.2, b.FrozenPrice(3))
}

func TestOnOrderKeepsFrozenPrice(t *testing.T) {
	b, pub := newBook(t, Options{})
	b.OnOrderInput(sec(1), broker.OrderInput{OrderID: 1, InstrumentID: "rb2410", ExchangeID: market.SHFE,
		Side: market.Sell, Offset: market.Open, PriceType: market.Limit, LimitPrice: 3500, Volume: 1})

	b.OnOrder(broker.Order{OrderID: 1, InstrumentID: "rb2410", ExchangeID: market.SHFE,
		Side: market.Sell, Offset: market.Open, Status: market.StatusPending, FrozenPrice: 1})

	o, _ := b.Order(1)
	assert.Equal(t, 3500.0, o.FrozenPrice)
	assert.Equal(t, sec(1), o.InsertTime)
	assert.Equal(t, market.StatusPending, o.Status)
	assert.Equal(t, []events.MsgType{events.MsgAsset}, pub.types())

	// an order never seen before gets a zero frozen price
	b.OnOrder(broker.Order{OrderID: 9, InstrumentID: "rb2410", ExchangeID: market.SHFE, FrozenPrice: 3, Status: market.StatusFilled})
	assert.Equal(t, 0.0, b.FrozenPrice(9))
	assert.Len(t, pub.events, 2)
}

func TestActiveOrders(t *testing.T) {
	b, _ := newBook(t, Options{})
	statuses := []market.OrderStatus{
		market.StatusSubmitted, market.StatusPending, market.StatusPartialFilledActive,
		market.StatusFilled, market.StatusCancelled, market.StatusUnknown,
	}
	for i, st := range statuses {
		b.OnOrder(broker.Order{OrderID: uint64(10 - i), InstrumentID: "600000", ExchangeID: market.SSE, Status: st})
	}

	active := b.ActiveOrders()
	require.Len(t, active, 3)
	assert.Equal(t, uint64(8), active[0].OrderID)
	assert.Equal(t, uint64(10), active[2].OrderID)
}

func TestTradesKeepTwoBucketsPerInstrument(t *testing.T) {
	b, pub := newBook(t, Options{})
	trades := []broker.Trade{
		{Side: market.Buy, Offset: market.Open},
		{Side: market.Sell, Offset: market.Open},
		{Side: market.Sell, Offset: market.Close},
		{Side: market.Buy, Offset: market.CloseToday},
		{Side: market.Buy, Offset: market.Open},
	}
	for i, tr := range trades {
		tr.OrderID = uint64(i)
		tr.InstrumentID, tr.ExchangeID = "rb2410", market.SHFE
		tr.Price, tr.Volume = 3500, 1
		b.OnTrade(tr)
	}

	assert.Len(t, b.Positions(), 2)
	assert.Len(t, pub.events, len(trades))
}

func TestQuoteOnlyMarksExistingPositions(t *testing.T) {
	b, _ := newBook(t, Options{})
	b.lastCheck = sec(1000)

	b.OnQuote(sec(1), market.Quote{InstrumentID: "rb2410", ExchangeID: market.SHFE, LastPrice: 3500})
	assert.Empty(t, b.Positions())
	_, ok := b.Ticker("rb2410", market.SHFE)
	assert.True(t, ok)

	b.OnTrade(broker.Trade{OrderID: 1, InstrumentID: "rb2410", ExchangeID: market.SHFE, Side: market.Sell, Offset: market.Open, Price: 3500, Volume: 1})
	b.OnQuote(sec(2), market.Quote{InstrumentID: "rb2410", ExchangeID: market.SHFE, LastPrice: 3400})

	p, ok := b.Position("rb2410", market.SHFE, market.Short)
	require.True(t, ok)
	assert.InDelta(t, 100*market.Contract("rb2410").ContractMultiplier, p.UnrealizedPnl(), tol)
	assert.Len(t, b.Positions(), 1)
}

func TestDerivedMetrics(t *testing.T) {
	b, _ := newBook(t, Options{Avail: 100_000})
	b.lastCheck = sec(1000)

	b.OnTrade(broker.Trade{OrderID: 1, InstrumentID: "600000", ExchangeID: market.SSE, Side: market.Buy, Price: 10, Volume: 100})
	b.OnTrade(broker.Trade{OrderID: 2, InstrumentID: "rb2410", ExchangeID: market.SHFE, Side: market.Buy, Offset: market.Open, Price: 3500, Volume: 1})
	b.OnQuote(sec(1), market.Quote{InstrumentID: "600000", ExchangeID: market.SSE, LastPrice: 11})
	b.OnQuote(sec(2), market.Quote{InstrumentID: "rb2410", ExchangeID: market.SHFE, LastPrice: 3550})

	meta := market.Contract("rb2410")
	margin := 3500 * meta.ContractMultiplier * meta.LongMarginRatio
	pnl := 50 * meta.ContractMultiplier

	assert.InDelta(t, margin, b.Margin(), tol)
	assert.InDelta(t, 1100.0, b.MarketValue(), tol)
	assert.InDelta(t, 100+pnl, b.UnrealizedPnl(), tol)
	assert.InDelta(t, 100_000+1100+margin+pnl, b.DynamicEquity(), tol)

	// derived values follow the positions without any book event
	p, _ := b.Position("600000", market.SSE, market.Long)
	p.ApplyQuote(market.Quote{LastPrice: 12})
	assert.InDelta(t, 1200.0, b.MarketValue(), tol)

	a := b.Asset()
	assert.InDelta(t, b.DynamicEquity(), a.DynamicEquity, tol)
	assert.Equal(t, b.Margin(), a.Margin)
}

func TestTradingDayIsIdempotent(t *testing.T) {
	b, pub := newBook(t, Options{Avail: 50_000})
	b.OnTrade(broker.Trade{OrderID: 1, InstrumentID: "rb2410", ExchangeID: market.SHFE, Side: market.Buy, Offset: market.Open, Price: 3500, Volume: 2})
	pub.events = nil

	b.OnTradingDay(day2)
	require.Len(t, pub.events, 1)
	assert.Equal(t, day2, b.TradingDay())
	assert.InDelta(t, b.DynamicEquity(), b.StaticEquity(), tol)

	p, _ := b.Position("rb2410", market.SHFE, market.Long)
	fut, ok := p.(*position.Future)
	require.True(t, ok)
	assert.Equal(t, day2, fut.TradingDay())
	before := p.Report()
	yesterday := fut.YesterdayVolume()
	static := b.StaticEquity()

	b.OnTradingDay(day2)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, day2, b.TradingDay())
	assert.Equal(t, static, b.StaticEquity())
	assert.Equal(t, before, p.Report())
	assert.Equal(t, day2, fut.TradingDay())
	assert.Equal(t, yesterday, fut.YesterdayVolume())
}

func TestStaleOrderSweep(t *testing.T) {
	b, pub := newBook(t, Options{})
	in := broker.OrderInput{InstrumentID: "600000", ExchangeID: market.SSE, Side: market.Buy, PriceType: market.Limit, LimitPrice: 10, Volume: 100}

	in.OrderID = 1
	b.OnOrderInput(0, in)
	in.OrderID = 2
	b.OnOrderInput(sec(29), in)
	in.OrderID = 3
	b.OnOrderInput(0, in)
	b.OnOrder(broker.Order{OrderID: 3, InstrumentID: "600000", ExchangeID: market.SSE, Status: market.StatusPending})
	pub.events = nil

	other := market.Quote{InstrumentID: "000001", ExchangeID: market.SZSE, LastPrice: 9}

	b.OnQuote(sec(20), other)
	assert.Empty(t, pub.events)

	// lastCheck starts at 0, so the first quote at or past 30s sweeps: order 1 flips at 31s, not 36s.
	b.OnQuote(sec(31), other)
	o, _ := b.Order(1)
	assert.Equal(t, market.StatusUnknown, o.Status)
	o, _ = b.Order(2)
	assert.Equal(t, market.StatusSubmitted, o.Status, "younger than the stale age")
	o, _ = b.Order(3)
	assert.Equal(t, market.StatusPending, o.Status)
	// one snapshot for the order update, one for the sweep
	assert.Len(t, pub.events, 2)
	assert.Equal(t, sec(31), b.LastCheck())

	b.OnQuote(sec(36), other)
	b.CheckStale(sec(36))
	assert.Len(t, pub.events, 2)
	o, _ = b.Order(2)
	assert.Equal(t, market.StatusSubmitted, o.Status)

	b.OnQuote(sec(61), other)
	o, _ = b.Order(2)
	assert.Equal(t, market.StatusUnknown, o.Status)
}

func TestOnPositionsLedgerPublishes(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b, pub := newBookWithLogger(t, Options{Role: RoleLedger}, zap.New(core))
	b.OnTrade(broker.Trade{OrderID: 1, InstrumentID: "cu2409", ExchangeID: market.SHFE, Side: market.Buy, Price: 70000, Volume: 1})
	pub.events = nil

	b.OnPositions([]broker.PositionReport{
		{InstrumentID: "600000", ExchangeID: market.SSE, Volume: 100, AvgOpenPrice: 10},
		{InstrumentID: "rb2410", ExchangeID: market.SHFE, Direction: market.Short, Volume: 2, YesterdayVolume: 3},
		{InstrumentID: "rb2410", ExchangeID: market.SHFE, Direction: market.Long, Volume: 1, AvgOpenPrice: 3500},
		{InstrumentID: "000001", ExchangeID: market.SZSE, Volume: 200, AvgOpenPrice: 9},
	})

	all := b.Positions()
	require.Len(t, all, 3)
	_, ok := b.Position("cu2409", market.SHFE, market.Long)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("skip position").Len())

	require.Equal(t, []events.MsgType{events.MsgAsset, events.MsgPosition, events.MsgPosition, events.MsgPosition}, pub.types())
	for i, p := range all {
		r, ok := pub.events[i+1].Position()
		require.True(t, ok)
		assert.Equal(t, p.Key().InstrumentID, r.InstrumentID)
		assert.Equal(t, "20240701", r.TradingDay)
		assert.Equal(t, b.Tags(), r.Tags)
		assert.Equal(t, int64(42), r.UpdateTime)
	}
}

func TestOnPositionsStrategyIsQuiet(t *testing.T) {
	b, pub := newBook(t, Options{Role: RoleStrategy})
	b.OnPositions([]broker.PositionReport{{InstrumentID: "600000", ExchangeID: market.SSE, Volume: 100}})
	assert.Len(t, b.Positions(), 1)
	assert.Empty(t, pub.events)
}

func TestOnPositionRecords(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b, _ := newBookWithLogger(t, Options{}, zap.New(core))

	b.OnPositionRecords([]map[string]any{
		{"instrument_id": "600000", "exchange_id": market.SSE, "volume": 100},
		{"instrument_id": "600036", "exchange_id": market.SSE, "volume": "many"},
		{"instrument_id": "rb2410", "exchange_id": market.SHFE, "direction": "short", "volume": 1},
	})

	assert.Len(t, b.Positions(), 2)
	assert.Equal(t, 1, logs.FilterMessage("skip position record").Len())
}

func TestPositionDetailsNoop(t *testing.T) {
	b, pub := newBook(t, Options{Avail: 10})
	before := b.Asset()
	b.OnPositionDetails([]broker.PositionDetail{{InstrumentID: "600000", ExchangeID: market.SSE, Volume: 1}})
	assert.Equal(t, before, b.Asset())
	assert.Empty(t, b.Positions())
	assert.Empty(t, pub.events)
}

func TestEventStamp(t *testing.T) {
	b, err := New(&testHost{now: 99, day: day1}, locStrategy(), Options{Avail: 5})
	require.NoError(t, err)

	e := b.Event()
	a, ok := e.Asset()
	require.True(t, ok)
	assert.Equal(t, "20240701", a.TradingDay)
	assert.Equal(t, int64(99), a.UpdateTime)
	assert.Equal(t, broker.LedgerStrategy, a.LedgerCategory)
	assert.Equal(t, "demo", a.ClientID)
	assert.Equal(t, 5.0, a.Avail)
}

package book

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
	"github.com/rustyeddy/bookkeeper/position"
)

// OnTradingDay rolls every position to day. A day the book is already on
// is a duplicate and leaves the book untouched.
func (b *Book) OnTradingDay(day time.Time) {
	for _, p := range b.positions.list {
		p.ApplyTradingDay(day)
	}
	if sameDay(b.tradingDay, day) {
		b.log.Debug("duplicate trading day", zap.String("trading_day", day.Format(broker.DayLayout)))
		return
	}
	b.log.Debug("switch trading day",
		zap.String("from", b.tradingDay.Format(broker.DayLayout)),
		zap.String("to", day.Format(broker.DayLayout)))
	b.staticEquity = b.DynamicEquity()
	b.tradingDay = day
	b.publish(b.Event())
}

// OnQuote stores q and marks the existing positions of its instrument.
// genTime drives the stale order sweep.
func (b *Book) OnQuote(genTime int64, q market.Quote) {
	b.tickers.Set(q)
	for _, dir := range []market.Direction{market.Long, market.Short} {
		if p, ok := b.positions.Get(q.InstrumentID, q.ExchangeID, dir); ok {
			p.ApplyQuote(q)
		}
	}
	b.CheckStale(genTime)
}

// OnOrderInput records a locally originated order. Limit orders freeze
// their limit price, everything else the last known price.
func (b *Book) OnOrderInput(genTime int64, in broker.OrderInput) {
	b.log.Debug("order input", zap.Uint64("order_id", in.OrderID), zap.String("instrument", in.InstrumentID))

	if in.PriceType == market.Limit {
		in.FrozenPrice = in.LimitPrice
	} else {
		in.FrozenPrice = b.LastPrice(in.InstrumentID, in.ExchangeID)
	}
	order := broker.OrderFromInput(in)
	order.InsertTime = genTime
	b.orders[order.OrderID] = order

	b.positionFor(in.InstrumentID, in.ExchangeID, in.Side, in.Offset).ApplyOrderInput(in)
}

// OnOrder stores a broker order update over the local record.
func (b *Book) OnOrder(o broker.Order) {
	b.log.Debug("order", zap.Uint64("order_id", o.OrderID), zap.Stringer("status", o.Status))

	prev, known := b.orders[o.OrderID]
	o.FrozenPrice = b.FrozenPrice(o.OrderID)
	if known && o.InsertTime == 0 {
		o.InsertTime = prev.InsertTime
	}
	b.orders[o.OrderID] = o

	b.positionFor(o.InstrumentID, o.ExchangeID, o.Side, o.Offset).ApplyOrder(o)
	b.publish(b.Event())
}

func (b *Book) OnTrade(t broker.Trade) {
	b.log.Debug("trade", zap.Uint64("trade_id", t.TradeID), zap.Uint64("order_id", t.OrderID),
		zap.Float64("price", t.Price), zap.Float64("volume", t.Volume))

	b.positionFor(t.InstrumentID, t.ExchangeID, t.Side, t.Offset).ApplyTrade(t)
	b.publish(b.Event())
}

// OnAsset trusts the broker's avail. A reported realized pnl only
// replaces the book's when it is positive.
func (b *Book) OnAsset(a broker.Asset) {
	b.log.Info("asset report", zap.Float64("avail", a.Avail), zap.Float64("realized_pnl", a.RealizedPnl))

	b.avail = a.Avail
	if a.RealizedPnl > 0 {
		b.realizedPnl = a.RealizedPnl
	}
}

// OnPositions replaces every position with the broker's view. Reports that
// cannot be decoded are logged and skipped.
func (b *Book) OnPositions(reports []broker.PositionReport) {
	b.log.Debug("position report", zap.Int("size", len(reports)))
	for _, r := range reports {
		b.log.Info("position", zap.String("instrument", r.InstrumentID), zap.String("exchange", r.ExchangeID),
			zap.Stringer("direction", r.Direction), zap.Float64("volume", r.Volume))
	}

	for _, err := range b.positions.ReplaceAll(reports, b.tradingDay) {
		b.log.Error("skip position", zap.Error(err))
	}
	if b.role != RoleLedger {
		return
	}
	b.publish(b.Event())
	for _, p := range b.positions.list {
		b.publish(b.PositionEvent(p))
	}
}

// OnPositionRecords is OnPositions for loosely typed records.
func (b *Book) OnPositionRecords(records []map[string]any) {
	reports := make([]broker.PositionReport, 0, len(records))
	for i, rec := range records {
		r, err := position.DecodeRecord(rec)
		if err != nil {
			b.log.Error("skip position record", zap.Int("index", i), zap.Any("record", rec), zap.Error(err))
			continue
		}
		reports = append(reports, r)
	}
	b.OnPositions(reports)
}

// OnPositionDetails is accepted and ignored.
func (b *Book) OnPositionDetails(details []broker.PositionDetail) {}

func (b *Book) positionFor(instrumentID, exchangeID string, side market.Side, offset market.Offset) position.Position {
	dir := broker.Direction(instrumentID, exchangeID, side, offset)
	return b.positions.GetOrCreate(instrumentID, exchangeID, dir, b.tradingDay)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

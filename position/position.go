// Package position holds the per-instrument position models a book aggregates.
//
// Two variants exist: Stock positions are fully paid and contribute their
// market value to equity, Future positions are margined and contribute
// margin plus position pnl. Callers switch on Kind rather than on concrete
// types when aggregating.
package position

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
)

type Kind int8

const (
	FullyPaid Kind = iota
	Margined
)

func (k Kind) String() string {
	if k == Margined {
		return "margined"
	}
	return "fully-paid"
}

// Key identifies a position bucket inside a book.
type Key struct {
	InstrumentID string
	ExchangeID   string
	Direction    market.Direction
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s/%s", k.InstrumentID, k.ExchangeID, k.Direction)
}

type Position interface {
	Key() Key
	Kind() Kind
	HolderUID() uint32

	Margin() float64
	MarketValue() float64
	PositionPnl() float64
	UnrealizedPnl() float64

	ApplyQuote(q market.Quote)
	ApplyOrderInput(in broker.OrderInput)
	ApplyOrder(o broker.Order)
	ApplyTrade(t broker.Trade)
	ApplyTradingDay(day time.Time)

	// Report flattens the position; the Stamp is left for the caller.
	Report() broker.PositionReport
}

// New returns a zero position of the variant matching the instrument,
// already on the given trading day.
func New(holder uint32, day time.Time, key Key) Position {
	typ := market.InstrumentTypeOf(key.InstrumentID, key.ExchangeID)
	b := newBase(holder, key, typ)
	b.tradingDay = day
	if typ.Margined() {
		return newFuture(b)
	}
	return &Stock{base: b}
}

type frozenOrder struct {
	total     float64
	yesterday float64
}

// base carries the volume and price state both variants share.
type base struct {
	key            Key
	holder         uint32
	instrumentType market.InstrumentType
	tradingDay     time.Time

	volume          float64
	yesterdayVolume float64
	frozenTotal     float64
	frozenYesterday float64

	lastPrice          float64
	avgOpenPrice       float64
	positionCostPrice  float64
	closePrice         float64
	preClosePrice      float64
	settlementPrice    float64
	preSettlementPrice float64

	realizedPnl float64

	frozen map[uint64]frozenOrder
}

func newBase(holder uint32, key Key, typ market.InstrumentType) base {
	return base{
		key:            key,
		holder:         holder,
		instrumentType: typ,
		frozen:         make(map[uint64]frozenOrder),
	}
}

func (b *base) Key() Key          { return b.key }
func (b *base) HolderUID() uint32 { return b.holder }

func (b *base) Volume() float64          { return b.volume }
func (b *base) YesterdayVolume() float64 { return b.yesterdayVolume }
func (b *base) FrozenTotal() float64     { return b.frozenTotal }
func (b *base) LastPrice() float64       { return b.lastPrice }
func (b *base) AvgOpenPrice() float64    { return b.avgOpenPrice }
func (b *base) RealizedPnl() float64     { return b.realizedPnl }
func (b *base) TradingDay() time.Time    { return b.tradingDay }

// mark is the price positions are valued at: the last price when known.
func (b *base) mark(fallback float64) float64 {
	if market.IsValidPrice(b.lastPrice) {
		return b.lastPrice
	}
	return fallback
}

func (b *base) applyQuote(q market.Quote) {
	if market.IsValidPrice(q.LastPrice) {
		b.lastPrice = q.LastPrice
	}
	if market.IsValidPrice(q.ClosePrice) {
		b.closePrice = q.ClosePrice
	}
	if market.IsValidPrice(q.PreClosePrice) {
		b.preClosePrice = q.PreClosePrice
	}
	if market.IsValidPrice(q.SettlementPrice) {
		b.settlementPrice = q.SettlementPrice
	}
	if market.IsValidPrice(q.PreSettlement) {
		b.preSettlementPrice = q.PreSettlement
	}
}

// freeze reserves closable volume for a closing order.
func (b *base) freeze(orderID uint64, volume float64, yesterdayOnly bool) {
	avail := b.volume - b.frozenTotal
	if yesterdayOnly {
		avail = math.Min(avail, b.yesterdayVolume-b.frozenYesterday)
	}
	v := math.Max(0, math.Min(volume, avail))
	if v == 0 {
		return
	}
	f := b.frozen[orderID]
	f.total += v
	b.frozenTotal += v
	if yesterdayOnly {
		f.yesterday += v
		b.frozenYesterday += v
	}
	b.frozen[orderID] = f
}

// release gives back up to volume of an order's frozen amount; a negative
// volume releases everything left for the order.
func (b *base) release(orderID uint64, volume float64) {
	f, ok := b.frozen[orderID]
	if !ok {
		return
	}
	if volume < 0 {
		volume = f.total
	}
	v := math.Min(volume, f.total)
	y := math.Min(v, f.yesterday)
	f.total -= v
	f.yesterday -= y
	b.frozenTotal = math.Max(0, b.frozenTotal-v)
	b.frozenYesterday = math.Max(0, b.frozenYesterday-y)
	if f.total <= 0 {
		delete(b.frozen, orderID)
		return
	}
	b.frozen[orderID] = f
}

func (b *base) applyOrder(o broker.Order) {
	if o.Status.Final() {
		b.release(o.OrderID, -1)
	}
}

// open adds volume at price; cost prices are volume weighted.
func (b *base) open(price, volume float64) {
	total := b.volume + volume
	if total > 0 {
		b.avgOpenPrice = (b.avgOpenPrice*b.volume + price*volume) / total
		b.positionCostPrice = (b.positionCostPrice*b.volume + price*volume) / total
	}
	b.volume = total
}

// close removes up to volume and returns the amount actually closed.
func (b *base) close(orderID uint64, volume float64, yesterdayFirst bool) float64 {
	v := math.Min(volume, b.volume)
	b.release(orderID, v)
	b.volume -= v
	if yesterdayFirst {
		b.yesterdayVolume = math.Max(0, b.yesterdayVolume-v)
	}
	b.yesterdayVolume = math.Min(b.yesterdayVolume, b.volume)
	if b.volume == 0 {
		b.avgOpenPrice = 0
		b.positionCostPrice = 0
	}
	return v
}

// rollDay returns false when day is the day already applied.
func (b *base) rollDay(day time.Time) bool {
	if sameDay(b.tradingDay, day) {
		return false
	}
	b.tradingDay = day
	b.yesterdayVolume = b.volume
	b.frozenTotal = 0
	b.frozenYesterday = 0
	b.frozen = make(map[uint64]frozenOrder)
	return true
}

func (b *base) report() broker.PositionReport {
	return broker.PositionReport{
		Stamp:              broker.Stamp{Tags: broker.Tags{HolderUID: b.holder}},
		InstrumentID:       b.key.InstrumentID,
		ExchangeID:         b.key.ExchangeID,
		Direction:          b.key.Direction,
		InstrumentType:     b.instrumentType,
		Volume:             b.volume,
		YesterdayVolume:    b.yesterdayVolume,
		FrozenTotal:        b.frozenTotal,
		FrozenYesterday:    b.frozenYesterday,
		LastPrice:          b.lastPrice,
		AvgOpenPrice:       b.avgOpenPrice,
		PositionCostPrice:  b.positionCostPrice,
		ClosePrice:         b.closePrice,
		PreClosePrice:      b.preClosePrice,
		SettlementPrice:    b.settlementPrice,
		PreSettlementPrice: b.preSettlementPrice,
		RealizedPnl:        b.realizedPnl,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Package book keeps the account book of one trading desk or strategy.
//
// A Book is a synchronous state machine. Its On* handlers must be called
// one at a time, in event order, by a single dispatcher; the book does no
// locking of its own. Margin, market value, unrealized pnl and dynamic
// equity are summed over the positions on every read.
package book

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/events"
	"github.com/rustyeddy/bookkeeper/location"
	"github.com/rustyeddy/bookkeeper/market"
	"github.com/rustyeddy/bookkeeper/position"
)

// Role says whether the hosting process consolidates books (the ledger)
// or runs a single strategy.
type Role int8

const (
	RoleStrategy Role = iota
	RoleLedger
)

// Host is the dispatcher context a book runs under.
type Host interface {
	// Now is the current event time in nanoseconds.
	Now() int64
	// TradingDay is used when a book is built without one.
	TradingDay() time.Time
}

// Options seeds a new book. Zero values are valid.
type Options struct {
	TradingDay     time.Time
	InitialEquity  float64
	StaticEquity   float64
	Avail          float64
	FrozenCash     float64
	FrozenMargin   float64
	IntradayFee    float64
	AccumulatedFee float64
	RealizedPnl    float64

	Role      Role
	Publisher events.Publisher
	Logger    *zap.Logger
}

type Book struct {
	host Host
	loc  location.Location
	tags broker.Tags
	role Role
	pub  events.Publisher
	log  *zap.Logger

	tradingDay time.Time

	initialEquity  float64
	staticEquity   float64
	avail          float64
	frozenCash     float64
	frozenMargin   float64
	intradayFee    float64
	accumulatedFee float64
	realizedPnl    float64

	orders    map[uint64]broker.Order
	tickers   *market.QuoteStore
	positions *Directory

	lastCheck int64
}

// New builds the book kept at loc. It fails only when loc cannot keep a book.
func New(host Host, loc location.Location, opts Options) (*Book, error) {
	tags, err := TagsFromLocation(loc)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	b := &Book{
		host:           host,
		loc:            loc,
		tags:           tags,
		role:           opts.Role,
		pub:            opts.Publisher,
		log:            log.With(zap.String("location", loc.UName()), zap.String("uid", fmt.Sprintf("%08x", loc.UID))),
		tradingDay:     opts.TradingDay,
		initialEquity:  opts.InitialEquity,
		staticEquity:   opts.StaticEquity,
		avail:          opts.Avail,
		frozenCash:     opts.FrozenCash,
		frozenMargin:   opts.FrozenMargin,
		intradayFee:    opts.IntradayFee,
		accumulatedFee: opts.AccumulatedFee,
		realizedPnl:    opts.RealizedPnl,
		orders:         make(map[uint64]broker.Order),
		tickers:        market.NewQuoteStore(),
		positions:      NewDirectory(tags.HolderUID),
	}
	if b.tradingDay.IsZero() && host != nil {
		b.tradingDay = host.TradingDay()
	}
	return b, nil
}

func (b *Book) Location() location.Location { return b.loc }
func (b *Book) Tags() broker.Tags           { return b.tags }
func (b *Book) Role() Role                  { return b.role }
func (b *Book) TradingDay() time.Time       { return b.tradingDay }

func (b *Book) InitialEquity() float64  { return b.initialEquity }
func (b *Book) StaticEquity() float64   { return b.staticEquity }
func (b *Book) Avail() float64          { return b.avail }
func (b *Book) FrozenCash() float64     { return b.frozenCash }
func (b *Book) FrozenMargin() float64   { return b.frozenMargin }
func (b *Book) IntradayFee() float64    { return b.intradayFee }
func (b *Book) AccumulatedFee() float64 { return b.accumulatedFee }
func (b *Book) RealizedPnl() float64    { return b.realizedPnl }

func (b *Book) TotalCash() float64 { return b.avail + b.frozenCash }

func (b *Book) Margin() float64 {
	var sum float64
	for _, p := range b.positions.list {
		sum += p.Margin()
	}
	return sum
}

// MarketValue only counts fully-paid positions.
func (b *Book) MarketValue() float64 {
	var sum float64
	for _, p := range b.positions.list {
		if p.Kind() == position.FullyPaid {
			sum += p.MarketValue()
		}
	}
	return sum
}

func (b *Book) DynamicEquity() float64 {
	total := b.avail
	for _, p := range b.positions.list {
		switch p.Kind() {
		case position.Margined:
			total += p.Margin() + p.PositionPnl()
		case position.FullyPaid:
			total += p.MarketValue()
		}
	}
	return total
}

func (b *Book) UnrealizedPnl() float64 {
	var sum float64
	for _, p := range b.positions.list {
		sum += p.UnrealizedPnl()
	}
	return sum
}

// ActiveOrders returns orders that can still trade, by order id.
func (b *Book) ActiveOrders() []broker.Order {
	var out []broker.Order
	for _, o := range b.orders {
		if o.Status.Active() {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func (b *Book) Order(orderID uint64) (broker.Order, bool) {
	o, ok := b.orders[orderID]
	return o, ok
}

func (b *Book) Position(instrumentID, exchangeID string, dir market.Direction) (position.Position, bool) {
	return b.positions.Get(instrumentID, exchangeID, dir)
}

func (b *Book) Positions() []position.Position { return b.positions.All() }

func (b *Book) Ticker(instrumentID, exchangeID string) (market.Quote, bool) {
	return b.tickers.Get(instrumentID, exchangeID)
}

// LastPrice is the last valid traded price, or 0.
func (b *Book) LastPrice(instrumentID, exchangeID string) float64 {
	return b.tickers.LastPrice(instrumentID, exchangeID)
}

// FrozenPrice is the price frozen when the order was input, or 0.
func (b *Book) FrozenPrice(orderID uint64) float64 {
	if o, ok := b.orders[orderID]; ok {
		return o.FrozenPrice
	}
	return 0
}

func (b *Book) stamp() broker.Stamp {
	s := broker.Stamp{Tags: b.tags, TradingDay: b.tradingDay.Format(broker.DayLayout)}
	if b.host != nil {
		s.UpdateTime = b.host.Now()
	}
	return s
}

// Asset projects the book onto an Asset record.
func (b *Book) Asset() broker.Asset {
	return broker.Asset{
		Stamp:          b.stamp(),
		InitialEquity:  b.initialEquity,
		StaticEquity:   b.staticEquity,
		DynamicEquity:  b.DynamicEquity(),
		Avail:          b.avail,
		Margin:         b.Margin(),
		MarketValue:    b.MarketValue(),
		FrozenCash:     b.frozenCash,
		FrozenMargin:   b.frozenMargin,
		IntradayFee:    b.intradayFee,
		AccumulatedFee: b.accumulatedFee,
		UnrealizedPnl:  b.UnrealizedPnl(),
		RealizedPnl:    b.realizedPnl,
	}
}

// Event is the ledger level snapshot published after book changes.
func (b *Book) Event() events.Event { return events.NewAsset(b.Asset()) }

// PositionEvent is the snapshot of one position, stamped with this book's identity.
func (b *Book) PositionEvent(p position.Position) events.Event {
	r := p.Report()
	r.Stamp = b.stamp()
	return events.NewPosition(r)
}

func (b *Book) publish(e events.Event) {
	if b.pub == nil {
		return
	}
	b.pub.Publish(e)
}

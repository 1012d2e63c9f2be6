package broker

import (
	"time"

	"github.com/rustyeddy/bookkeeper/market"
)

// DayLayout formats trading days on published records.
const DayLayout = "20060102"

// ParseDay parses a YYYYMMDD trading day in UTC.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

type LedgerCategory int8

const (
	LedgerAccount LedgerCategory = iota
	LedgerStrategy
)

func (c LedgerCategory) String() string {
	if c == LedgerStrategy {
		return "Strategy"
	}
	return "Account"
}

// Tags identify the book a record belongs to.
type Tags struct {
	HolderUID      uint32
	LedgerCategory LedgerCategory
	SourceID       string
	AccountID      string
	ClientID       string
}

// Stamp is attached to every published snapshot.
type Stamp struct {
	Tags
	TradingDay string // YYYYMMDD
	UpdateTime int64  // nanoseconds, wall clock
}

// OrderInput is a locally originated order intent.
type OrderInput struct {
	OrderID      uint64
	InstrumentID string
	ExchangeID   string
	Side         market.Side
	Offset       market.Offset
	PriceType    market.PriceType
	LimitPrice   float64
	FrozenPrice  float64
	Volume       float64
}

type Order struct {
	OrderID      uint64
	InstrumentID string
	ExchangeID   string
	Side         market.Side
	Offset       market.Offset
	PriceType    market.PriceType
	LimitPrice   float64
	FrozenPrice  float64
	Volume       float64
	VolumeLeft   float64
	Status       market.OrderStatus
	InsertTime   int64
	UpdateTime   int64
	Tax          float64
	Commission   float64
}

// OrderFromInput builds the local mirror of an order that has not reached the broker yet.
func OrderFromInput(in OrderInput) Order {
	return Order{
		OrderID:      in.OrderID,
		InstrumentID: in.InstrumentID,
		ExchangeID:   in.ExchangeID,
		Side:         in.Side,
		Offset:       in.Offset,
		PriceType:    in.PriceType,
		LimitPrice:   in.LimitPrice,
		FrozenPrice:  in.FrozenPrice,
		Volume:       in.Volume,
		VolumeLeft:   in.Volume,
		Status:       market.StatusSubmitted,
	}
}

// Trade is a single fill.
type Trade struct {
	TradeID      uint64
	OrderID      uint64
	InstrumentID string
	ExchangeID   string
	Side         market.Side
	Offset       market.Offset
	Price        float64
	Volume       float64
	TradeTime    int64
	Tax          float64
	Commission   float64
}

// Asset is the cash side of a book, as reported by a broker or published by a book.
type Asset struct {
	Stamp
	InitialEquity  float64
	StaticEquity   float64
	DynamicEquity  float64
	Avail          float64
	Margin         float64
	MarketValue    float64
	FrozenCash     float64
	FrozenMargin   float64
	IntradayFee    float64
	AccumulatedFee float64
	UnrealizedPnl  float64
	RealizedPnl    float64
}

// PositionReport is the flat record form of one position.
type PositionReport struct {
	Stamp
	InstrumentID       string
	ExchangeID         string
	Direction          market.Direction
	InstrumentType     market.InstrumentType
	Volume             float64
	YesterdayVolume    float64
	FrozenTotal        float64
	FrozenYesterday    float64
	LastPrice          float64
	AvgOpenPrice       float64
	PositionCostPrice  float64
	ClosePrice         float64
	PreClosePrice      float64
	SettlementPrice    float64
	PreSettlementPrice float64
	Margin             float64
	MarketValue        float64
	PositionPnl        float64
	UnrealizedPnl      float64
	RealizedPnl        float64
}

// PositionDetail is one open lot behind a position.
type PositionDetail struct {
	InstrumentID string
	ExchangeID   string
	Direction    market.Direction
	Volume       float64
	OpenPrice    float64
	OpenDate     string
	TradeID      uint64
}

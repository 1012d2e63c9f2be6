package position

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
)

var ErrInvalidReport = errors.New("invalid position report")

// FromReport rebuilds a position from a broker report. The report's trading
// day wins over day when it is set.
func FromReport(holder uint32, day time.Time, r broker.PositionReport) (Position, error) {
	if err := validate(r); err != nil {
		return nil, err
	}
	if r.TradingDay != "" {
		d, err := broker.ParseDay(r.TradingDay)
		if err != nil {
			return nil, fmt.Errorf("%w: trading day %q: %v", ErrInvalidReport, r.TradingDay, err)
		}
		day = d
	}

	typ := r.InstrumentType
	if typ == market.InstrumentUnknown {
		typ = market.InstrumentTypeOf(r.InstrumentID, r.ExchangeID)
	}
	key := Key{InstrumentID: r.InstrumentID, ExchangeID: r.ExchangeID, Direction: r.Direction}

	b := newBase(holder, key, typ)
	b.tradingDay = day
	b.volume = r.Volume
	b.yesterdayVolume = r.YesterdayVolume
	b.lastPrice = r.LastPrice
	b.avgOpenPrice = r.AvgOpenPrice
	b.positionCostPrice = r.PositionCostPrice
	b.closePrice = r.ClosePrice
	b.preClosePrice = r.PreClosePrice
	b.settlementPrice = r.SettlementPrice
	b.preSettlementPrice = r.PreSettlementPrice
	b.realizedPnl = r.RealizedPnl
	if b.positionCostPrice == 0 {
		b.positionCostPrice = b.avgOpenPrice
	}

	if typ.Margined() {
		return newFuture(b), nil
	}
	return &Stock{base: b}, nil
}

func validate(r broker.PositionReport) error {
	switch {
	case r.InstrumentID == "":
		return fmt.Errorf("%w: missing instrument id", ErrInvalidReport)
	case r.ExchangeID == "":
		return fmt.Errorf("%w: %s: missing exchange id", ErrInvalidReport, r.InstrumentID)
	case r.Direction != market.Long && r.Direction != market.Short:
		return fmt.Errorf("%w: %s: direction %d", ErrInvalidReport, r.InstrumentID, r.Direction)
	case r.Volume < 0 || r.YesterdayVolume < 0:
		return fmt.Errorf("%w: %s: negative volume", ErrInvalidReport, r.InstrumentID)
	case r.YesterdayVolume > r.Volume:
		return fmt.Errorf("%w: %s: yesterday volume %v exceeds volume %v", ErrInvalidReport, r.InstrumentID, r.YesterdayVolume, r.Volume)
	}
	for _, v := range []float64{r.Volume, r.LastPrice, r.AvgOpenPrice, r.PositionCostPrice, r.RealizedPnl} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s: non-finite field", ErrInvalidReport, r.InstrumentID)
		}
	}
	return nil
}

// record is the loosely typed form positions arrive in from dict-like feeds.
type record struct {
	TradingDay         string  `yaml:"trading_day"`
	InstrumentID       string  `yaml:"instrument_id"`
	ExchangeID         string  `yaml:"exchange_id"`
	Direction          any     `yaml:"direction"`
	InstrumentType     int8    `yaml:"instrument_type"`
	Volume             float64 `yaml:"volume"`
	YesterdayVolume    float64 `yaml:"yesterday_volume"`
	LastPrice          float64 `yaml:"last_price"`
	AvgOpenPrice       float64 `yaml:"avg_open_price"`
	PositionCostPrice  float64 `yaml:"position_cost_price"`
	ClosePrice         float64 `yaml:"close_price"`
	PreClosePrice      float64 `yaml:"pre_close_price"`
	SettlementPrice    float64 `yaml:"settlement_price"`
	PreSettlementPrice float64 `yaml:"pre_settlement_price"`
	RealizedPnl        float64 `yaml:"realized_pnl"`
}

// DecodeRecord converts a map keyed by snake_case field names into a report.
func DecodeRecord(rec map[string]any) (broker.PositionReport, error) {
	raw, err := yaml.Marshal(rec)
	if err != nil {
		return broker.PositionReport{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	var r record
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return broker.PositionReport{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	dir := market.Long
	switch d := r.Direction.(type) {
	case nil:
	case int:
		dir = market.Direction(d)
	case string:
		if dir, err = market.ParseDirection(d); err != nil {
			return broker.PositionReport{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
	default:
		return broker.PositionReport{}, fmt.Errorf("%w: direction of type %T", ErrInvalidReport, d)
	}

	return broker.PositionReport{
		Stamp:              broker.Stamp{TradingDay: r.TradingDay},
		InstrumentID:       r.InstrumentID,
		ExchangeID:         r.ExchangeID,
		Direction:          dir,
		InstrumentType:     market.InstrumentType(r.InstrumentType),
		Volume:             r.Volume,
		YesterdayVolume:    r.YesterdayVolume,
		LastPrice:          r.LastPrice,
		AvgOpenPrice:       r.AvgOpenPrice,
		PositionCostPrice:  r.PositionCostPrice,
		ClosePrice:         r.ClosePrice,
		PreClosePrice:      r.PreClosePrice,
		SettlementPrice:    r.SettlementPrice,
		PreSettlementPrice: r.PreSettlementPrice,
		RealizedPnl:        r.RealizedPnl,
	}, nil
}

// FromRecord is DecodeRecord followed by FromReport.
func FromRecord(holder uint32, day time.Time, rec map[string]any) (Position, error) {
	r, err := DecodeRecord(rec)
	if err != nil {
		return nil, err
	}
	return FromReport(holder, day, r)
}

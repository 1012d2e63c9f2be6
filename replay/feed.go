// Package replay drives a book from a recorded event file.
package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
)

var ErrUnknownEvent = errors.New("unknown event")

type Kind string

const (
	KindQuote      Kind = "quote"
	KindOrderInput Kind = "order_input"
	KindOrder      Kind = "order"
	KindTrade      Kind = "trade"
	KindAsset      Kind = "asset"
	KindPositions  Kind = "position"
	KindTradingDay Kind = "trading_day"
)

// Event is one decoded row. Only the field matching Kind is set.
// Consecutive position rows with the same time arrive as one Event; rows
// that fail to decode are reported in Skipped and the rest are kept.
type Event struct {
	Time int64
	Kind Kind

	Quote      market.Quote
	OrderInput broker.OrderInput
	Order      broker.Order
	Trade      broker.Trade
	Asset      broker.Asset
	Positions  []broker.PositionReport
	TradingDay time.Time

	// Skipped holds position rows of the batch that could not be decoded.
	Skipped []error
}

// CSVFeed reads rows of the form time,event,fields...
//
//	quote:       instrument,exchange,last[,pre_close,close,settlement,pre_settlement,volume]
//	order_input: order_id,instrument,exchange,side,offset,price_type,limit_price,volume
//	order:       order_id,instrument,exchange,side,offset,status,volume,volume_left[,limit_price]
//	trade:       trade_id,order_id,instrument,exchange,side,offset,price,volume[,commission,tax]
//	asset:       avail[,realized_pnl]
//	position:    instrument,exchange,direction,volume,yesterday_volume,avg_open_price[,last]
//	trading_day: YYYYMMDD
//
// time is RFC3339 or integer nanoseconds. A header row starting with
// "time", blank rows and rows starting with # are skipped.
type CSVFeed struct {
	f       io.Closer
	r       *csv.Reader
	started bool

	pending *Event
}

func OpenCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	feed := NewCSVFeed(f)
	feed.f = f
	return feed, nil
}

func NewCSVFeed(r io.Reader) *CSVFeed {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	return &CSVFeed{r: cr}
}

func (f *CSVFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Next returns the next event, or false at the end of the file.
func (f *CSVFeed) Next() (Event, bool, error) {
	ev, ok, err := f.take()
	if err != nil || !ok || ev.Kind != KindPositions {
		return ev, ok, err
	}
	for {
		more, ok, err := f.take()
		if err != nil {
			return Event{}, false, err
		}
		if !ok {
			return ev, true, nil
		}
		if more.Kind != KindPositions || more.Time != ev.Time {
			f.pending = &more
			return ev, true, nil
		}
		ev.Positions = append(ev.Positions, more.Positions...)
		ev.Skipped = append(ev.Skipped, more.Skipped...)
	}
}

func (f *CSVFeed) take() (Event, bool, error) {
	if f.pending != nil {
		ev := *f.pending
		f.pending = nil
		return ev, true, nil
	}
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Event{}, false, nil
		}
		if err != nil {
			return Event{}, false, err
		}
		first := !f.started
		f.started = true
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if first && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}
		line, _ := f.r.FieldPos(0)
		ev, err := parseRow(row)
		if err != nil {
			return Event{}, false, fmt.Errorf("line %d: %w", line, err)
		}
		for i, err := range ev.Skipped {
			ev.Skipped[i] = fmt.Errorf("line %d: %w", line, err)
		}
		return ev, true, nil
	}
}

func parseRow(row []string) (Event, error) {
	if len(row) < 2 {
		return Event{}, fmt.Errorf("need time and event columns: %v", row)
	}
	ts, err := parseTime(row[0])
	if err != nil {
		return Event{}, err
	}

	ev := Event{Time: ts, Kind: Kind(strings.ToLower(strings.TrimSpace(row[1])))}
	a := args(row[2:])

	switch ev.Kind {
	case KindQuote:
		ev.Quote, err = parseQuote(ts, a)
	case KindOrderInput:
		ev.OrderInput, err = parseOrderInput(a)
	case KindOrder:
		ev.Order, err = parseOrder(ts, a)
	case KindTrade:
		ev.Trade, err = parseTrade(ts, a)
	case KindAsset:
		ev.Asset, err = parseAsset(ts, a)
	case KindPositions:
		// a bad position row is skipped, not fatal
		p, perr := parsePosition(a)
		if perr != nil {
			ev.Skipped = []error{fmt.Errorf("position: %w", perr)}
		} else {
			ev.Positions = []broker.PositionReport{p}
		}
	case KindTradingDay:
		ev.TradingDay, err = broker.ParseDay(a.str(0))
	default:
		return Event{}, fmt.Errorf("%w %q", ErrUnknownEvent, row[1])
	}
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w", ev.Kind, err)
	}
	return ev, nil
}

func parseTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("bad time %q: %w", s, err)
	}
	return t.UnixNano(), nil
}

type args []string

func (a args) str(i int) string {
	if i >= len(a) {
		return ""
	}
	return strings.TrimSpace(a[i])
}

func (a args) need(n int) error {
	if len(a) < n {
		return fmt.Errorf("need %d fields, got %d", n, len(a))
	}
	return nil
}

// float parses field i. Missing or empty optional fields are 0.
func (a args) float(i int) (float64, error) {
	s := a.str(i)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i, err)
	}
	return v, nil
}

func (a args) uint(i int) (uint64, error) {
	v, err := strconv.ParseUint(a.str(i), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i, err)
	}
	return v, nil
}

func (a args) floats(from int, dst ...*float64) error {
	for i, p := range dst {
		v, err := a.float(from + i)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func parseQuote(ts int64, a args) (market.Quote, error) {
	if err := a.need(3); err != nil {
		return market.Quote{}, err
	}
	q := market.Quote{InstrumentID: a.str(0), ExchangeID: a.str(1), DataTime: ts}
	err := a.floats(2, &q.LastPrice, &q.PreClosePrice, &q.ClosePrice, &q.SettlementPrice, &q.PreSettlement, &q.Volume)
	return q, err
}

func parseOrderInput(a args) (broker.OrderInput, error) {
	var in broker.OrderInput
	if err := a.need(8); err != nil {
		return in, err
	}
	var err error
	if in.OrderID, err = a.uint(0); err != nil {
		return in, err
	}
	in.InstrumentID, in.ExchangeID = a.str(1), a.str(2)
	if in.Side, err = market.ParseSide(a.str(3)); err != nil {
		return in, err
	}
	if in.Offset, err = market.ParseOffset(a.str(4)); err != nil {
		return in, err
	}
	if in.PriceType, err = market.ParsePriceType(a.str(5)); err != nil {
		return in, err
	}
	err = a.floats(6, &in.LimitPrice, &in.Volume)
	return in, err
}

func parseOrder(ts int64, a args) (broker.Order, error) {
	o := broker.Order{UpdateTime: ts}
	if err := a.need(8); err != nil {
		return o, err
	}
	var err error
	if o.OrderID, err = a.uint(0); err != nil {
		return o, err
	}
	o.InstrumentID, o.ExchangeID = a.str(1), a.str(2)
	if o.Side, err = market.ParseSide(a.str(3)); err != nil {
		return o, err
	}
	if o.Offset, err = market.ParseOffset(a.str(4)); err != nil {
		return o, err
	}
	if o.Status, err = market.ParseOrderStatus(a.str(5)); err != nil {
		return o, err
	}
	err = a.floats(6, &o.Volume, &o.VolumeLeft, &o.LimitPrice)
	return o, err
}

func parseTrade(ts int64, a args) (broker.Trade, error) {
	t := broker.Trade{TradeTime: ts}
	if err := a.need(8); err != nil {
		return t, err
	}
	var err error
	if t.TradeID, err = a.uint(0); err != nil {
		return t, err
	}
	if t.OrderID, err = a.uint(1); err != nil {
		return t, err
	}
	t.InstrumentID, t.ExchangeID = a.str(2), a.str(3)
	if t.Side, err = market.ParseSide(a.str(4)); err != nil {
		return t, err
	}
	if t.Offset, err = market.ParseOffset(a.str(5)); err != nil {
		return t, err
	}
	err = a.floats(6, &t.Price, &t.Volume, &t.Commission, &t.Tax)
	return t, err
}

func parseAsset(ts int64, a args) (broker.Asset, error) {
	as := broker.Asset{Stamp: broker.Stamp{UpdateTime: ts}}
	if err := a.need(1); err != nil {
		return as, err
	}
	err := a.floats(0, &as.Avail, &as.RealizedPnl)
	return as, err
}

// parsePosition only decodes fields. Range checks are left to the book.
func parsePosition(a args) (broker.PositionReport, error) {
	var p broker.PositionReport
	if err := a.need(6); err != nil {
		return p, err
	}
	p.InstrumentID, p.ExchangeID = a.str(0), a.str(1)
	var err error
	if p.Direction, err = market.ParseDirection(a.str(2)); err != nil {
		return p, err
	}
	p.InstrumentType = market.InstrumentTypeOf(p.InstrumentID, p.ExchangeID)
	err = a.floats(3, &p.Volume, &p.YesterdayVolume, &p.AvgOpenPrice, &p.LastPrice)
	return p, err
}

package book

import (
	"fmt"
	"time"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
	"github.com/rustyeddy/bookkeeper/position"
)

// Directory holds one position per (instrument, exchange, direction) and
// remembers insertion order.
type Directory struct {
	holder uint32
	index  map[position.Key]int
	list   []position.Position
}

func NewDirectory(holder uint32) *Directory {
	return &Directory{holder: holder, index: make(map[position.Key]int)}
}

func key(instrumentID, exchangeID string, dir market.Direction) position.Key {
	return position.Key{InstrumentID: instrumentID, ExchangeID: exchangeID, Direction: dir}
}

func (d *Directory) Get(instrumentID, exchangeID string, dir market.Direction) (position.Position, bool) {
	i, ok := d.index[key(instrumentID, exchangeID, dir)]
	if !ok {
		return nil, false
	}
	return d.list[i], true
}

// GetOrCreate never fails: a miss inserts a zero position on day.
func (d *Directory) GetOrCreate(instrumentID, exchangeID string, dir market.Direction, day time.Time) position.Position {
	if p, ok := d.Get(instrumentID, exchangeID, dir); ok {
		return p
	}
	p := position.New(d.holder, day, key(instrumentID, exchangeID, dir))
	d.put(p)
	return p
}

func (d *Directory) put(p position.Position) {
	if i, ok := d.index[p.Key()]; ok {
		d.list[i] = p
		return
	}
	d.index[p.Key()] = len(d.list)
	d.list = append(d.list, p)
}

// ReplaceAll discards every position and rebuilds the directory from
// reports. Entries that fail to decode are skipped and returned as errors;
// the rest are kept.
func (d *Directory) ReplaceAll(reports []broker.PositionReport, day time.Time) []error {
	next := NewDirectory(d.holder)
	var skipped []error
	for i, r := range reports {
		p, err := position.FromReport(d.holder, day, r)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("position %d: %w", i, err))
			continue
		}
		next.put(p)
	}
	d.index, d.list = next.index, next.list
	return skipped
}

// All returns the positions in insertion order.
func (d *Directory) All() []position.Position {
	out := make([]position.Position, len(d.list))
	copy(out, d.list)
	return out
}

func (d *Directory) Len() int { return len(d.list) }

package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/bookkeeper/book"
	"github.com/rustyeddy/bookkeeper/location"
)

// Dispatcher hosts one book and feeds it events one at a time.
type Dispatcher struct {
	mu   sync.Mutex
	book *book.Book
	log  *zap.Logger

	now atomic.Int64
	day atomic.Pointer[time.Time]
}

func NewDispatcher(day time.Time, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{log: log}
	d.day.Store(&day)
	return d
}

// Now is the time of the event being dispatched.
func (d *Dispatcher) Now() int64 { return d.now.Load() }

func (d *Dispatcher) TradingDay() time.Time { return *d.day.Load() }

// Open builds the book kept at loc and attaches it to d.
func (d *Dispatcher) Open(loc location.Location, opts book.Options) (*book.Book, error) {
	if opts.Logger == nil {
		opts.Logger = d.log
	}
	b, err := book.New(d, loc, opts)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.book = b
	d.mu.Unlock()
	return b, nil
}

func (d *Dispatcher) Book() *book.Book {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.book
}

// Dispatch hands e to the attached book.
func (d *Dispatcher) Dispatch(e Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.book == nil {
		return errors.New("dispatcher has no book")
	}
	d.now.Store(e.Time)

	b := d.book
	switch e.Kind {
	case KindQuote:
		b.OnQuote(e.Time, e.Quote)
	case KindOrderInput:
		b.OnOrderInput(e.Time, e.OrderInput)
	case KindOrder:
		b.OnOrder(e.Order)
	case KindTrade:
		b.OnTrade(e.Trade)
	case KindAsset:
		b.OnAsset(e.Asset)
	case KindPositions:
		for _, err := range e.Skipped {
			d.log.Error("skip position", zap.Error(err))
		}
		b.OnPositions(e.Positions)
	case KindTradingDay:
		day := e.TradingDay
		d.day.Store(&day)
		b.OnTradingDay(day)
	default:
		return fmt.Errorf("%w %q", ErrUnknownEvent, e.Kind)
	}
	return nil
}

// Run dispatches every event of feed until it ends or ctx is done. It
// returns the number of events dispatched.
func (d *Dispatcher) Run(ctx context.Context, feed *CSVFeed) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		e, ok, err := feed.Next()
		if err != nil {
			return n, err
		}
		if !ok {
			d.log.Debug("replay done", zap.Int("events", n))
			return n, nil
		}
		if err := d.Dispatch(e); err != nil {
			return n, err
		}
		n++
	}
}

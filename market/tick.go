package market

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Quote is the latest market snapshot for one instrument.
type Quote struct {
	InstrumentID string
	ExchangeID   string
	DataTime     int64 // nanoseconds

	LastPrice       float64
	PreClosePrice   float64
	ClosePrice      float64
	SettlementPrice float64
	PreSettlement   float64
	Volume          float64
}

func (q Quote) SymbolID() uint64 { return SymbolID(q.InstrumentID, q.ExchangeID) }

// SymbolID hashes "instrument.exchange" into the key quotes are stored under.
func SymbolID(instrumentID, exchangeID string) uint64 {
	return xxhash.Sum64String(instrumentID + "." + exchangeID)
}

// IsValidPrice rejects zero, negative, NaN and the feed's max-float sentinels.
func IsValidPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0) && p < math.MaxFloat64/2
}

// QuoteStore keeps the most recent quote per symbol.
type QuoteStore struct {
	quotes map[uint64]Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[uint64]Quote)}
}

func (s *QuoteStore) Set(q Quote) {
	s.quotes[q.SymbolID()] = q
}

func (s *QuoteStore) Get(instrumentID, exchangeID string) (Quote, bool) {
	q, ok := s.quotes[SymbolID(instrumentID, exchangeID)]
	return q, ok
}

// LastPrice returns the last traded price, or 0 when no valid quote is known.
func (s *QuoteStore) LastPrice(instrumentID, exchangeID string) float64 {
	q, ok := s.Get(instrumentID, exchangeID)
	if !ok || !IsValidPrice(q.LastPrice) {
		return 0
	}
	return q.LastPrice
}

func (s *QuoteStore) Len() int { return len(s.quotes) }

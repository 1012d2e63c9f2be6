// market/instruments.go
package market

import "strings"

// Exchange ids used for instrument classification.
const (
	SSE   = "SSE"
	SZSE  = "SZSE"
	BSE   = "BSE"
	SHFE  = "SHFE"
	DCE   = "DCE"
	CZCE  = "CZCE"
	CFFEX = "CFFEX"
	INE   = "INE"
	GFEX  = "GFEX"
)

var futureExchanges = map[string]bool{
	SHFE: true, DCE: true, CZCE: true, CFFEX: true, INE: true, GFEX: true,
}

// ContractMeta carries the per-product terms a margined position needs.
type ContractMeta struct {
	Product            string
	ContractMultiplier float64
	LongMarginRatio    float64
	ShortMarginRatio   float64
}

// Instruments is keyed by product code (instrument id without the delivery month).
var Instruments = map[string]ContractMeta{
	"rb": {Product: "rb", ContractMultiplier: 10, LongMarginRatio: 0.13, ShortMarginRatio: 0.13},
	"cu": {Product: "cu", ContractMultiplier: 5, LongMarginRatio: 0.12, ShortMarginRatio: 0.12},
	"au": {Product: "au", ContractMultiplier: 1000, LongMarginRatio: 0.10, ShortMarginRatio: 0.10},
	"m":  {Product: "m", ContractMultiplier: 10, LongMarginRatio: 0.10, ShortMarginRatio: 0.10},
	"SR": {Product: "SR", ContractMultiplier: 10, LongMarginRatio: 0.09, ShortMarginRatio: 0.09},
	"sc": {Product: "sc", ContractMultiplier: 1000, LongMarginRatio: 0.15, ShortMarginRatio: 0.15},
	"IF": {Product: "IF", ContractMultiplier: 300, LongMarginRatio: 0.12, ShortMarginRatio: 0.12},
	"IC": {Product: "IC", ContractMultiplier: 200, LongMarginRatio: 0.14, ShortMarginRatio: 0.14},
}

// DefaultContract is used for futures whose product is not in Instruments.
var DefaultContract = ContractMeta{ContractMultiplier: 1, LongMarginRatio: 0.1, ShortMarginRatio: 0.1}

// Product strips the trailing delivery month: "rb2410" -> "rb".
func Product(instrumentID string) string {
	return strings.TrimRightFunc(instrumentID, func(r rune) bool { return r >= '0' && r <= '9' })
}

func Contract(instrumentID string) ContractMeta {
	if meta, ok := Instruments[Product(instrumentID)]; ok {
		return meta
	}
	meta := DefaultContract
	meta.Product = Product(instrumentID)
	return meta
}

// InstrumentTypeOf classifies an instrument from its exchange and code.
func InstrumentTypeOf(instrumentID, exchangeID string) InstrumentType {
	ex := strings.ToUpper(exchangeID)
	if futureExchanges[ex] {
		return InstrumentFuture
	}
	switch ex {
	case SSE:
		switch {
		case strings.HasPrefix(instrumentID, "6"):
			return InstrumentStock
		case strings.HasPrefix(instrumentID, "5"):
			return InstrumentFund
		case strings.HasPrefix(instrumentID, "0"):
			return InstrumentIndex
		case strings.HasPrefix(instrumentID, "1"), strings.HasPrefix(instrumentID, "2"):
			return InstrumentBond
		}
	case SZSE:
		switch {
		case strings.HasPrefix(instrumentID, "00"), strings.HasPrefix(instrumentID, "30"):
			return InstrumentStock
		case strings.HasPrefix(instrumentID, "15"), strings.HasPrefix(instrumentID, "16"):
			return InstrumentFund
		case strings.HasPrefix(instrumentID, "39"):
			return InstrumentIndex
		case strings.HasPrefix(instrumentID, "1"):
			return InstrumentBond
		}
	case BSE:
		return InstrumentStock
	}
	return InstrumentUnknown
}

// Margined reports whether positions in the instrument are carried on margin.
func (t InstrumentType) Margined() bool { return t == InstrumentFuture }

package market

import (
	"fmt"
	"strings"
)

type Direction int8

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "Long"
	case Short:
		return "Short"
	}
	return fmt.Sprintf("Direction(%d)", int8(d))
}

// Sign is +1 for Long and -1 for Short.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "0":
		return Long, nil
	case "short", "1":
		return Short, nil
	}
	return Long, fmt.Errorf("invalid direction %q", s)
}

type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "Sell"
	}
	return "Buy"
}

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b":
		return Buy, nil
	case "sell", "s":
		return Sell, nil
	}
	return Buy, fmt.Errorf("invalid side %q", s)
}

type Offset int8

const (
	Open Offset = iota
	Close
	CloseToday
	CloseYesterday
)

func (o Offset) String() string {
	switch o {
	case Open:
		return "Open"
	case Close:
		return "Close"
	case CloseToday:
		return "CloseToday"
	case CloseYesterday:
		return "CloseYesterday"
	}
	return fmt.Sprintf("Offset(%d)", int8(o))
}

// Closing reports whether the offset reduces an existing position.
func (o Offset) Closing() bool { return o != Open }

func ParseOffset(s string) (Offset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "":
		return Open, nil
	case "close":
		return Close, nil
	case "closetoday":
		return CloseToday, nil
	case "closeyesterday":
		return CloseYesterday, nil
	}
	return Open, fmt.Errorf("invalid offset %q", s)
}

type PriceType int8

const (
	Limit PriceType = iota
	Any             // market order, best available price
	FakBest5
	ForwardBest
	ReverseBest
	Fak
	Fok
)

func ParsePriceType(s string) (PriceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "limit", "":
		return Limit, nil
	case "any", "market":
		return Any, nil
	case "fakbest5":
		return FakBest5, nil
	case "forwardbest":
		return ForwardBest, nil
	case "reversebest":
		return ReverseBest, nil
	case "fak":
		return Fak, nil
	case "fok":
		return Fok, nil
	}
	return Limit, fmt.Errorf("invalid price type %q", s)
}

type OrderStatus int8

const (
	StatusUnknown OrderStatus = iota
	StatusSubmitted
	StatusPending
	StatusCancelled
	StatusRejected
	StatusFilled
	StatusPartialFilledNotActive
	StatusPartialFilledActive
)

var statusNames = map[OrderStatus]string{
	StatusUnknown:                "Unknown",
	StatusSubmitted:              "Submitted",
	StatusPending:                "Pending",
	StatusCancelled:              "Cancelled",
	StatusRejected:               "Rejected",
	StatusFilled:                 "Filled",
	StatusPartialFilledNotActive: "PartialFilledNotActive",
	StatusPartialFilledActive:    "PartialFilledActive",
}

func (s OrderStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("OrderStatus(%d)", int8(s))
}

// Active reports whether an order in this status can still trade.
func (s OrderStatus) Active() bool {
	return s == StatusSubmitted || s == StatusPending || s == StatusPartialFilledActive
}

// Final reports whether the broker will send no further updates for the order.
// Unknown is neither active nor final.
func (s OrderStatus) Final() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusFilled, StatusPartialFilledNotActive:
		return true
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for st, name := range statusNames {
		if strings.ToLower(name) == want {
			return st, nil
		}
	}
	if want == "error" {
		return StatusRejected, nil
	}
	return StatusUnknown, fmt.Errorf("invalid order status %q", s)
}

type InstrumentType int8

const (
	InstrumentUnknown InstrumentType = iota
	InstrumentStock
	InstrumentFuture
	InstrumentBond
	InstrumentFund
	InstrumentIndex
)

func (t InstrumentType) String() string {
	switch t {
	case InstrumentStock:
		return "Stock"
	case InstrumentFuture:
		return "Future"
	case InstrumentBond:
		return "Bond"
	case InstrumentFund:
		return "Fund"
	case InstrumentIndex:
		return "Index"
	}
	return "Unknown"
}

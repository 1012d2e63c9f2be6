package events

import (
	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/internal/id"
)

// MsgType tags what a published snapshot carries.
type MsgType string

const (
	MsgAsset    MsgType = "Asset"
	MsgPosition MsgType = "Position"
)

// Event is an immutable point-in-time snapshot. Data is a broker.Asset for
// MsgAsset and a broker.PositionReport for MsgPosition, both held by value.
type Event struct {
	ID   string
	Type MsgType
	Data any
}

func NewAsset(a broker.Asset) Event {
	return Event{ID: id.New(), Type: MsgAsset, Data: a}
}

func NewPosition(p broker.PositionReport) Event {
	return Event{ID: id.New(), Type: MsgPosition, Data: p}
}

func (e Event) Asset() (broker.Asset, bool) {
	a, ok := e.Data.(broker.Asset)
	return a, ok
}

func (e Event) Position() (broker.PositionReport, bool) {
	p, ok := e.Data.(broker.PositionReport)
	return p, ok
}

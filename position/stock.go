package position

import (
	"time"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
)

// Stock is a fully-paid position. Volume bought today is not closable until
// the next trading day, so closing orders only freeze yesterday volume.
type Stock struct {
	base
}

func (p *Stock) Kind() Kind { return FullyPaid }

func (p *Stock) Margin() float64 { return 0 }

func (p *Stock) MarketValue() float64 {
	return p.volume * p.mark(p.avgOpenPrice)
}

func (p *Stock) PositionPnl() float64 { return p.UnrealizedPnl() }

func (p *Stock) UnrealizedPnl() float64 {
	return (p.mark(p.avgOpenPrice) - p.avgOpenPrice) * p.volume
}

func (p *Stock) ApplyQuote(q market.Quote) { p.applyQuote(q) }

func (p *Stock) ApplyOrderInput(in broker.OrderInput) {
	if in.Side == market.Sell {
		p.freeze(in.OrderID, in.Volume, true)
	}
}

func (p *Stock) ApplyOrder(o broker.Order) { p.applyOrder(o) }

func (p *Stock) ApplyTrade(t broker.Trade) {
	if t.Side == market.Buy {
		p.open(t.Price, t.Volume)
		return
	}
	avg := p.avgOpenPrice
	closed := p.close(t.OrderID, t.Volume, true)
	p.realizedPnl += (t.Price - avg) * closed
}

func (p *Stock) ApplyTradingDay(day time.Time) {
	if !p.rollDay(day) {
		return
	}
	if market.IsValidPrice(p.closePrice) {
		p.preClosePrice = p.closePrice
	} else if market.IsValidPrice(p.lastPrice) {
		p.preClosePrice = p.lastPrice
	}
	p.closePrice = 0
}

func (p *Stock) Report() broker.PositionReport {
	r := p.report()
	r.MarketValue = p.MarketValue()
	r.PositionPnl = p.PositionPnl()
	r.UnrealizedPnl = p.UnrealizedPnl()
	return r
}

package position

import (
	"time"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/market"
)

// Future is a margined position. Margin is carried on the position cost
// price, which resets to the settlement price at every day roll, so
// PositionPnl is the mark-to-market since the last settlement while
// UnrealizedPnl is measured from the open price.
type Future struct {
	base
	contractMultiplier float64
	marginRatio        float64
}

func newFuture(b base) *Future {
	meta := market.Contract(b.key.InstrumentID)
	ratio := meta.LongMarginRatio
	if b.key.Direction == market.Short {
		ratio = meta.ShortMarginRatio
	}
	return &Future{base: b, contractMultiplier: meta.ContractMultiplier, marginRatio: ratio}
}

func (p *Future) Kind() Kind { return Margined }

func (p *Future) ContractMultiplier() float64 { return p.contractMultiplier }

func (p *Future) Margin() float64 {
	return p.positionCostPrice * p.volume * p.contractMultiplier * p.marginRatio
}

func (p *Future) MarketValue() float64 {
	return p.mark(p.positionCostPrice) * p.volume * p.contractMultiplier
}

func (p *Future) PositionPnl() float64 {
	return p.pnl(p.positionCostPrice)
}

func (p *Future) UnrealizedPnl() float64 {
	return p.pnl(p.avgOpenPrice)
}

func (p *Future) pnl(from float64) float64 {
	diff := p.mark(from) - from
	return diff * p.volume * p.contractMultiplier * p.key.Direction.Sign()
}

func (p *Future) ApplyQuote(q market.Quote) { p.applyQuote(q) }

func (p *Future) ApplyOrderInput(in broker.OrderInput) {
	if in.Offset.Closing() {
		p.freeze(in.OrderID, in.Volume, in.Offset == market.CloseYesterday)
	}
}

func (p *Future) ApplyOrder(o broker.Order) { p.applyOrder(o) }

func (p *Future) ApplyTrade(t broker.Trade) {
	if !t.Offset.Closing() {
		p.open(t.Price, t.Volume)
		return
	}
	avg := p.avgOpenPrice
	closed := p.close(t.OrderID, t.Volume, t.Offset == market.CloseYesterday)
	p.realizedPnl += (t.Price - avg) * closed * p.contractMultiplier * p.key.Direction.Sign()
}

func (p *Future) ApplyTradingDay(day time.Time) {
	if !p.rollDay(day) {
		return
	}
	settle := p.settlementPrice
	if !market.IsValidPrice(settle) {
		settle = p.lastPrice
	}
	if market.IsValidPrice(settle) {
		p.preSettlementPrice = settle
		if p.volume > 0 {
			p.positionCostPrice = settle
		}
	}
	p.settlementPrice = 0
}

func (p *Future) Report() broker.PositionReport {
	r := p.report()
	r.Margin = p.Margin()
	r.MarketValue = p.MarketValue()
	r.PositionPnl = p.PositionPnl()
	r.UnrealizedPnl = p.UnrealizedPnl()
	return r
}

package broker

import "github.com/rustyeddy/bookkeeper/market"

// PositionEffect resolves which position bucket an order or trade touches.
// Fully-paid instruments only have a Long bucket; for margined instruments
// opening follows the side and closing hits the opposite bucket.
func PositionEffect(t market.InstrumentType, side market.Side, offset market.Offset) market.Direction {
	if !t.Margined() {
		return market.Long
	}
	buy := side == market.Buy
	if offset.Closing() {
		buy = !buy
	}
	if buy {
		return market.Long
	}
	return market.Short
}

// Direction is PositionEffect with the instrument type derived from the ids.
func Direction(instrumentID, exchangeID string, side market.Side, offset market.Offset) market.Direction {
	return PositionEffect(market.InstrumentTypeOf(instrumentID, exchangeID), side, offset)
}

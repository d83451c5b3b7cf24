// Package domain contains the core domain types for the scout context.
package domain

// Direction is the arbitrage direction between the two scanned markets.
type Direction string

const (
	// DirectionBuy1Sell2 means buy on market 1, sell on market 2.
	DirectionBuy1Sell2 Direction = "BUY1_SELL2"

	// DirectionBuy2Sell1 means buy on market 2, sell on market 1.
	DirectionBuy2Sell1 Direction = "BUY2_SELL1"
)

// Legs returns the ordinals (1 or 2) of the buy and sell markets.
func (d Direction) Legs() (buy, sell int) {
	if d == DirectionBuy2Sell1 {
		return 2, 1
	}
	return 1, 2
}

// Label returns the direction as "Buy@1 & Sell@2".
func (d Direction) Label() string {
	if d == DirectionBuy2Sell1 {
		return "Buy@2 & Sell@1"
	}
	return "Buy@1 & Sell@2"
}

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionBuy1Sell2, DirectionBuy2Sell1:
		return d.Label()
	default:
		return "Unknown"
	}
}

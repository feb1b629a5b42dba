package domain

import "time"

type OrderDirection string

const (
	DirectionBuy  OrderDirection = "BUY"
	DirectionSell OrderDirection = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

type TimeInForce string

const (
	GoodTilCancelled  TimeInForce = "GOOD_TIL_CANCELLED"
	ImmediateOrCancel TimeInForce = "IMMEDIATE_OR_CANCEL"
	FillOrKill        TimeInForce = "FILL_OR_KILL"
)

// Order is an order as placed on (or returned by) the exchange.
type Order struct {
	ID            string         `json:"id"`
	ClientOrderID string         `json:"clientOrderId"`
	MarketSymbol  string         `json:"marketSymbol"`
	Direction     OrderDirection `json:"direction"`
	Type          OrderType      `json:"type"`
	TimeInForce   TimeInForce    `json:"timeInForce"`
	Quantity      float64        `json:"quantity"`
	Limit         float64        `json:"limit"`
	FillQuantity  float64        `json:"fillQuantity"`
	Commission    float64        `json:"commission"`
	Proceeds      float64        `json:"proceeds"`
	Status        string         `json:"status"`
	Reason        string         `json:"reason"`
	DryRun        bool           `json:"dryRun"`
	CreatedAt     time.Time      `json:"createdAt"`
}

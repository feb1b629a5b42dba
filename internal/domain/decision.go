package domain

import (
	"fmt"
	"time"
)

// MarketDecision is the outcome of evaluating one market in one cycle.
type MarketDecision int

const (
	DecisionNone MarketDecision = iota
	DecisionHODL
	DecisionInvest
	DecisionReject
)

func (d MarketDecision) String() string {
	switch d {
	case DecisionNone:
		return "NONE"
	case DecisionHODL:
		return "HODL"
	case DecisionInvest:
		return "INVEST"
	case DecisionReject:
		return "REJECT"
	}
	return fmt.Sprintf("MarketDecision(%d)", int(d))
}

// DecisionRecord is the journal entry written for every evaluated market.
type DecisionRecord struct {
	ID            int64     `json:"id"`
	CycleID       string    `json:"cycle_id"`
	MarketSymbol  string    `json:"market_symbol"`
	Decision      string    `json:"decision"`
	PositiveTicks int       `json:"positive_ticks"`
	NegativeTicks int       `json:"negative_ticks"`
	Available     float64   `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
}

// PortfolioReport is the total account value computed at the end of a cycle.
type PortfolioReport struct {
	ID            int64     `json:"id"`
	CycleID       string    `json:"cycle_id"`
	MainMarket    string    `json:"main_market"`
	TotalValue    float64   `json:"total_value"`
	ReferenceRate float64   `json:"reference_rate"`
	CreatedAt     time.Time `json:"created_at"`
}

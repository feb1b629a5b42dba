package usecase

import "github.com/vitos/crypto_trade_ema/internal/domain"

// Decide maps tick counts and the held balance of a currency to a decision.
// A nil balance means nothing is held.
//
// INVEST requires PositiveTicks to equal ExactPositiveTicks exactly, so a
// market is bought only on the cycle its streak reaches that length.
func Decide(currency string, ticks TickCounts, balance *domain.Balance, cfg *Config) domain.MarketDecision {
	if cfg.IsHODL(currency) {
		return domain.DecisionHODL
	}

	if balance != nil && balance.Available > 0 {
		if cfg.IsBlacklisted(currency) {
			return domain.DecisionReject
		}
		if ticks.NegativeTicks >= cfg.MinNegativeTicks {
			return domain.DecisionReject
		}
		return domain.DecisionNone
	}

	if !cfg.IsBlacklisted(currency) && ticks.PositiveTicks == cfg.ExactPositiveTicks {
		return domain.DecisionInvest
	}
	return domain.DecisionNone
}

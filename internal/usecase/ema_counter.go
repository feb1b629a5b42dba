package usecase

import "github.com/vitos/crypto_trade_ema/internal/domain"

// EMAPoint holds both EMA values for one candle.
type EMAPoint struct {
	Short float64
	Long  float64
}

// Diff is long minus short. Positive means the long EMA is above the short one.
func (p EMAPoint) Diff() float64 {
	return p.Long - p.Short
}

// TickCounts is the number of bars the current crossover side has persisted.
//
// NegativeTicks counts bars where the long EMA stays above the short EMA and
// feeds the sell threshold. PositiveTicks counts bars where the short EMA stays
// above the long EMA and feeds the buy trigger.
type TickCounts struct {
	PositiveTicks int
	NegativeTicks int
}

// CalculateEMA computes both EMAs over the closing prices. ema[0] is seeded
// with the first close.
func CalculateEMA(candles []domain.Candle, windows EMAWindows) []EMAPoint {
	points := make([]EMAPoint, len(candles))
	if len(candles) == 0 {
		return points
	}

	kShort := smoothing(windows.Short)
	kLong := smoothing(windows.Long)

	points[0] = EMAPoint{Short: candles[0].Close, Long: candles[0].Close}
	for i := 1; i < len(candles); i++ {
		c := candles[i].Close
		prev := points[i-1]
		points[i] = EMAPoint{
			Short: c*kShort + prev.Short*(1-kShort),
			Long:  c*kLong + prev.Long*(1-kLong),
		}
	}
	return points
}

func smoothing(window int) float64 {
	return 2.0 / float64(window+1)
}

// CountTicks runs the EMA crossover counter over a candle series. Series
// shorter than the longest window yield zero ticks.
func CountTicks(candles []domain.Candle, windows EMAWindows) TickCounts {
	if len(candles) == 0 || len(candles) < max(windows.Short, windows.Long) {
		return TickCounts{}
	}

	points := CalculateEMA(candles, windows)
	diffs := make([]float64, len(points))
	for i, p := range points {
		diffs[i] = p.Diff()
	}
	return countDiffTicks(diffs)
}

// countDiffTicks walks back from the bar before the latest one down to index 1
// while the difference keeps the sign of the latest difference.
func countDiffTicks(diffs []float64) TickCounts {
	var counts TickCounts
	if len(diffs) == 0 {
		return counts
	}

	last := len(diffs) - 1
	latest := diffs[last]

	switch {
	case latest > 0:
		for i := last - 1; i > 0 && diffs[i] > 0; i-- {
			counts.NegativeTicks++
		}
	case latest < 0:
		for i := last - 1; i > 0 && diffs[i] < 0; i-- {
			counts.PositiveTicks++
		}
	}
	return counts
}

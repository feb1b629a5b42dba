package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
)

const epsilon = 0.000001

func TestCalculateEMA(t *testing.T) {
	points := usecase.CalculateEMA(candles(1, 2, 3), usecase.EMAWindows{Short: 1, Long: 3})
	require.Len(t, points, 3)

	// Seeded with the first close.
	assert.Equal(t, 1.0, points[0].Short)
	assert.Equal(t, 1.0, points[0].Long)

	// k = 2/(1+1) = 1 follows the close; k = 2/(3+1) = 0.5 halves the gap.
	assert.InDelta(t, 2.0, points[1].Short, epsilon)
	assert.InDelta(t, 1.5, points[1].Long, epsilon)
	assert.InDelta(t, 3.0, points[2].Short, epsilon)
	assert.InDelta(t, 2.25, points[2].Long, epsilon)
	assert.InDelta(t, 0.75, points[2].Short-points[2].Long, epsilon)
	assert.InDelta(t, -0.75, points[2].Diff(), epsilon)
}

func TestCalculateEMA_Empty(t *testing.T) {
	assert.Empty(t, usecase.CalculateEMA(nil, usecase.EMAWindows{Short: 12, Long: 26}))
}

func TestCalculateEMA_RisingSeriesStaysBelowClose(t *testing.T) {
	series := candles(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	points := usecase.CalculateEMA(series, usecase.EMAWindows{Short: 3, Long: 6})

	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Short, points[i-1].Short, "short EMA should rise at %d", i)
		assert.Greater(t, points[i].Long, points[i-1].Long, "long EMA should rise at %d", i)
		assert.LessOrEqual(t, points[i].Short, series[i].Close)
		// The slower EMA lags further behind.
		assert.Less(t, points[i].Long, points[i].Short)
	}
}

func TestCountTicks(t *testing.T) {
	windows := usecase.EMAWindows{Short: 1, Long: 3}

	tests := []struct {
		name   string
		closes []float64
		want   usecase.TickCounts
	}{
		{"Flat", []float64{10, 10, 10, 10, 10}, usecase.TickCounts{}},
		{"Uptrend", []float64{10, 10, 10, 10, 11, 12, 13}, usecase.TickCounts{PositiveTicks: 2}},
		{"Downtrend", []float64{10, 10, 10, 10, 9, 8, 7, 6}, usecase.TickCounts{NegativeTicks: 3}},
		{"Shorter Than Long Window", []float64{10, 11}, usecase.TickCounts{}},
		{"Empty", nil, usecase.TickCounts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.CountTicks(candles(tt.closes...), windows))
		})
	}
}

func TestCountTicks_ShortWindowLongerThanLong(t *testing.T) {
	// The required length is the larger window, whichever field holds it.
	got := usecase.CountTicks(candles(1, 2, 3, 4), usecase.EMAWindows{Short: 5, Long: 2})
	assert.Equal(t, usecase.TickCounts{}, got)
}

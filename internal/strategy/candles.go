package strategy

import "github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"

// Reversal-candle confirmation for grid re-entries. The pullback must show
// a candle pattern pointing back in the position's direction before the
// engine averages in.

// bullishReversal detects a bullish engulfing or hammer at the end of a
// pullback. prev is the bar before cur.
func bullishReversal(prev, cur types.Bar) bool {
	return bullishEngulfing(prev, cur) || hammer(cur)
}

// bearishReversal mirrors bullishReversal for SELL grids.
func bearishReversal(prev, cur types.Bar) bool {
	return bearishEngulfing(prev, cur) || shootingStar(cur)
}

func bullishEngulfing(prev, cur types.Bar) bool {
	return prev.Close < prev.Open &&
		cur.Close > cur.Open &&
		cur.Open <= prev.Close &&
		cur.Close >= prev.Open
}

func bearishEngulfing(prev, cur types.Bar) bool {
	return prev.Close > prev.Open &&
		cur.Close < cur.Open &&
		cur.Open >= prev.Close &&
		cur.Close <= prev.Open
}

// hammer: long lower wick, small body closing in the upper third of the
// range.
func hammer(bar types.Bar) bool {
	body := abs(bar.Close - bar.Open)
	if body == 0 {
		return false
	}
	lowerWick := min(bar.Open, bar.Close) - bar.Low
	rng := bar.High - bar.Low
	if rng == 0 {
		return false
	}
	return lowerWick >= 2*body && (bar.Close-bar.Low)/rng >= 2.0/3.0
}

// shootingStar: hammer's inverse, long upper wick closing near the low.
func shootingStar(bar types.Bar) bool {
	body := abs(bar.Close - bar.Open)
	if body == 0 {
		return false
	}
	upperWick := bar.High - max(bar.Open, bar.Close)
	rng := bar.High - bar.Low
	if rng == 0 {
		return false
	}
	return upperWick >= 2*body && (bar.High-bar.Close)/rng >= 2.0/3.0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

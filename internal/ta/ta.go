// Package ta implements the indicator formulas over raw price slices.
// Wilder smoothing is used everywhere it applies (RSI, ATR, ADX); mixing
// smoothing variants between indicators is deliberately not supported.
// Functions return math.NaN when the input is shorter than the lookback;
// the calculator maps NaN to an absent field.
package ta

import "math"

// SMA returns the arithmetic mean of the last n values.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// EMASeries computes the exponential moving average series: seeded with
// SMA(n) over the first n values, then ema = v*k + ema*(1-k) with
// k = 2/(n+1) applied in chronological order. Element j of the result
// corresponds to input index n-1+j. Returns nil when len(vals) < n.
func EMASeries(vals []float64, n int) []float64 {
	if len(vals) < n || n <= 0 {
		return nil
	}
	k := 2.0 / float64(n+1)
	out := make([]float64, 0, len(vals)-n+1)

	seed := 0.0
	for i := 0; i < n; i++ {
		seed += vals[i]
	}
	ema := seed / float64(n)
	out = append(out, ema)

	for i := n; i < len(vals); i++ {
		ema = vals[i]*k + ema*(1-k)
		out = append(out, ema)
	}
	return out
}

// EMA returns the final value of EMASeries.
func EMA(vals []float64, n int) float64 {
	s := EMASeries(vals, n)
	if s == nil {
		return math.NaN()
	}
	return s[len(s)-1]
}

// RSI computes the relative strength index with Wilder smoothing: the
// first period deltas seed the gain/loss averages, subsequent deltas are
// folded in with avg = (avg*(n-1) + new)/n. A zero average loss yields
// exactly 100.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	p := float64(period)

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= p
	avgLoss /= p

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// StdDev returns the population standard deviation of the last n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

// Bollinger returns the middle band SMA(n) and the bands at k population
// standard deviations around it.
func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// trueRange at index i (i >= 1).
func trueRange(highs, lows, closes []float64, i int) float64 {
	tr := highs[i] - lows[i]
	tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
	return math.Max(tr, math.Abs(lows[i]-closes[i-1]))
}

// ATR computes the Wilder-smoothed average true range: the first period
// true ranges are averaged as the seed, subsequent values folded in with
// atr = (atr*(n-1) + tr)/n.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	p := float64(period)

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(highs, lows, closes, i)
	}
	atr /= p

	for i := period + 1; i < len(closes); i++ {
		atr = (atr*(p-1) + trueRange(highs, lows, closes, i)) / p
	}
	return atr
}

// MACD computes the MACD line as the difference of parallel EMA series
// (fast minus slow), the signal line as EMA(signal) of that difference
// series, and the histogram as line minus signal. The line requires slow
// closes; signal and histogram require slow+signal-1.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist float64) {
	line, sig, hist = math.NaN(), math.NaN(), math.NaN()
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow {
		return
	}
	fastS := EMASeries(closes, fast)
	slowS := EMASeries(closes, slow)

	// Align: slowS[j] sits at close index slow-1+j, where the fast EMA
	// is fastS[slow-fast+j].
	macdS := make([]float64, len(slowS))
	for j := range slowS {
		macdS[j] = fastS[slow-fast+j] - slowS[j]
	}
	line = macdS[len(macdS)-1]

	sigS := EMASeries(macdS, signal)
	if sigS == nil {
		return
	}
	sig = sigS[len(sigS)-1]
	hist = line - sig
	return
}

// ADX computes the average directional index: true range and directional
// movement are Wilder-smoothed, DX is seeded as an n-period average and
// then Wilder-smoothed itself. Requires 2n+1 candles.
func ADX(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	if period <= 0 || len(closes) < 2*period+1 {
		return math.NaN()
	}
	p := float64(period)

	var smTR, smPlus, smMinus float64
	var adx float64
	dxCount := 0

	for i := 1; i < len(closes); i++ {
		tr := trueRange(highs, lows, closes, i)
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}

		if i <= period {
			smTR += tr
			smPlus += plusDM
			smMinus += minusDM
			if i < period {
				continue
			}
		} else {
			smTR = smTR - smTR/p + tr
			smPlus = smPlus - smPlus/p + plusDM
			smMinus = smMinus - smMinus/p + minusDM
		}

		dx := 0.0
		if smTR > 0 {
			plusDI := 100 * smPlus / smTR
			minusDI := 100 * smMinus / smTR
			if sum := plusDI + minusDI; sum > 0 {
				dx = 100 * math.Abs(plusDI-minusDI) / sum
			}
		}

		dxCount++
		if dxCount <= period {
			adx += dx
			if dxCount == period {
				adx /= p
			}
		} else {
			adx = (adx*(p-1) + dx) / p
		}
	}

	if dxCount < period {
		return math.NaN()
	}
	return adx
}

// StochK computes %K over the trailing kPeriod window ending at index i:
// 100*(close-lowestLow)/(highestHigh-lowestLow). A flat window (high ==
// low) is defined as the neutral 50, not a division error.
func StochK(highs, lows, closes []float64, kPeriod, i int) float64 {
	if i+1 < kPeriod || i >= len(closes) {
		return math.NaN()
	}
	hh := highs[i]
	ll := lows[i]
	for j := i - kPeriod + 1; j <= i; j++ {
		hh = math.Max(hh, highs[j])
		ll = math.Min(ll, lows[j])
	}
	if hh == ll {
		return 50.0
	}
	return 100 * (closes[i] - ll) / (hh - ll)
}

// Stoch returns the latest %K and %D, where %D is the SMA(dSmooth) of the
// last dSmooth %K values. %D is NaN when there are fewer than
// kPeriod+dSmooth-1 candles.
func Stoch(highs, lows, closes []float64, kPeriod, dSmooth int) (k, d float64) {
	k, d = math.NaN(), math.NaN()
	if len(closes) != len(highs) || len(closes) != len(lows) {
		return
	}
	if kPeriod <= 0 || dSmooth <= 0 || len(closes) < kPeriod {
		return
	}
	last := len(closes) - 1
	k = StochK(highs, lows, closes, kPeriod, last)

	if len(closes) < kPeriod+dSmooth-1 {
		return
	}
	sum := 0.0
	for i := last - dSmooth + 1; i <= last; i++ {
		sum += StochK(highs, lows, closes, kPeriod, i)
	}
	d = sum / float64(dSmooth)
	return
}

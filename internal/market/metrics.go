package market

import (
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// Price-series metrics consumed by the pillar scorer and severity detectors.
// All functions take newest-first series and degrade to nil on short input.

const (
	tradingDaysPerYear = 252
	volWindow          = 30
	betaWindow         = 60
	trendShortWindow   = 50
	trendLongWindow    = 200
)

// Return computes the percentage return over the last N calendar entries
func Return(prices []contracts.PricePoint, days int) *float64 {
	if len(prices) < days+1 {
		return nil
	}

	current := prices[0].Close
	past := prices[days].Close
	if past == 0 {
		return nil
	}

	ret := (current - past) / past * 100
	if math.IsNaN(ret) || math.IsInf(ret, 0) {
		return nil
	}
	return &ret
}

// AnnualizedVol30d computes 30-day historical volatility, annualized, in %
func AnnualizedVol30d(prices []contracts.PricePoint) *float64 {
	returns := dailyReturns(prices, volWindow)
	if len(returns) < volWindow/2 {
		return nil
	}

	std := stdDev(returns)
	vol := std * math.Sqrt(tradingDaysPerYear) * 100
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return nil
	}
	return &vol
}

// Beta regresses the instrument's daily returns on the benchmark's over a
// 60-day window
func Beta(prices, benchmark []contracts.PricePoint) *float64 {
	instRets := dailyReturns(prices, betaWindow)
	benchRets := dailyReturns(benchmark, betaWindow)

	n := len(instRets)
	if len(benchRets) < n {
		n = len(benchRets)
	}
	if n < betaWindow/2 {
		return nil
	}
	instRets = instRets[:n]
	benchRets = benchRets[:n]

	meanI := mean(instRets)
	meanB := mean(benchRets)

	var cov, varB float64
	for i := 0; i < n; i++ {
		cov += (instRets[i] - meanI) * (benchRets[i] - meanB)
		varB += (benchRets[i] - meanB) * (benchRets[i] - meanB)
	}
	if varB == 0 {
		return nil
	}

	beta := cov / varB
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil
	}
	return &beta
}

// RelativeStrength7d is the instrument's 7-day return minus the benchmark's
func RelativeStrength7d(prices, benchmark []contracts.PricePoint) *float64 {
	inst := Return(prices, 7)
	bench := Return(benchmark, 7)
	if inst == nil || bench == nil {
		return nil
	}
	rs := *inst - *bench
	return &rs
}

// Trend50Over200 reports whether the 50-day average sits above the 200-day
func Trend50Over200(prices []contracts.PricePoint) *bool {
	ma50 := movingAverage(prices, trendShortWindow)
	ma200 := movingAverage(prices, trendLongWindow)
	if ma50 == nil || ma200 == nil {
		return nil
	}
	up := *ma50 > *ma200
	return &up
}

// Snapshot assembles the MarketData slice of an instrument state
func Snapshot(prices, benchmark []contracts.PricePoint) contracts.MarketData {
	return contracts.MarketData{
		Price7dPct:         Return(prices, 7),
		Price30dPct:        Return(prices, 30),
		Trend50Over200:     Trend50Over200(prices),
		Vol30dAnnualized:   AnnualizedVol30d(prices),
		Beta:               Beta(prices, benchmark),
		RelativeStrength7d: RelativeStrength7d(prices, benchmark),
	}
}

// dailyReturns yields up to `window` day-over-day fractional returns
func dailyReturns(prices []contracts.PricePoint, window int) []float64 {
	if len(prices) < 2 {
		return nil
	}

	limit := window
	if limit > len(prices)-1 {
		limit = len(prices) - 1
	}

	returns := make([]float64, 0, limit)
	for i := 0; i < limit; i++ {
		prev := prices[i+1].Close
		if prev == 0 {
			continue
		}
		r := (prices[i].Close - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		returns = append(returns, r)
	}
	return returns
}

func movingAverage(prices []contracts.PricePoint, window int) *float64 {
	if len(prices) < window {
		return nil
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += prices[i].Close
	}
	avg := sum / float64(window)
	return &avg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

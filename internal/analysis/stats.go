package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// validSorted returns an ascending copy of xs with NaN values removed.
// Every order-statistic helper below works on this view, so rows with a
// missing value are skipped rather than poisoning the reduction.
func validSorted(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}

// Quantile computes the q-th quantile (0 <= q <= 1) with linear interpolation
// between closest ranks. For an even-sized sample the median is the mean of
// the two central order statistics.
func Quantile(q float64, xs []float64) float64 {
	v := validSorted(xs)
	n := len(v)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return v[0]
	}
	h := q * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi > n-1 {
		return v[n-1]
	}
	frac := h - float64(lo)
	return v[lo] + frac*(v[hi]-v[lo])
}

// Median returns the 0.5 quantile.
func Median(xs []float64) float64 {
	return Quantile(0.5, xs)
}

// Mean returns the arithmetic mean, skipping missing values.
func Mean(xs []float64) float64 {
	v := validSorted(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// StdDev returns the sample standard deviation, skipping missing values.
func StdDev(xs []float64) float64 {
	v := validSorted(xs)
	if len(v) < 2 {
		return math.NaN()
	}
	return stat.StdDev(v, nil)
}

// Skewness returns the sample skewness, skipping missing values.
func Skewness(xs []float64) float64 {
	v := validSorted(xs)
	if len(v) < 3 {
		return math.NaN()
	}
	return stat.Skew(v, nil)
}

// RateAtOrBelow returns the share of values at or below threshold, as a
// percentage of the non-missing values.
func RateAtOrBelow(threshold float64, xs []float64) float64 {
	v := validSorted(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	count := 0
	for _, x := range v {
		if x <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(v)) * 100
}

// RateAbove returns the share of values strictly above threshold, as a
// percentage of the non-missing values. For a fixed threshold,
// RateAtOrBelow + RateAbove always sums to 100.
func RateAbove(threshold float64, xs []float64) float64 {
	v := validSorted(xs)
	if len(v) == 0 {
		return math.NaN()
	}
	return 100 - RateAtOrBelow(threshold, xs)
}

// IQR returns the interquartile range.
func IQR(xs []float64) float64 {
	return Quantile(0.75, xs) - Quantile(0.25, xs)
}

package analysis

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name string
		q    float64
		xs   []float64
		want float64
	}{
		{
			name: "median of even-sized sample interpolates central pair",
			q:    0.5,
			xs:   []float64{300, 360, 420, 900},
			want: 390,
		},
		{
			name: "median of odd-sized sample is middle value",
			q:    0.5,
			xs:   []float64{300, 360, 420},
			want: 360,
		},
		{
			name: "p90 interpolates between ranks",
			q:    0.9,
			xs:   []float64{300, 360, 420, 900},
			want: 756,
		},
		{
			name: "quartiles of a uniform ladder",
			q:    0.25,
			xs:   []float64{100, 200, 300, 400, 500},
			want: 200,
		},
		{
			name: "single element returned as-is",
			q:    0.9,
			xs:   []float64{42},
			want: 42,
		},
		{
			name: "unsorted input is sorted first",
			q:    0.5,
			xs:   []float64{900, 300, 420, 360},
			want: 390,
		},
		{
			name: "missing values are skipped",
			q:    0.5,
			xs:   []float64{300, math.NaN(), 360, 420, math.NaN(), 900},
			want: 390,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantile(tt.q, tt.xs)
			if !approxEqual(got, tt.want, 1e-9) {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.q, tt.xs, got, tt.want)
			}
		})
	}
}

func TestQuantileEmpty(t *testing.T) {
	if got := Quantile(0.5, nil); !math.IsNaN(got) {
		t.Errorf("Quantile over empty sample = %v, want NaN", got)
	}
	if got := Median([]float64{math.NaN(), math.NaN()}); !math.IsNaN(got) {
		t.Errorf("Median over all-missing sample = %v, want NaN", got)
	}
}

func TestRatesSumToHundred(t *testing.T) {
	xs := []float64{100, 360, 361, 599, 600, 601, 1200}
	for _, threshold := range []float64{0, 360, 600, 5000} {
		below := RateAtOrBelow(threshold, xs)
		above := RateAbove(threshold, xs)
		if !approxEqual(below+above, 100, 1e-9) {
			t.Errorf("threshold %v: %v + %v != 100", threshold, below, above)
		}
	}
}

func TestRateAtOrBelowBoundaryInclusive(t *testing.T) {
	xs := []float64{300, 360, 420, 900}
	if got := RateAtOrBelow(360, xs); !approxEqual(got, 50, 1e-9) {
		t.Errorf("RateAtOrBelow(360) = %v, want 50: a value exactly on the threshold counts as within", got)
	}
	if got := RateAbove(600, xs); !approxEqual(got, 25, 1e-9) {
		t.Errorf("RateAbove(600) = %v, want 25", got)
	}
}

func TestIQR(t *testing.T) {
	xs := []float64{100, 200, 300, 400, 500}
	if got := IQR(xs); !approxEqual(got, 200, 1e-9) {
		t.Errorf("IQR = %v, want 200", got)
	}
}

func TestMeanSkipsMissing(t *testing.T) {
	xs := []float64{100, math.NaN(), 300}
	if got := Mean(xs); !approxEqual(got, 200, 1e-9) {
		t.Errorf("Mean = %v, want 200", got)
	}
	if got := StdDev([]float64{5}); !math.IsNaN(got) {
		t.Errorf("StdDev of one value = %v, want NaN", got)
	}
}

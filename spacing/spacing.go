// Package spacing estimates the expected distance in scans between adjacent
// bases, either from preliminary call coordinates or, when those are missing,
// from the autocorrelation of the summed trace.
package spacing

import (
	"errors"
	"math"

	"github.com/vertgenlab/gonomics/numbers"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Default is used when nothing can be estimated.
const Default = 12.0

// minFitDiffs is the number of spacings needed before a linear curve is fit.
const minFitDiffs = 20

var ErrTooFewCalls = errors.New("spacing: too few calls")

// Curve gives the expected base spacing at a scan position.
type Curve interface {
	At(pos float64) float64
}

// Constant is a curve with the same spacing everywhere.
type Constant float64

func (c Constant) At(float64) float64 { return float64(c) }

// Linear is a spacing that changes linearly with position, clamped to
// [Min, Max].
type Linear struct {
	Intercept float64
	Slope     float64
	Min, Max  float64
}

func (l Linear) At(pos float64) float64 {
	s := l.Intercept + l.Slope*pos
	if s < l.Min {
		return l.Min
	}
	if s > l.Max {
		return l.Max
	}
	return s
}

// Median returns the median spacing of sorted call coordinates.
func Median(coords []int) (float64, error) {
	diffs := differences(coords)
	if len(diffs) == 0 {
		return 0, ErrTooFewCalls
	}
	slices.Sort(diffs)
	return stat.Quantile(0.5, stat.Empirical, diffs, nil), nil
}

// FromCoordinates fits a spacing curve to call coordinates. Spacings further
// than a factor of two from the median are ignored.
func FromCoordinates(coords []int) (Curve, error) {
	med, err := Median(coords)
	if err != nil {
		return nil, err
	}
	if med <= 0 {
		return nil, ErrTooFewCalls
	}
	var x, y []float64
	for i := 1; i < len(coords); i++ {
		s := float64(coords[i] - coords[i-1])
		if s < med/2 || s > 2*med {
			continue
		}
		x = append(x, float64(coords[i]+coords[i-1])/2)
		y = append(y, s)
	}
	if len(x) < minFitDiffs {
		return Constant(med), nil
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Constant(med), nil
	}
	return Linear{Intercept: alpha, Slope: beta, Min: med / 2, Max: 2 * med}, nil
}

func differences(coords []int) []float64 {
	var ans []float64
	for i := 1; i < len(coords); i++ {
		if d := coords[i] - coords[i-1]; d > 0 {
			ans = append(ans, float64(d))
		}
	}
	return ans
}

// Autocorrelation returns the lag in [minLag, maxLag] at which the mean
// removed signal best correlates with itself. It returns 0 if the signal is
// too short.
func Autocorrelation(signal []float64, minLag, maxLag int) int {
	n := len(signal)
	if n < 2 || minLag < 1 || maxLag >= n || minLag > maxLag {
		return 0
	}
	mean := stat.Mean(signal, nil)
	padded := make([]float64, 2*n)
	for i, v := range signal {
		padded[i] = v - mean
	}
	fft := fourier.NewFFT(len(padded))
	coeff := fft.Coefficients(nil, padded)
	for i, c := range coeff {
		coeff[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	acf := fft.Sequence(nil, coeff)

	// the acf of a periodic trace peaks at the period; take the first local
	// maximum in range, falling back to the global one
	window := acf[minLag : maxLag+1]
	for i := 1; i < len(window)-1; i++ {
		if window[i] > window[i-1] && window[i] >= window[i+1] && window[i] > 0 {
			return minLag + i
		}
	}
	return minLag + floats.MaxIdx(window)
}

// Estimate returns a spacing curve from the call coordinates, falling back to
// the autocorrelation of the summed channels and then to Default.
func Estimate(coords []int, channels ...[]int) Curve {
	if c, err := FromCoordinates(coords); err == nil {
		return c
	}
	var n int
	for _, ch := range channels {
		n = numbers.Max(n, len(ch))
	}
	sum := make([]float64, n)
	for _, ch := range channels {
		for i, v := range ch {
			sum[i] += float64(v)
		}
	}
	if lag := Autocorrelation(sum, 4, numbers.Min(40, n-1)); lag > 0 {
		return Constant(float64(lag))
	}
	return Constant(Default)
}

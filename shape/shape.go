// Package shape evaluates the parametric intensity model used to describe
// chromatogram peaks. Two variants exist. The Gaussian is
// amplitude*exp(-d²/4β²). The modified model is the amplitude scaled by an
// error function term over a top of half width halfTop, decaying with beta
// beyond it:
//
//	amplitude/2 * (erf((halfTop-d)/β) + erf((halfTop+d)/β))
//
// It becomes a rectangle as β goes to 0 and vanishes as β grows. Its value at
// the centre is amplitude*erf(halfTop/β), so callers comparing heights use the
// normalised form Unit, whose limit for halfTop → 0 is exp(-d²/β²).
package shape

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Half widths are measured at these fractions of the peak height.
const (
	Level1 = 0.5
	Level2 = 0.125
)

// tiny is the beta below which the model is treated as a rectangle.
const tiny = 1e-9

// MaxTop bounds halfTop/beta returned by W1.
const MaxTop = 50.0

var (
	sqrtLn1 = math.Sqrt(math.Log(1 / Level1))
	sqrtLn2 = math.Sqrt(math.Log(1 / Level2))
	sqrtPi  = math.Sqrt(math.Pi)
)

// GaussianRatio is the width1/width2 ratio of a pure Gaussian. The modified
// model approaches it as halfTop/beta goes to 0.
var GaussianRatio = sqrtLn1 / sqrtLn2

// ErrWidthRatio is returned when a measured half width ratio cannot be
// produced by the model.
var ErrWidthRatio = errors.New("shape: half width ratio out of range")

// Params holds the fitted model of one peak. Height is the value at the
// centre, not the amplitude of the modified model.
type Params struct {
	Height  float64
	HalfTop float64 // 0 for the Gaussian
	Beta    float64
	Gauss   bool
}

// At evaluates the model at distance d from the peak centre.
func (p Params) At(d float64) float64 {
	return p.Height * Unit(p.HalfTop, p.Beta, d, p.Gauss)
}

// Amplitude is the model amplitude giving the peak height p.Height.
func (p Params) Amplitude() float64 {
	return Amplitude(p.Height, p.HalfTop, p.Beta, p.Gauss)
}

// Shape returns the model intensity at the given distance from the centre.
func Shape(amplitude, halfTop, beta, distance float64, gauss bool) float64 {
	if !finite(amplitude) || !finite(distance) || math.IsNaN(beta) || beta < 0 {
		return 0
	}
	d := math.Abs(distance)
	if gauss {
		switch {
		case math.IsInf(beta, 1):
			return amplitude
		case beta < tiny:
			if d == 0 {
				return amplitude
			}
			return 0
		}
		x := d / (2 * beta)
		return amplitude * math.Exp(-x*x)
	}
	halfTop = cleanTop(halfTop)
	switch {
	case math.IsInf(beta, 1):
		return 0
	case beta < tiny:
		return amplitude * rect(halfTop, d)
	}
	return amplitude / 2 * erfSum(halfTop/beta, d/beta)
}

// Unit is the model scaled to 1 at the centre.
func Unit(halfTop, beta, distance float64, gauss bool) float64 {
	if gauss {
		return Shape(1, 0, beta, distance, true)
	}
	if !finite(distance) || math.IsNaN(beta) || beta < 0 {
		return 0
	}
	halfTop = cleanTop(halfTop)
	d := math.Abs(distance)
	switch {
	case math.IsInf(beta, 1):
		return 1
	case beta < tiny:
		if halfTop == 0 {
			if d == 0 {
				return 1
			}
			return 0
		}
		return rect(halfTop, d)
	case halfTop == 0:
		x := d / beta
		return math.Exp(-x * x)
	}
	t := halfTop / beta
	return erfSum(t, d/beta) / (2 * math.Erf(t))
}

// Peak is the model value at the centre.
func Peak(amplitude, halfTop, beta float64, gauss bool) float64 {
	return Shape(amplitude, halfTop, beta, 0, gauss)
}

// Amplitude returns the amplitude whose model peaks at height. Without a
// top the modified model only exists in its normalised limit and the height
// is returned.
func Amplitude(height, halfTop, beta float64, gauss bool) float64 {
	if u := Peak(1, halfTop, beta, gauss); u > 0 {
		return height / u
	}
	return height
}

// rect is the β → 0 limit of the modified model for unit amplitude.
func rect(halfTop, d float64) float64 {
	switch {
	case d < halfTop:
		return 1
	case d == halfTop && halfTop > 0:
		return 0.5
	}
	return 0
}

// erfSum returns erf(t-y) + erf(t+y). Beyond the top the complementary form
// keeps precision in the tails.
func erfSum(t, y float64) float64 {
	y = math.Abs(y)
	if y > t {
		return math.Erfc(y-t) - math.Erfc(y+t)
	}
	return math.Erf(t-y) + math.Erf(t+y)
}

func cleanTop(halfTop float64) float64 {
	if math.IsNaN(halfTop) || halfTop < 0 || math.IsInf(halfTop, 0) {
		return 0
	}
	return halfTop
}

// Area integrates the model over [lo, hi] where both bounds are distances
// from the peak centre.
func Area(amplitude, halfTop, beta, lo, hi float64, gauss bool) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	if !finite(amplitude) || math.IsNaN(beta) || beta < 0 {
		return 0
	}
	if gauss {
		switch {
		case math.IsInf(beta, 1):
			return amplitude * (hi - lo)
		case beta < tiny:
			return 0
		}
		sigma := beta * math.Sqrt2
		return amplitude * sigma * math.Sqrt(2*math.Pi) * (Phi(hi/sigma) - Phi(lo/sigma))
	}
	halfTop = cleanTop(halfTop)
	switch {
	case math.IsInf(beta, 1):
		return 0
	case beta < tiny:
		return amplitude * overlap(lo, hi, -halfTop, halfTop)
	}
	return primitive(amplitude, halfTop, beta, hi) - primitive(amplitude, halfTop, beta, lo)
}

// primitive is an antiderivative of the modified model. With
// F(u) = u*erf(u) + exp(-u²)/√π it is amplitude*β/2*(F((h+x)/β) - F((h-x)/β)).
func primitive(amplitude, halfTop, beta, x float64) float64 {
	if math.IsInf(x, 0) {
		return math.Copysign(amplitude*halfTop, x)
	}
	f := func(u float64) float64 {
		return u*math.Erf(u) + math.Exp(-u*u)/sqrtPi
	}
	return amplitude * beta / 2 * (f((halfTop+x)/beta) - f((halfTop-x)/beta))
}

func overlap(lo, hi, a, b float64) float64 {
	return math.Max(0, math.Min(hi, b)-math.Max(lo, a))
}

// UnitArea integrates Unit over [lo, hi].
func UnitArea(halfTop, beta, lo, hi float64, gauss bool) float64 {
	if gauss {
		return Area(1, 0, beta, lo, hi, true)
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if math.IsNaN(beta) || beta < 0 {
		return 0
	}
	halfTop = cleanTop(halfTop)
	switch {
	case math.IsInf(beta, 1):
		return hi - lo
	case beta < tiny:
		return overlap(lo, hi, -halfTop, halfTop)
	case halfTop == 0:
		sigma := beta / math.Sqrt2
		return sigma * math.Sqrt(2*math.Pi) * (Phi(hi/sigma) - Phi(lo/sigma))
	}
	return Area(1, halfTop, beta, lo, hi, false) / Peak(1, halfTop, beta, false)
}

// TotalArea is the area of the model over the whole real line.
func TotalArea(amplitude, halfTop, beta float64, gauss bool) float64 {
	if gauss {
		return amplitude * 2 * beta * sqrtPi
	}
	return amplitude * 2 * cleanTop(halfTop)
}

// UnitTotalArea is the area under Unit over the whole real line.
func UnitTotalArea(halfTop, beta float64, gauss bool) float64 {
	if gauss {
		return 2 * beta * sqrtPi
	}
	halfTop = cleanTop(halfTop)
	switch {
	case math.IsInf(beta, 1):
		return math.Inf(1)
	case beta < tiny:
		return 2 * halfTop
	case halfTop == 0:
		return beta * sqrtPi
	}
	return 2 * halfTop / math.Erf(halfTop/beta)
}

// Phi is the standard normal cumulative distribution function.
func Phi(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// Erf is the error function.
func Erf(x float64) float64 {
	return math.Erf(x)
}

// HalfWidth returns the distance from the centre at which the model falls to
// the given fraction of its height.
func HalfWidth(halfTop, beta, level float64, gauss bool) float64 {
	if level <= 0 || level >= 1 || math.IsNaN(beta) || beta < 0 {
		return math.NaN()
	}
	if gauss {
		return 2 * beta * math.Sqrt(math.Log(1/level))
	}
	halfTop = cleanTop(halfTop)
	if beta < tiny {
		return halfTop
	}
	return beta * unitHalfWidth(halfTop/beta, level)
}

// unitHalfWidth solves erfSum(t, y) = 2*level*erf(t) for y, the half width
// in units of beta. The left side falls monotonically in y.
func unitHalfWidth(t, level float64) float64 {
	if t == 0 {
		return math.Sqrt(math.Log(1 / level))
	}
	target := 2 * level * math.Erf(t)
	lo, hi := 0.0, t+10
	for k := 0; k < 200 && hi-lo > 1e-13; k++ {
		mid := (lo + hi) / 2
		if erfSum(t, mid) > target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// ratioAt is width1/width2 of the modified model with halfTop/beta = t.
func ratioAt(t float64) float64 {
	return unitHalfWidth(t, Level1) / unitHalfWidth(t, Level2)
}

// HalfWidthRatio returns width1/width2 for the given parameters.
func HalfWidthRatio(halfTop, beta float64, gauss bool) float64 {
	return HalfWidth(halfTop, beta, Level1, gauss) / HalfWidth(halfTop, beta, Level2, gauss)
}

// W1 inverts HalfWidthRatio of the modified model and returns halfTop/beta.
// A ratio at or below the Gaussian limit yields 0 and one beyond the ratio
// at MaxTop yields MaxTop.
func W1(ratio float64) (float64, error) {
	if math.IsNaN(ratio) || ratio <= 0 || ratio >= 1 {
		return 0, ErrWidthRatio
	}
	if ratio <= GaussianRatio {
		return 0, nil
	}
	if ratio >= ratioAt(MaxTop) {
		return MaxTop, nil
	}
	lo, hi := 0.0, MaxTop
	for k := 0; k < 200 && hi-lo > 1e-12; k++ {
		mid := (lo + hi) / 2
		if ratioAt(mid) < ratio {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}

// FitWidths converts two measured half widths into halfTop and beta.
// width2 is ignored in Gaussian mode; when it is missing the modified model
// takes its Gaussian limit.
func FitWidths(width1, width2 float64, gauss bool) (halfTop, beta float64, err error) {
	if !(width1 > 0) || math.IsInf(width1, 0) {
		return 0, 0, ErrWidthRatio
	}
	if gauss {
		return 0, width1 / (2 * sqrtLn1), nil
	}
	t := 0.0
	if width2 > 0 && !math.IsInf(width2, 0) {
		if t, err = W1(width1 / width2); err != nil {
			return 0, 0, err
		}
	}
	beta = width1 / unitHalfWidth(t, Level1)
	return t * beta, beta, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

package shape

import (
	"math"
	"testing"
)

func TestShapeGaussian(t *testing.T) {
	var tests = []struct {
		amp, beta, d float64
		expected     float64
	}{
		{1000, 3, 0, 1000},
		{1000, 3, 6, 1000 * math.Exp(-1)},
		{1000, 3, -6, 1000 * math.Exp(-1)},
		{500, 2, 4, 500 * math.Exp(-1)},
	}

	for _, test := range tests {
		actual := Shape(test.amp, 0, test.beta, test.d, true)
		if math.Abs(actual-test.expected) > 1e-9 {
			t.Errorf("Shape(%v, %v, %v) = %v, expected %v", test.amp, test.beta, test.d, actual, test.expected)
		}
	}
	if Shape(800, 3, 2.5, 0, true) != 800 {
		t.Error("Gaussian mode should ignore the top")
	}
}

func TestShapeModified(t *testing.T) {
	var tests = []struct {
		amp, halfTop, beta, d float64
		expected              float64
	}{
		{1000, 2, 1, 0, 1000 * math.Erf(2)},
		{1000, 2, 1, 2, 500 * math.Erf(4)},
		{1000, 2, 1, -2, 500 * math.Erf(4)},
		{1000, 2, 1, 5, 500 * (math.Erf(7) - math.Erf(3))},
		{1000, 0, 1, 0, 0},
	}
	for _, test := range tests {
		actual := Shape(test.amp, test.halfTop, test.beta, test.d, false)
		if math.Abs(actual-test.expected) > 1e-9 {
			t.Errorf("Shape(%v, %v, %v, %v) = %v, expected %v", test.amp, test.halfTop, test.beta, test.d, actual, test.expected)
		}
	}
}

func TestShapeLimits(t *testing.T) {
	for _, d := range []float64{0, 1.5, -1.5, 5} {
		if v := Shape(1000, 2, 1e12, d, false); math.Abs(v) > 1e-6 {
			t.Errorf("huge beta at %v gave %v, expected 0", d, v)
		}
		if v := Shape(1000, 2, math.Inf(1), d, false); v != 0 {
			t.Errorf("infinite beta at %v gave %v", d, v)
		}
	}
	if v := Shape(1000, 2, 1e-6, 1.5, false); math.Abs(v-1000) > 1e-9 {
		t.Errorf("small beta inside the top gave %v, expected the amplitude", v)
	}
	if v := Shape(1000, 2, 1e-6, 2.5, false); v != 0 {
		t.Errorf("small beta outside the top gave %v", v)
	}
	if Shape(1000, 2, 0, 1, false) != 1000 || Shape(1000, 2, 0, 3, false) != 0 {
		t.Error("zero beta should be a rectangle")
	}
	if Shape(100, 0, 0, 0, true) != 100 || Shape(100, 0, 0, 1, true) != 0 {
		t.Error("Gaussian with zero beta should be a spike")
	}
	if Shape(100, 0, math.Inf(1), 50, true) != 100 {
		t.Error("Gaussian with infinite beta should be flat")
	}
	for _, gauss := range []bool{true, false} {
		if Shape(100, 1, -1, 0, gauss) != 0 || Shape(100, 1, math.NaN(), 0, gauss) != 0 || Shape(math.Inf(1), 1, 1, 0, gauss) != 0 {
			t.Error("invalid parameters should give 0")
		}
	}
}

func TestUnit(t *testing.T) {
	if u := Unit(2, 1, 0, false); math.Abs(u-1) > 1e-12 {
		t.Errorf("unit model at the centre is %v", u)
	}
	for _, d := range []float64{0.5, 1, 2, 4} {
		want := math.Exp(-d * d)
		if u := Unit(0, 1, d, false); math.Abs(u-want) > 1e-12 {
			t.Errorf("Unit without top at %v = %v, expected %v", d, u, want)
		}
		if u := Unit(1e-6, 1, d, false); math.Abs(u-want) > 1e-6 {
			t.Errorf("Unit with a tiny top at %v = %v, expected %v", d, u, want)
		}
	}
	got := Unit(2, 1.5, 3, false) * Peak(700, 2, 1.5, false)
	if want := Shape(700, 2, 1.5, 3, false); math.Abs(got-want) > 1e-9 {
		t.Errorf("scaled unit model %v, expected %v", got, want)
	}
	if a := Amplitude(500, 2, 1, false); math.Abs(Peak(a, 2, 1, false)-500) > 1e-9 {
		t.Errorf("amplitude %v does not reproduce the height", a)
	}
}

func TestAreaMatchesSum(t *testing.T) {
	var tests = []struct {
		halfTop, beta float64
		gauss         bool
	}{
		{0, 3, true},
		{2, 3, false},
		{4, 1.5, false},
		{0.5, 2, false},
	}
	for _, test := range tests {
		var sum, unitSum float64
		step := 0.001
		for d := -40.0; d < 40; d += step {
			sum += Shape(1, test.halfTop, test.beta, d+step/2, test.gauss) * step
			unitSum += Unit(test.halfTop, test.beta, d+step/2, test.gauss) * step
		}
		area := Area(1, test.halfTop, test.beta, -40, 40, test.gauss)
		if math.Abs(area-sum) > 1e-3 {
			t.Errorf("Area(%v, %v) = %v, numeric %v", test.halfTop, test.beta, area, sum)
		}
		total := TotalArea(1, test.halfTop, test.beta, test.gauss)
		if math.Abs(total-area) > 1e-3 {
			t.Errorf("TotalArea(%v, %v) = %v, expected %v", test.halfTop, test.beta, total, area)
		}
		if u := UnitArea(test.halfTop, test.beta, -40, 40, test.gauss); math.Abs(u-unitSum) > 1e-3 {
			t.Errorf("UnitArea(%v, %v) = %v, numeric %v", test.halfTop, test.beta, u, unitSum)
		}
		if u := UnitTotalArea(test.halfTop, test.beta, test.gauss); math.Abs(u-unitSum) > 1e-3 {
			t.Errorf("UnitTotalArea(%v, %v) = %v, numeric %v", test.halfTop, test.beta, u, unitSum)
		}
	}
}

func TestAreaPartial(t *testing.T) {
	var sum float64
	const n = 8000
	step := 4.0 / n
	for k := 0; k < n; k++ {
		sum += Shape(10, 2, 0.8, -1+(float64(k)+0.5)*step, false) * step
	}
	if a := Area(10, 2, 0.8, 3, -1, false); math.Abs(a-sum) > 1e-4 {
		t.Errorf("Area over [-1,3] = %v, numeric %v", a, sum)
	}
	if a := Area(10, 2, 0, -1, 3, false); a != 30 {
		t.Errorf("rectangle area %v, expected 30", a)
	}
}

func TestHalfWidth(t *testing.T) {
	for _, halfTop := range []float64{0, 0.5, 2, 6} {
		for _, level := range []float64{Level1, Level2} {
			w := HalfWidth(halfTop, 1.5, level, false)
			if v := Unit(halfTop, 1.5, w, false); math.Abs(v-level) > 1e-9 {
				t.Errorf("model at half width %v is %v, expected %v", w, v, level)
			}
		}
	}
	if w := HalfWidth(0, 3, Level1, true); math.Abs(Unit(0, 3, w, true)-Level1) > 1e-12 {
		t.Errorf("Gaussian half width %v", w)
	}
	if !math.IsNaN(HalfWidth(1, 1, 1, false)) {
		t.Error("level 1 should be rejected")
	}
}

func TestW1RoundTrip(t *testing.T) {
	for _, halfTop := range []float64{0, 0.5, 1, 3, 7} {
		beta := 2.0
		ratio := HalfWidthRatio(halfTop, beta, false)
		x, err := W1(ratio)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(x-halfTop/beta) > 1e-6 {
			t.Errorf("W1(%v) = %v, expected %v", ratio, x, halfTop/beta)
		}
		w1 := HalfWidth(halfTop, beta, Level1, false)
		w2 := HalfWidth(halfTop, beta, Level2, false)
		gotTop, gotBeta, err := FitWidths(w1, w2, false)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(gotTop-halfTop) > 1e-5 || math.Abs(gotBeta-beta) > 1e-5 {
			t.Errorf("FitWidths returned %v %v, expected %v %v", gotTop, gotBeta, halfTop, beta)
		}
	}
}

func TestFitWidthsGaussian(t *testing.T) {
	w1 := HalfWidth(0, 3, Level1, true)
	top, beta, err := FitWidths(w1, 123, true)
	if err != nil || top != 0 || math.Abs(beta-3) > 1e-12 {
		t.Errorf("FitWidths = %v %v %v, expected 0 3", top, beta, err)
	}
	top, beta, err = FitWidths(2, 0, false)
	if err != nil || top != 0 || math.Abs(HalfWidth(top, beta, Level1, false)-2) > 1e-12 {
		t.Errorf("missing width2 gave %v %v %v", top, beta, err)
	}
	if _, _, err = FitWidths(0, 1, false); err == nil {
		t.Error("expected error for a zero width")
	}
}

func TestW1Range(t *testing.T) {
	for _, r := range []float64{0, -1, 1, 1.5, math.NaN()} {
		if _, err := W1(r); err == nil {
			t.Errorf("expected error for ratio %v", r)
		}
	}
	x, err := W1(GaussianRatio * 0.9)
	if err != nil || x != 0 {
		t.Errorf("ratio below Gaussian limit should clamp to 0, got %v %v", x, err)
	}
	x, err = W1(0.9999999)
	if err != nil || x != MaxTop {
		t.Errorf("ratio near 1 should clamp to %v, got %v %v", MaxTop, x, err)
	}
}

func TestPhi(t *testing.T) {
	if math.Abs(Phi(0)-0.5) > 1e-12 {
		t.Error("Phi(0) should be 0.5")
	}
	if math.Abs(Phi(1.96)-0.9750021) > 1e-6 {
		t.Errorf("Phi(1.96) = %v", Phi(1.96))
	}
}

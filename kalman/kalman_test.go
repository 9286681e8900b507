package kalman

import (
	"math"
	"testing"

	"github.com/kestrel-vision/trackcore/geometry"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestChi2Inv95Table(t *testing.T) {
	if !approxEqual(Chi2Inv95(1), 3.8415, 1e-4) {
		t.Fatalf("Chi2Inv95(1) = %v", Chi2Inv95(1))
	}
	if !approxEqual(Chi2Inv95(5), 11.070, 1e-4) {
		t.Fatalf("Chi2Inv95(5) = %v", Chi2Inv95(5))
	}
}

func TestBoxFilterInitiateRecoversBox(t *testing.T) {
	f := NewDefaultBoxFilter()
	box := geometry.NewUniversal2DBox(1, 2, 1.0, 5, 1.0)
	s := f.Initiate(box)

	if !approxEqual(s.Mean.AtVec(0), 1, 1e-6) || !approxEqual(s.Mean.AtVec(1), 2, 1e-6) {
		t.Fatalf("initiate did not preserve center: %v", s.Mean)
	}
	for i := boxDim; i < boxDimX2; i++ {
		if s.Mean.AtVec(i) != 0 {
			t.Fatalf("initial velocity component %d not zero: %v", i, s.Mean.AtVec(i))
		}
	}
}

func TestBoxFilterPredictUpdateConverges(t *testing.T) {
	f := NewDefaultBoxFilter()
	box := geometry.NewUniversal2DBox(-10, 2, 0.4, 5, 1.0)
	s := f.Initiate(box)

	var lastErr float64 = math.MaxFloat64
	for i := 0; i < 10; i++ {
		s = f.Predict(s)
		s = f.Update(s, box)
		err := math.Hypot(s.Mean.AtVec(0)-box.XC, s.Mean.AtVec(1)-box.YC)
		if err > lastErr+1e-6 {
			t.Fatalf("iteration %d: error increased from %v to %v", i, lastErr, err)
		}
		lastErr = err
	}
	if lastErr > 1.0 {
		t.Fatalf("filter did not converge to stationary box, final error %v", lastErr)
	}
}

func TestBoxFilterDistanceGating(t *testing.T) {
	f := NewDefaultBoxFilter()
	box := geometry.NewUniversal2DBox(-10, 2, 0.4, 5, 1.0)
	s := f.Initiate(box)
	s = f.Predict(s)
	s = f.Update(s, box)
	s = f.Predict(s)

	near := geometry.NewUniversal2DBox(-9.9, 2.1, 0.4, 5, 1.0)
	far := geometry.NewUniversal2DBox(500, 500, 0.4, 5, 1.0)

	dNear := f.Distance(s, near)
	dFar := f.Distance(s, far)

	gate := Chi2Inv95(boxDim)
	if dNear >= gate {
		t.Fatalf("nearby box should pass the gate: d=%v gate=%v", dNear, gate)
	}
	if dFar <= gate {
		t.Fatalf("distant box should fail the gate: d=%v gate=%v", dFar, gate)
	}

	costNear := CalculateCost(dNear, false)
	costFar := CalculateCost(dFar, false)
	if costFar != CHI2UpperBound {
		t.Fatalf("over-gate distance should map to CHI2UpperBound, got %v", costFar)
	}
	if costNear >= CHI2UpperBound {
		t.Fatalf("under-gate distance should not be capped, got %v", costNear)
	}

	reward := CalculateCost(dFar, true)
	if reward != 0 {
		t.Fatalf("inverted over-gate cost should be zero reward, got %v", reward)
	}
}

func TestPointFilterConverges(t *testing.T) {
	f := NewPointFilter(1.0, 0.1)
	s := f.Initiate(5, 5)
	for i := 0; i < 20; i++ {
		s = f.Predict(s)
		s = f.Update(s, 5, 5)
	}
	x, y := s.Position2D()
	if !approxEqual(x, 5, 0.5) || !approxEqual(y, 5, 0.5) {
		t.Fatalf("point filter did not converge: (%v, %v)", x, y)
	}
}

func TestVectorFilterLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on length mismatch")
		}
	}()
	vf := NewVectorFilter(NewPointFilter(1.0, 0.1))
	states := vf.Initiate([][2]float64{{0, 0}, {1, 1}})
	vf.Update(states, [][2]float64{{0, 0}})
}

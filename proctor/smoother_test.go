package proctor

import (
	"math"
	"testing"
)

func TestSmootherRawWhenSingleSample(t *testing.T) {
	registry := NewRegistry()
	identity := registry.Create(1, NewRectFromCorners(0, 0, 100, 200), 0)
	smoother := NewSmoother(5)

	smoothed := smoother.Observe(identity, Point{X: 1000, Y: 2000}, 0)
	if smoothed != (Point{X: 1000, Y: 2000}) {
		t.Errorf("Single sample must be returned as is, got %v", smoothed)
	}
	baseline, ok := identity.Baseline()
	if !ok || baseline != (Point{X: 1000, Y: 2000}) {
		t.Errorf("Baseline should be captured from first sample, got %v (found: %v)", baseline, ok)
	}
}

func TestSmootherWeightedAverage(t *testing.T) {
	registry := NewRegistry()
	identity := registry.Create(1, NewRectFromCorners(0, 0, 100, 200), 0)
	smoother := NewSmoother(5)

	smoother.Observe(identity, Point{X: 0, Y: 0}, 0)
	// Weights 1 and 2: (0*1 + 30*2) / 3 = 20
	smoothed := smoother.Observe(identity, Point{X: 30, Y: 60}, 1)
	if math.Abs(smoothed.X-20) > eps || math.Abs(smoothed.Y-40) > eps {
		t.Errorf("Expected (20, 40), got %v", smoothed)
	}
}

func TestSmootherWindowOverflow(t *testing.T) {
	registry := NewRegistry()
	identity := registry.Create(1, NewRectFromCorners(0, 0, 100, 200), 0)
	smoother := NewSmoother(5)

	var smoothed Point
	for frame := 0; frame < 7; frame++ {
		smoothed = smoother.Observe(identity, Point{X: float64(frame), Y: 0}, frame)
	}
	samples := identity.Samples()
	if len(samples) != 5 {
		t.Fatalf("Expected 5 retained samples, got %d", len(samples))
	}
	if samples[0].Frame != 2 || samples[4].Frame != 6 {
		t.Errorf("Expected frames 2..6 retained, got %d..%d", samples[0].Frame, samples[4].Frame)
	}
	// Window x = 2..6, weights 1..5: (2+6+12+20+30) / 15 = 70/15
	if math.Abs(smoothed.X-70.0/15.0) > eps {
		t.Errorf("Expected %f, got %f", 70.0/15.0, smoothed.X)
	}
	// Baseline never moves
	baseline, _ := identity.Baseline()
	if baseline.X != 0 {
		t.Errorf("Baseline should stay at first sample, got %v", baseline)
	}
}

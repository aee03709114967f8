package proctor

// Smoother keeps a short window of landmark aggregates per identity and
// returns their linearly weighted moving average (newest sample weighs most).
type Smoother struct {
	windowSize int
}

// NewSmoother creates smoother with given window size
func NewSmoother(windowSize int) *Smoother {
	return &Smoother{
		windowSize: windowSize,
	}
}

// Observe appends sample to identity's window and returns smoothed aggregate.
// Baseline is captured on the first aggregate the identity ever gets.
func (smoother *Smoother) Observe(identity *Identity, aggregate Point, frame int) Point {
	identity.captureBaseline(aggregate)
	identity.samples = append(identity.samples, Sample{Aggregate: aggregate, Frame: frame})
	if len(identity.samples) > smoother.windowSize {
		identity.samples = identity.samples[len(identity.samples)-smoother.windowSize:]
	}
	return weightedAverage(identity.samples)
}

// weightedAverage gives sample i (0 is oldest) weight i+1. Less than 2 samples returns the last raw one.
func weightedAverage(samples []Sample) Point {
	if len(samples) == 0 {
		return Point{}
	}
	if len(samples) < 2 {
		return samples[len(samples)-1].Aggregate
	}
	sumX, sumY, sumWeights := 0.0, 0.0, 0.0
	for i, sample := range samples {
		weight := float64(i + 1)
		sumX += sample.Aggregate.X * weight
		sumY += sample.Aggregate.Y * weight
		sumWeights += weight
	}
	return Point{
		X: sumX / sumWeights,
		Y: sumY / sumWeights,
	}
}

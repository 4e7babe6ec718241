package model

import (
	"math/rand"

	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
)

// Class-conditional Gaussian parameters for synthetic training data,
// keyed by canonical feature order. The at-risk class encodes known
// clinical tendencies: higher jitter and shimmer, lower HNR, higher
// RPDE. Used only when no persisted model loads; real clinical data
// would replace this wholesale.
type classDistribution struct {
	mean [2]float64 // [healthy, at-risk]
	std  [2]float64
}

var syntheticDistributions = map[string]classDistribution{
	features.PitchMean:            {mean: [2]float64{150, 145}, std: [2]float64{20, 25}},
	features.PitchStd:             {mean: [2]float64{10, 15}, std: [2]float64{3, 5}},
	features.PitchMin:             {mean: [2]float64{100, 95}, std: [2]float64{15, 20}},
	features.PitchMax:             {mean: [2]float64{200, 195}, std: [2]float64{25, 30}},
	features.JitterLocal:          {mean: [2]float64{0.003, 0.006}, std: [2]float64{0.001, 0.002}},
	features.JitterRAP:            {mean: [2]float64{0.002, 0.004}, std: [2]float64{0.0008, 0.0015}},
	features.JitterPPQ5:           {mean: [2]float64{0.002, 0.004}, std: [2]float64{0.0008, 0.0015}},
	features.ShimmerLocal:         {mean: [2]float64{0.025, 0.045}, std: [2]float64{0.008, 0.015}},
	features.ShimmerAPQ3:          {mean: [2]float64{0.015, 0.028}, std: [2]float64{0.005, 0.010}},
	features.ShimmerAPQ5:          {mean: [2]float64{0.018, 0.032}, std: [2]float64{0.006, 0.012}},
	features.HNR:                  {mean: [2]float64{22, 18}, std: [2]float64{3, 4}},
	features.SpectralCentroidMean: {mean: [2]float64{2000, 1900}, std: [2]float64{300, 350}},
	features.SpectralCentroidStd:  {mean: [2]float64{500, 550}, std: [2]float64{100, 120}},
	features.SpectralRolloffMean:  {mean: [2]float64{3500, 3300}, std: [2]float64{500, 550}},
	features.ZCRMean:              {mean: [2]float64{0.05, 0.06}, std: [2]float64{0.01, 0.015}},
	features.RPDEKey:              {mean: [2]float64{0.4, 0.5}, std: [2]float64{0.05, 0.08}},
	features.DFAKey:               {mean: [2]float64{0.7, 0.65}, std: [2]float64{0.1, 0.12}},
}

// syntheticSampleCount is the total generated dataset size, split
// evenly between the two classes
const syntheticSampleCount = 200

// SynthesizeTrainingData draws a labeled dataset from the
// class-conditional distributions and shuffles it jointly with its
// labels. The same rng state always produces the same dataset.
func SynthesizeTrainingData(rng *rand.Rand) ([][]float64, []int) {
	perClass := syntheticSampleCount / 2

	X := make([][]float64, 0, syntheticSampleCount)
	y := make([]int, 0, syntheticSampleCount)

	for class := range 2 {
		for range perClass {
			sample := make([]float64, features.NumFeatures)
			for i, name := range features.FeatureOrder {
				dist := syntheticDistributions[name]
				sample[i] = dist.mean[class] + rng.NormFloat64()*dist.std[class]
			}
			X = append(X, sample)
			y = append(y, class)
		}
	}

	// Joint shuffle
	perm := rng.Perm(len(X))
	shuffledX := make([][]float64, len(X))
	shuffledY := make([]int, len(y))
	for i, p := range perm {
		shuffledX[i] = X[p]
		shuffledY[i] = y[p]
	}

	return shuffledX, shuffledY
}

// Package embedding defines the self-supervised embedding interface
// used by the detailed-analysis path. The only implementation today is
// a demo stand-in; a real transformer-backed extractor slots in behind
// the same interface.
package embedding

import (
	"math"
	"math/rand"
)

// EmbeddingRate is the frame rate convention of the embedding models
// this interface stands in for (one frame per 20ms at 16kHz)
const EmbeddingRate = 50

// Summary holds global statistics over a clip's embedding sequence
type Summary struct {
	GlobalMean float64 `json:"embedding_global_mean"`
	GlobalStd  float64 `json:"embedding_global_std"`
	TimeSteps  int     `json:"time_steps"`
	Dim        int     `json:"dim"`
}

// Extractor produces embedding summaries from a waveform
type Extractor interface {
	ExtractSummary(pcm []float64, sampleRate int) Summary
}

// DemoExtractor emits pseudo-random embedding statistics shaped like
// the real model's output. Seeded from the clip length so repeated
// runs on the same audio stay reproducible.
type DemoExtractor struct {
	dim int
}

// NewDemoExtractor creates the demo stand-in with the conventional
// 768-dimensional embedding size
func NewDemoExtractor() *DemoExtractor {
	return &DemoExtractor{dim: 768}
}

// ExtractSummary synthesizes statistics for a standard-normal
// embedding sequence of the expected shape
func (e *DemoExtractor) ExtractSummary(pcm []float64, sampleRate int) Summary {
	duration := float64(len(pcm)) / float64(sampleRate)
	timeSteps := int(duration * EmbeddingRate)
	if timeSteps < 1 {
		timeSteps = 1
	}

	rng := rand.New(rand.NewSource(int64(len(pcm))))

	n := timeSteps * e.dim
	sum := 0.0
	sumSq := 0.0
	for range n {
		v := rng.NormFloat64()
		sum += v
		sumSq += v * v
	}
	mean := sum / float64(n)

	return Summary{
		GlobalMean: mean,
		GlobalStd:  math.Sqrt(sumSq/float64(n) - mean*mean),
		TimeSteps:  timeSteps,
		Dim:        e.dim,
	}
}

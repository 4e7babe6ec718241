// Package concepts maps acoustic features to clinical voice concepts.
//
// The current mapper is an explicitly temporary heuristic stand-in for
// a trained concept-bottleneck model: deterministic affine formulas
// over the feature set, not clinical ground truth. The Mapper interface
// exists so a learned implementation can replace it without touching
// the analysis pipeline.
package concepts

import (
	"fmt"
	"math"
	"strings"

	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
)

// The seven clinical voice concepts
const (
	Tremor          = "tremor"
	Breathiness     = "breathiness"
	Monotone        = "monotone"
	Precision       = "precision"
	RateVariability = "rate_variability"
	Harshness       = "harshness"
	Strain          = "strain"
)

// ConceptNames lists every concept a Mapper must score
var ConceptNames = []string{
	Tremor, Breathiness, Monotone, Precision, RateVariability, Harshness, Strain,
}

// Scores maps concept names to values in [0, 1]
type Scores map[string]float64

// Mapper scores clinical concepts from an acoustic feature set and
// renders a human-readable explanation
type Mapper interface {
	Map(fs features.FeatureSet) Scores
	Explain(scores Scores) string
}

// HeuristicMapper derives concept scores with fixed affine formulas
type HeuristicMapper struct{}

// NewHeuristicMapper creates the deterministic demo mapper
func NewHeuristicMapper() *HeuristicMapper {
	return &HeuristicMapper{}
}

// Map scores all seven concepts. Every score is clamped to [0, 1].
func (m *HeuristicMapper) Map(fs features.FeatureSet) Scores {
	// Rough normalization of the raw features to [0, 1]
	jitter := math.Min(fs[features.JitterLocal]*100, 1.0)
	shimmer := math.Min(fs[features.ShimmerLocal]*20, 1.0)
	hnr := math.Max(0, (25-fs[features.HNR])/25)           // lower HNR is worse
	pitchStd := math.Max(0, (50-fs[features.PitchStd])/50) // lower variation is worse (monotone)

	return Scores{
		Tremor:          clamp01(jitter*0.8 + 0.1),
		Breathiness:     clamp01(hnr*0.7 + 0.1),
		Monotone:        clamp01(pitchStd * 0.9),
		Precision:       clamp01(shimmer*0.6 + 0.2),
		RateVariability: 0.3, // placeholder until rate tracking lands
		Harshness:       clamp01(jitter*0.5 + shimmer*0.5),
		Strain:          clamp01(jitter*0.4 + 0.1),
	}
}

// Explanation thresholds for the triggered phrases
const (
	tremorThreshold      = 0.4
	monotoneThreshold    = 0.5
	breathinessThreshold = 0.4
)

// stableMessage is returned when no concept crosses its threshold
const stableMessage = "Voice characteristics appear stable with no significant clinical indicators."

// Explain builds a natural-language summary from the concept scores
func (m *HeuristicMapper) Explain(scores Scores) string {
	var triggers []string
	if scores[Tremor] > tremorThreshold {
		triggers = append(triggers, "detectable vocal tremor")
	}
	if scores[Monotone] > monotoneThreshold {
		triggers = append(triggers, "reduced pitch variation (monotone)")
	}
	if scores[Breathiness] > breathinessThreshold {
		triggers = append(triggers, "breathy voice quality")
	}

	if len(triggers) == 0 {
		return stableMessage
	}
	return fmt.Sprintf("Analysis detects %s.", strings.Join(triggers, ", "))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

package model

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
)

// DerivedMetrics are normalized, user-facing indicators computed from
// the raw feature set, independent of the classifier
type DerivedMetrics struct {
	Stability   float64 `json:"stability"`   // 0-1, higher is steadier phonation
	Variability float64 `json:"variability"` // 0-2, pitch variation scale
	Trend       string  `json:"trend"`       // signed percentage, e.g. "+3%" or "-2%"
}

// CalculateMetrics derives stability/variability/trend indicators from
// a feature set. Pure function; typical-range constants come from the
// jitter/shimmer/HNR ranges reported for sustained phonation.
func CalculateMetrics(fs features.FeatureSet) DerivedMetrics {
	jitterAvg := (fs[features.JitterLocal] + fs[features.JitterRAP] + fs[features.JitterPPQ5]) / 3
	shimmerAvg := (fs[features.ShimmerLocal] + fs[features.ShimmerAPQ3] + fs[features.ShimmerAPQ5]) / 3

	jitterNorm := clamp01(1 - jitterAvg/0.01)
	shimmerNorm := clamp01(1 - shimmerAvg/0.08)
	stability := (jitterNorm + shimmerNorm) / 2

	variability := math.Min(2.0, fs[features.PitchStd]/10)

	hnrScore := (fs[features.HNR] - 15) / 10
	rpdeScore := (0.5 - fs[features.RPDEKey]) / 0.2
	trendValue := (hnrScore + rpdeScore) / 2

	trendPct := int(trendValue * 10)
	trend := fmt.Sprintf("%d%%", trendPct)
	if trendPct >= 0 {
		trend = fmt.Sprintf("+%d%%", trendPct)
	}

	return DerivedMetrics{
		Stability:   roundTo(stability, 2),
		Variability: roundTo(variability, 1),
		Trend:       trend,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

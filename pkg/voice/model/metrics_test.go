package model

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
)

var trendPattern = regexp.MustCompile(`^[+-]\d+%$`)

func TestCalculateMetricsStableVoice(t *testing.T) {
	fs := features.FeatureSet{
		features.JitterLocal:  0.001,
		features.JitterRAP:    0.001,
		features.JitterPPQ5:   0.001,
		features.ShimmerLocal: 0.01,
		features.ShimmerAPQ3:  0.008,
		features.ShimmerAPQ5:  0.009,
		features.PitchStd:     5,
		features.HNR:          22,
		features.RPDEKey:      0.35,
	}

	m := CalculateMetrics(fs)
	assert.Greater(t, m.Stability, 0.7)
	assert.LessOrEqual(t, m.Stability, 1.0)
	assert.InDelta(t, 0.5, m.Variability, 1e-9)
	assert.Regexp(t, trendPattern, m.Trend)
	assert.Equal(t, "+7%", m.Trend)
}

func TestCalculateMetricsPerturbedVoice(t *testing.T) {
	fs := features.FeatureSet{
		features.JitterLocal:  0.05,
		features.JitterRAP:    0.05,
		features.JitterPPQ5:   0.05,
		features.ShimmerLocal: 0.3,
		features.ShimmerAPQ3:  0.3,
		features.ShimmerAPQ5:  0.3,
		features.PitchStd:     50,
		features.HNR:          8,
		features.RPDEKey:      0.7,
	}

	m := CalculateMetrics(fs)

	// Extreme perturbation clamps stability to zero
	assert.Zero(t, m.Stability)

	// Variability caps at 2.0
	assert.Equal(t, 2.0, m.Variability)

	// Low HNR and high RPDE drive the trend negative
	assert.Regexp(t, trendPattern, m.Trend)
	assert.Equal(t, "-8%", m.Trend)
}

func TestCalculateMetricsZeroFeatures(t *testing.T) {
	m := CalculateMetrics(features.FeatureSet{})

	// Zero perturbation reads as perfectly stable
	assert.Equal(t, 1.0, m.Stability)
	assert.Zero(t, m.Variability)
	assert.Regexp(t, trendPattern, m.Trend)
}

func TestCalculateMetricsRounding(t *testing.T) {
	fs := features.FeatureSet{
		features.JitterLocal:  0.00333,
		features.JitterRAP:    0.00333,
		features.JitterPPQ5:   0.00333,
		features.ShimmerLocal: 0.0277,
		features.ShimmerAPQ3:  0.0277,
		features.ShimmerAPQ5:  0.0277,
		features.PitchStd:     12.34,
		features.HNR:          20,
		features.RPDEKey:      0.45,
	}

	m := CalculateMetrics(fs)
	assert.InDelta(t, m.Stability, roundTo(m.Stability, 2), 1e-12)
	assert.InDelta(t, m.Variability, roundTo(m.Variability, 1), 1e-12)
}

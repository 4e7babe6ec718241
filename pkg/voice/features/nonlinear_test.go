package features

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPDEShortSignalFallsBack(t *testing.T) {
	result := RPDE(make([]float64, 10))
	assert.True(t, result.Fallback)
	assert.Equal(t, 0.4, result.Value)
}

func TestRPDEConstantSignalFallsBack(t *testing.T) {
	// Zero variance means the recurrence threshold degenerates
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = 0.5
	}
	result := RPDE(signal)
	assert.True(t, result.Fallback)
	assert.Equal(t, 0.4, result.Value)
}

func TestRPDEPeriodicSignal(t *testing.T) {
	// A sine recurs every period, so the gap distribution is computable
	signal := make([]float64, 3000)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 220 * float64(i) / 22050)
	}

	result := RPDE(signal)
	assert.False(t, result.Fallback)
	assert.GreaterOrEqual(t, result.Value, 0.0)
	assert.False(t, math.IsNaN(result.Value))
}

func TestRPDEWhiteNoiseFallsBack(t *testing.T) {
	// Independent samples almost never recur within 0.1 sigma in a
	// 10-dimensional embedding, leaving no gap distribution
	rng := rand.New(rand.NewSource(7))
	signal := make([]float64, 3000)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	result := RPDE(signal)
	assert.True(t, result.Fallback)
	assert.Equal(t, 0.4, result.Value)
}

func TestDFAShortSignalFallsBack(t *testing.T) {
	result := DFA(make([]float64, 10))
	assert.True(t, result.Fallback)
	assert.Equal(t, 0.7, result.Value)
}

func TestDFAConstantSignalFallsBack(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = 1.0
	}
	result := DFA(signal)
	assert.True(t, result.Fallback)
	assert.Equal(t, 0.7, result.Value)
}

func TestDFAWhiteNoise(t *testing.T) {
	// White noise has a scaling exponent near 0.5
	rng := rand.New(rand.NewSource(42))
	signal := make([]float64, 4000)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	result := DFA(signal)
	require.False(t, result.Fallback)
	assert.InDelta(t, 0.5, result.Value, 0.2)
}

func TestDFASmoothSignalScalesHigher(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	noise := make([]float64, 4000)
	walk := make([]float64, 4000)
	cum := 0.0
	for i := range noise {
		v := rng.NormFloat64()
		noise[i] = v
		cum += v
		walk[i] = cum
	}

	noiseDFA := DFA(noise)
	walkDFA := DFA(walk)
	require.False(t, noiseDFA.Fallback)
	require.False(t, walkDFA.Fallback)

	// Integrating raises the exponent by about one
	assert.Greater(t, walkDFA.Value, noiseDFA.Value+0.5)
}

func TestLogSpacedScales(t *testing.T) {
	scales := logSpacedScales(4, 1000, 10)
	require.NotEmpty(t, scales)

	assert.Equal(t, 4, scales[0])
	assert.InDelta(t, 1000, scales[len(scales)-1], 2)
	for i := 1; i < len(scales); i++ {
		assert.Greater(t, scales[i], scales[i-1])
	}
}

func TestShannonEntropy(t *testing.T) {
	// Uniform distribution maximizes entropy
	uniform := []float64{0.25, 0.25, 0.25, 0.25}
	assert.InDelta(t, math.Log(4), shannonEntropy(uniform), 1e-9)

	// Point mass has zero entropy
	point := []float64{1}
	assert.Zero(t, shannonEntropy(point))

	// Normalization is internal
	scaled := []float64{1, 1, 1, 1}
	assert.InDelta(t, math.Log(4), shannonEntropy(scaled), 1e-9)
}

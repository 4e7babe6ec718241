package features

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ExtractorTestSuite exercises the full feature set on synthetic clips
type ExtractorTestSuite struct {
	suite.Suite
	extractor  *Extractor
	sampleRate int

	tonePCM    []float64
	silencePCM []float64
}

// SetupSuite runs once before all tests
func (s *ExtractorTestSuite) SetupSuite() {
	s.sampleRate = 22050
	s.extractor = NewExtractor(s.sampleRate)

	// Three seconds of 220Hz tone with a little additive noise so the
	// perturbation measures have something to measure
	rng := rand.New(rand.NewSource(1))
	s.tonePCM = make([]float64, 3*s.sampleRate)
	for i := range s.tonePCM {
		s.tonePCM[i] = 0.7*math.Sin(2*math.Pi*220*float64(i)/float64(s.sampleRate)) +
			0.005*rng.NormFloat64()
	}

	s.silencePCM = make([]float64, 3*s.sampleRate)
}

func (s *ExtractorTestSuite) TestAllFeaturesPresent() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	for _, name := range FeatureOrder {
		_, ok := result.Features[name]
		s.True(ok, "missing feature %s", name)
	}
	s.Len(result.Features, NumFeatures)
}

func (s *ExtractorTestSuite) TestPitchOfTone() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	fs := result.Features
	s.InDelta(220, fs[PitchMean], 10)
	s.LessOrEqual(fs[PitchMin], fs[PitchMean])
	s.GreaterOrEqual(fs[PitchMax], fs[PitchMean])
	s.GreaterOrEqual(fs[PitchStd], 0.0)
}

func (s *ExtractorTestSuite) TestJitterRelations() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	fs := result.Features
	s.GreaterOrEqual(fs[JitterLocal], 0.0)
	s.Equal(fs[JitterLocal], fs[JitterPPQ5],
		"ppq5 is defined as the local quotient")
}

func (s *ExtractorTestSuite) TestShimmerRelations() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	fs := result.Features
	s.Greater(fs[ShimmerLocal], 0.0)
	s.InDelta(0.8*fs[ShimmerLocal], fs[ShimmerAPQ3], 1e-12)
	s.InDelta(0.9*fs[ShimmerLocal], fs[ShimmerAPQ5], 1e-12)
}

func (s *ExtractorTestSuite) TestHarmonicToneHasHighHNR() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	// A near-pure tone is strongly harmonic
	s.Greater(result.Features[HNR], 5.0)
}

func (s *ExtractorTestSuite) TestSpectralShapeOfTone() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	fs := result.Features
	s.Greater(fs[SpectralCentroidMean], 0.0)
	s.Greater(fs[SpectralRolloffMean], 0.0)
	s.GreaterOrEqual(fs[SpectralCentroidStd], 0.0)
	s.Greater(fs[ZCRMean], 0.0)
}

func (s *ExtractorTestSuite) TestComplexityDiagnostics() {
	result, err := s.extractor.Extract(s.tonePCM)
	s.Require().NoError(err)

	s.Equal(result.RPDE.Value, result.Features[RPDEKey])
	s.Equal(result.DFA.Value, result.Features[DFAKey])
	s.False(math.IsNaN(result.Features[RPDEKey]))
	s.False(math.IsNaN(result.Features[DFAKey]))
}

func (s *ExtractorTestSuite) TestSilenceProducesDefaults() {
	result, err := s.extractor.Extract(s.silencePCM)
	s.Require().NoError(err)

	fs := result.Features
	s.Zero(fs[PitchMean])
	s.Zero(fs[JitterLocal])
	s.Zero(fs[ShimmerLocal])
	s.True(result.RPDE.Fallback)
	s.True(result.DFA.Fallback)
	s.Equal(0.4, fs[RPDEKey])
	s.Equal(0.7, fs[DFAKey])
}

func (s *ExtractorTestSuite) TestNoNaNLeaks() {
	result, err := s.extractor.Extract(s.silencePCM)
	s.Require().NoError(err)

	for _, name := range FeatureOrder {
		v := result.Features[name]
		s.False(math.IsNaN(v), "NaN in %s", name)
		s.False(math.IsInf(v, 0), "Inf in %s", name)
	}
}

func (s *ExtractorTestSuite) TestEmptyInputFails() {
	_, err := s.extractor.Extract(nil)
	s.Error(err)
}

func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func TestFeatureSetVector(t *testing.T) {
	fs := FeatureSet{
		PitchMean:   120.5,
		JitterLocal: 0.004,
		DFAKey:      0.7,
	}

	vector := fs.Vector()
	require.Len(t, vector, NumFeatures)

	assert.Equal(t, 120.5, vector[0])
	assert.Equal(t, 0.004, vector[4])
	assert.Equal(t, 0.7, vector[NumFeatures-1])

	// Missing features default to zero
	assert.Zero(t, vector[1])
	assert.Zero(t, vector[10])
}

func TestFeatureOrderIsStable(t *testing.T) {
	// The classifier's persisted artifacts depend on this ordering
	expected := []string{
		"pitch_mean", "pitch_std", "pitch_min", "pitch_max",
		"jitter_local", "jitter_rap", "jitter_ppq5",
		"shimmer_local", "shimmer_apq3", "shimmer_apq5",
		"hnr",
		"spectral_centroid_mean", "spectral_centroid_std",
		"spectral_rolloff_mean", "zcr_mean",
		"rpde", "dfa",
	}
	assert.Equal(t, expected, FeatureOrder)
	assert.Equal(t, 17, NumFeatures)
}

package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/voice-biomarker/pkg/audio/analyzers"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

// Result holds the extracted features plus diagnostics about the
// nonlinear measures, so callers can tell a computed RPDE/DFA value
// from its fallback constant
type Result struct {
	Features FeatureSet       `json:"features"`
	RPDE     ComplexityResult `json:"rpde"`
	DFA      ComplexityResult `json:"dfa"`
}

// Extractor computes the acoustic feature set from a waveform. It is
// stateless across calls; one Extractor can serve many clips.
type Extractor struct {
	sampleRate  int
	frameLength int
	hopLength   int
	analyzer    *analyzers.SpectralAnalyzer
	pitch       *pitchTracker
	logger      logging.Logger
}

// NewExtractor creates a feature extractor for the given sample rate
func NewExtractor(sampleRate int) *Extractor {
	const (
		frameLength = 2048
		hopLength   = 512
	)
	return &Extractor{
		sampleRate:  sampleRate,
		frameLength: frameLength,
		hopLength:   hopLength,
		analyzer:    analyzers.NewSpectralAnalyzer(sampleRate),
		pitch:       newPitchTracker(sampleRate, frameLength, hopLength),
		logger: logging.WithFields(logging.Fields{
			"component":   "feature_extractor",
			"sample_rate": sampleRate,
		}),
	}
}

// Extract computes the full feature set for a mono waveform. Every key
// in FeatureOrder is present in the result; features that could not be
// computed hold their documented defaults.
func (e *Extractor) Extract(pcm []float64) (*Result, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty waveform")
	}

	sp, err := e.analyzer.STFT(pcm, e.frameLength, e.hopLength)
	if err != nil {
		return nil, fmt.Errorf("spectral analysis failed: %w", err)
	}

	fs := make(FeatureSet, NumFeatures)

	f0 := e.pitch.Track(pcm)
	if len(f0) > 0 {
		fs[PitchMean] = stat.Mean(f0, nil)
		fs[PitchStd] = stat.PopStdDev(f0, nil)
		fs[PitchMin] = floats.Min(f0)
		fs[PitchMax] = floats.Max(f0)
	} else {
		fs[PitchMean], fs[PitchStd], fs[PitchMin], fs[PitchMax] = 0, 0, 0, 0
	}

	fs[JitterLocal], fs[JitterRAP], fs[JitterPPQ5] = jitterFeatures(f0)

	rms := analyzers.FrameRMS(pcm, e.frameLength, e.hopLength)
	fs[ShimmerLocal], fs[ShimmerAPQ3], fs[ShimmerAPQ5] = shimmerFeatures(rms)

	fs[HNR] = hnrProxy(e.analyzer, sp)

	e.spectralShape(sp, fs)
	fs[ZCRMean] = meanOf(analyzers.ZeroCrossingRates(pcm, e.frameLength, e.hopLength))

	rpde := RPDE(pcm)
	dfa := DFA(pcm)
	fs[RPDEKey] = rpde.Value
	fs[DFAKey] = dfa.Value

	for _, name := range FeatureOrder {
		fs[name] = sanitize(fs[name])
	}

	e.logger.Debug("Feature extraction completed", logging.Fields{
		"samples":       len(pcm),
		"voiced_frames": len(f0),
		"rpde_fallback": rpde.Fallback,
		"dfa_fallback":  dfa.Fallback,
	})

	return &Result{Features: fs, RPDE: rpde, DFA: dfa}, nil
}

// spectralShape fills centroid/rolloff statistics from the spectrogram
func (e *Extractor) spectralShape(sp *analyzers.SpectrogramResult, fs FeatureSet) {
	freqs := e.analyzer.GetFrequencyBins(sp.FreqBins)

	centroids := make([]float64, sp.TimeFrames)
	rolloffs := make([]float64, sp.TimeFrames)
	for t := range sp.TimeFrames {
		centroids[t] = e.analyzer.SpectralCentroid(sp.Magnitude[t], freqs)
		rolloffs[t] = e.analyzer.SpectralRolloff(sp.Magnitude[t], freqs, 0.85)
	}

	fs[SpectralCentroidMean] = stat.Mean(centroids, nil)
	fs[SpectralCentroidStd] = stat.PopStdDev(centroids, nil)
	fs[SpectralRolloffMean] = stat.Mean(rolloffs, nil)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// guard against NaN leaking into the feature vector from degenerate
// single-frame statistics
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

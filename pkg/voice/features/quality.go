package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/voice-biomarker/pkg/audio/analyzers"
)

// jitterFeatures computes frequency perturbation proxies from the
// voiced f0 track. jitter_rap needs at least three periods and falls
// back to jitter_local otherwise; jitter_ppq5 uses the same quotient
// as jitter_local rather than the Praat five-point form.
func jitterFeatures(f0 []float64) (local, rap, ppq5 float64) {
	if len(f0) <= 1 {
		return 0, 0, 0
	}

	periods := make([]float64, len(f0))
	for i, f := range f0 {
		periods[i] = 1.0 / f
	}
	meanPeriod := stat.Mean(periods, nil)
	if meanPeriod <= 0 {
		return 0, 0, 0
	}

	sumDiff := 0.0
	for i := 1; i < len(periods); i++ {
		sumDiff += math.Abs(periods[i] - periods[i-1])
	}
	local = sumDiff / float64(len(periods)-1) / meanPeriod

	if len(periods) > 2 {
		sumRAP := 0.0
		for i := 2; i < len(periods); i++ {
			sumRAP += math.Abs(periods[i] - periods[i-2])
		}
		rap = sumRAP / float64(len(periods)-2) / meanPeriod
	} else {
		rap = local
	}

	ppq5 = local
	return local, rap, ppq5
}

// shimmerFeatures computes amplitude perturbation proxies from the
// frame RMS track. apq3 and apq5 are fixed-ratio approximations of the
// multi-point quotients, scaled from shimmer_local.
func shimmerFeatures(rms []float64) (local, apq3, apq5 float64) {
	if len(rms) < 2 {
		return 0, 0, 0
	}

	meanRMS := stat.Mean(rms, nil)
	if meanRMS <= 0 {
		return 0, 0, 0
	}

	sumDiff := 0.0
	for i := 1; i < len(rms); i++ {
		sumDiff += math.Abs(rms[i] - rms[i-1])
	}
	local = sumDiff / float64(len(rms)-1) / meanRMS

	apq3 = 0.8 * local
	apq5 = 0.9 * local
	return local, apq3, apq5
}

// hnrProxy approximates the harmonics-to-noise ratio from mean spectral
// flatness. A flat (noisy) spectrum gives a low value, a harmonic
// spectrum a high one.
func hnrProxy(analyzer *analyzers.SpectralAnalyzer, sp *analyzers.SpectrogramResult) float64 {
	if sp.TimeFrames == 0 {
		return 0
	}

	sum := 0.0
	for t := range sp.TimeFrames {
		sum += analyzer.SpectralFlatness(sp.Magnitude[t])
	}
	meanFlatness := sum / float64(sp.TimeFrames)

	return -10 * math.Log10(meanFlatness+1e-10)
}

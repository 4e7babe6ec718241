package analyzers

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

// SpectralAnalyzer provides STFT and framewise spectral statistics
type SpectralAnalyzer struct {
	windowGenerator *WindowGenerator
	sampleRate      int
	logger          logging.Logger
}

// SpectrogramResult holds the result of STFT analysis
type SpectrogramResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		windowGenerator: NewWindowGenerator(),
		sampleRate:      sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// STFT computes a short-time Fourier transform with a Hann window.
// Frames start every hopSize samples; the final frame is zero-padded.
func (sa *SpectralAnalyzer) STFT(signal []float64, windowSize, hopSize int) (*SpectrogramResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if windowSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("invalid STFT parameters: window=%d hop=%d", windowSize, hopSize)
	}

	window := sa.windowGenerator.Hann(windowSize)
	freqBins := windowSize/2 + 1
	timeFrames := (len(signal) + hopSize - 1) / hopSize

	magnitude := make([][]float64, timeFrames)
	frame := make([]float64, windowSize)

	for t := range timeFrames {
		start := t * hopSize
		for i := range windowSize {
			if start+i < len(signal) {
				frame[i] = signal[start+i] * window[i]
			} else {
				frame[i] = 0
			}
		}

		spectrum := fft.FFTReal(frame)
		magnitude[t] = make([]float64, freqBins)
		for f := range freqBins {
			magnitude[t][f] = cmplx.Abs(spectrum[f])
		}
	}

	return &SpectrogramResult{
		Magnitude:      magnitude,
		TimeFrames:     timeFrames,
		FreqBins:       freqBins,
		SampleRate:     sa.sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sa.sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sa.sampleRate),
	}, nil
}

// FFT computes a real-input FFT using mjibson/go-dsp
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// GetFrequencyBins returns frequency values for each FFT bin
func (sa *SpectralAnalyzer) GetFrequencyBins(numBins int) []float64 {
	freqs := make([]float64, numBins)
	for i := range numBins {
		freqs[i] = float64(i) * float64(sa.sampleRate) / float64((numBins-1)*2)
	}
	return freqs
}

// FrameEnergies returns per-frame spectral energy (sum of squared magnitude)
func (sa *SpectralAnalyzer) FrameEnergies(sp *SpectrogramResult) []float64 {
	energies := make([]float64, sp.TimeFrames)
	for t := range sp.TimeFrames {
		sum := 0.0
		for f := range sp.FreqBins {
			mag := sp.Magnitude[t][f]
			sum += mag * mag
		}
		energies[t] = sum
	}
	return energies
}

// SpectralFlux returns the L2 norm of the frame-to-frame magnitude
// difference. The first frame has no predecessor and gets flux 0.
func (sa *SpectralAnalyzer) SpectralFlux(sp *SpectrogramResult) []float64 {
	flux := make([]float64, sp.TimeFrames)
	for t := 1; t < sp.TimeFrames; t++ {
		sum := 0.0
		for f := range sp.FreqBins {
			diff := sp.Magnitude[t][f] - sp.Magnitude[t-1][f]
			sum += diff * diff
		}
		flux[t] = math.Sqrt(sum)
	}
	return flux
}

// SpectralCentroid computes the magnitude-weighted mean frequency
func (sa *SpectralAnalyzer) SpectralCentroid(spectrum, freqs []float64) float64 {
	if len(spectrum) != len(freqs) {
		return 0
	}

	numerator := 0.0
	denominator := 0.0
	for i := range spectrum {
		numerator += freqs[i] * spectrum[i]
		denominator += spectrum[i]
	}

	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// SpectralRolloff computes the frequency below which the given fraction
// of total spectral energy is contained
func (sa *SpectralAnalyzer) SpectralRolloff(spectrum, freqs []float64, threshold float64) float64 {
	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}
	if totalEnergy == 0 {
		return 0
	}

	targetEnergy := threshold * totalEnergy
	cumulativeEnergy := 0.0
	for i := range spectrum {
		cumulativeEnergy += spectrum[i] * spectrum[i]
		if cumulativeEnergy >= targetEnergy {
			if i < len(freqs) {
				return freqs[i]
			}
			break
		}
	}

	if len(freqs) > 0 {
		return freqs[len(freqs)-1]
	}
	return 0
}

// SpectralFlatness computes the geometric-to-arithmetic mean ratio of
// the magnitude spectrum (Wiener entropy)
func (sa *SpectralAnalyzer) SpectralFlatness(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 0
	}

	logSum := 0.0
	count := 0
	for _, mag := range spectrum {
		if mag > 1e-10 {
			logSum += math.Log(mag)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	geometricMean := math.Exp(logSum / float64(count))

	arithmeticMean := 0.0
	for _, mag := range spectrum {
		arithmeticMean += mag
	}
	arithmeticMean /= float64(len(spectrum))

	if arithmeticMean == 0 {
		return 0
	}
	return geometricMean / arithmeticMean
}

// FrameRMS computes root-mean-square energy per frame. The final frame
// may be shorter than frameLength.
func FrameRMS(pcm []float64, frameLength, hopLength int) []float64 {
	if len(pcm) == 0 || frameLength <= 0 || hopLength <= 0 {
		return nil
	}

	numFrames := (len(pcm) + hopLength - 1) / hopLength
	rms := make([]float64, numFrames)
	for t := range numFrames {
		start := t * hopLength
		end := start + frameLength
		if end > len(pcm) {
			end = len(pcm)
		}
		sum := 0.0
		for _, sample := range pcm[start:end] {
			sum += sample * sample
		}
		rms[t] = math.Sqrt(sum / float64(end-start))
	}
	return rms
}

// ZeroCrossingRates computes the zero crossing rate per frame
func ZeroCrossingRates(pcm []float64, frameLength, hopLength int) []float64 {
	if len(pcm) == 0 || frameLength <= 0 || hopLength <= 0 {
		return nil
	}

	numFrames := (len(pcm) + hopLength - 1) / hopLength
	rates := make([]float64, numFrames)
	for t := range numFrames {
		start := t * hopLength
		end := start + frameLength
		if end > len(pcm) {
			end = len(pcm)
		}
		if end-start <= 1 {
			continue
		}
		crossings := 0
		for i := start + 1; i < end; i++ {
			if (pcm[i-1] >= 0 && pcm[i] < 0) || (pcm[i-1] < 0 && pcm[i] >= 0) {
				crossings++
			}
		}
		rates[t] = float64(crossings) / float64(end-start-1)
	}
	return rates
}

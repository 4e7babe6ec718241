package voice

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/voice-biomarker/pkg/audio/analyzers"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

// SpeechSegment is a contiguous voiced region in seconds
type SpeechSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds
func (s SpeechSegment) Duration() float64 {
	return s.End - s.Start
}

// VADConfig contains voice activity detection settings
type VADConfig struct {
	SampleRate        int     `mapstructure:"sample_rate"`
	FrameLength       int     `mapstructure:"frame_length"`
	HopLength         int     `mapstructure:"hop_length"`
	EnergyThreshold   float64 `mapstructure:"energy_threshold"`
	FluxThreshold     float64 `mapstructure:"flux_threshold"`
	MinSpeechDuration float64 `mapstructure:"min_speech_duration"`
	MedianFilterSize  int     `mapstructure:"median_filter_size"`
}

// DefaultVADConfig returns VAD settings tuned for 22.05kHz voice clips
func DefaultVADConfig() VADConfig {
	return VADConfig{
		SampleRate:        22050,
		FrameLength:       2048,
		HopLength:         512,
		EnergyThreshold:   0.01,
		FluxThreshold:     0.02,
		MinSpeechDuration: 0.3,
		MedianFilterSize:  5,
	}
}

// SpectralEnergyVAD detects speech using spectral energy and flux.
// The energy threshold adapts to the clip so quiet, hypophonic speakers
// are not masked by a fixed global threshold, and the flux term catches
// soft speech that is spectrally dynamic but low energy.
type SpectralEnergyVAD struct {
	config          VADConfig
	analyzer        *analyzers.SpectralAnalyzer
	minSpeechFrames int
	logger          logging.Logger
}

// NewSpectralEnergyVAD creates a VAD with the given configuration
func NewSpectralEnergyVAD(config VADConfig) *SpectralEnergyVAD {
	return &SpectralEnergyVAD{
		config:          config,
		analyzer:        analyzers.NewSpectralAnalyzer(config.SampleRate),
		minSpeechFrames: int(config.MinSpeechDuration * float64(config.SampleRate) / float64(config.HopLength)),
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_energy_vad",
		}),
	}
}

// DetectSpeech returns the ordered speech segments found in pcm.
// A clip with no activity returns an empty (non-nil) slice.
func (v *SpectralEnergyVAD) DetectSpeech(pcm []float64) []SpeechSegment {
	segments := []SpeechSegment{}
	if len(pcm) == 0 {
		return segments
	}

	sp, err := v.analyzer.STFT(pcm, v.config.FrameLength, v.config.HopLength)
	if err != nil {
		v.logger.Error(err, "STFT failed, treating clip as silence")
		return segments
	}

	energy := normalizeToMax(v.analyzer.FrameEnergies(sp))
	flux := normalizeToMax(v.analyzer.SpectralFlux(sp))

	energyMean := stat.Mean(energy, nil)
	energyStd := stat.PopStdDev(energy, nil)
	adaptiveThreshold := math.Max(v.config.EnergyThreshold, energyMean+0.5*energyStd)

	active := make([]bool, len(energy))
	for i := range energy {
		active[i] = energy[i] > adaptiveThreshold || flux[i] > v.config.FluxThreshold
	}
	active = medianFilterBool(active, v.config.MedianFilterSize)

	for _, seg := range v.findSegments(active) {
		segments = append(segments, SpeechSegment{
			Start: float64(seg[0]) * float64(v.config.HopLength) / float64(v.config.SampleRate),
			End:   float64(seg[1]) * float64(v.config.HopLength) / float64(v.config.SampleRate),
		})
	}

	v.logger.Debug("Speech detection completed", logging.Fields{
		"frames":             len(active),
		"segments":           len(segments),
		"adaptive_threshold": adaptiveThreshold,
	})

	return segments
}

// findSegments merges consecutive active frames into [start, end) frame
// index pairs, dropping runs shorter than the minimum speech duration.
// A run still open at the end of the clip is subject to the same check.
func (v *SpectralEnergyVAD) findSegments(active []bool) [][2]int {
	var segments [][2]int
	inSpeech := false
	startFrame := 0

	for i, isSpeech := range active {
		switch {
		case isSpeech && !inSpeech:
			startFrame = i
			inSpeech = true
		case !isSpeech && inSpeech:
			if i-startFrame >= v.minSpeechFrames {
				segments = append(segments, [2]int{startFrame, i})
			}
			inSpeech = false
		}
	}

	if inSpeech && len(active)-startFrame >= v.minSpeechFrames {
		segments = append(segments, [2]int{startFrame, len(active)})
	}

	return segments
}

// normalizeToMax scales a series by its maximum, with an epsilon guard
// for all-zero input
func normalizeToMax(series []float64) []float64 {
	maxVal := 0.0
	for _, v := range series {
		if v > maxVal {
			maxVal = v
		}
	}
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v / (maxVal + 1e-10)
	}
	return out
}

// medianFilterBool suppresses single-frame flicker in the activity
// series. size must be odd; the window is truncated at the edges.
func medianFilterBool(series []bool, size int) []bool {
	if size <= 1 || len(series) == 0 {
		return series
	}
	half := size / 2
	out := make([]bool, len(series))
	for i := range series {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(series) {
			hi = len(series)
		}
		trues := 0
		for j := lo; j < hi; j++ {
			if series[j] {
				trues++
			}
		}
		out[i] = trues*2 > hi-lo
	}
	return out
}

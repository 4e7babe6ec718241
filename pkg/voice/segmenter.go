package voice

import (
	"github.com/RyanBlaney/voice-biomarker/pkg/audio/analyzers"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

// PauseSegmenter splits a clip into utterances at sustained pauses.
// It works on raw frame RMS rather than the spectrum, which makes it a
// cheaper, simpler alternative to SpectralEnergyVAD for alignment-style
// preprocessing.
type PauseSegmenter struct {
	sampleRate  int
	frameLength int
	hopLength   int
	logger      logging.Logger
}

// NewPauseSegmenter creates a pause-based segmenter
func NewPauseSegmenter(sampleRate int) *PauseSegmenter {
	return &PauseSegmenter{
		sampleRate:  sampleRate,
		frameLength: 2048,
		hopLength:   512,
		logger: logging.WithFields(logging.Fields{
			"component": "pause_segmenter",
		}),
	}
}

// SegmentByPauses returns speech runs separated by pauses of at least
// minPauseDuration seconds. Gaps shorter than that are treated as part
// of the same utterance. Unlike the VAD, a run still open at the end of
// the signal is always flushed, with no minimum-duration check.
func (s *PauseSegmenter) SegmentByPauses(pcm []float64, minPauseDuration, energyThreshold float64) []SpeechSegment {
	segments := []SpeechSegment{}
	if len(pcm) == 0 {
		return segments
	}

	rms := normalizeToMax(analyzers.FrameRMS(pcm, s.frameLength, s.hopLength))
	isPause := make([]bool, len(rms))
	for i, v := range rms {
		isPause[i] = v < energyThreshold
	}

	minPauseFrames := int(minPauseDuration * float64(s.sampleRate) / float64(s.hopLength))
	frameToSec := float64(s.hopLength) / float64(s.sampleRate)

	inSpeech := false
	startFrame := 0

	for i := 0; i < len(isPause); i++ {
		switch {
		case !isPause[i] && !inSpeech:
			startFrame = i
			inSpeech = true
		case isPause[i] && inSpeech:
			pauseStart := i
			pauseEnd := i
			for pauseEnd < len(isPause) && isPause[pauseEnd] {
				pauseEnd++
			}
			if pauseEnd-pauseStart >= minPauseFrames {
				segments = append(segments, SpeechSegment{
					Start: float64(startFrame) * frameToSec,
					End:   float64(pauseStart) * frameToSec,
				})
				inSpeech = false
			}
		}
	}

	if inSpeech {
		segments = append(segments, SpeechSegment{
			Start: float64(startFrame) * frameToSec,
			End:   float64(len(pcm)) / float64(s.sampleRate),
		})
	}

	return segments
}

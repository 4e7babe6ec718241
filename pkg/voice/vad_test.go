package voice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 22050

// toneAt writes a sine tone into pcm starting at the given second
func toneAt(pcm []float64, freq, startSec, durSec float64) {
	start := int(startSec * testSampleRate)
	end := start + int(durSec*testSampleRate)
	if end > len(pcm) {
		end = len(pcm)
	}
	for i := start; i < end; i++ {
		pcm[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
}

func TestDetectSpeechSilence(t *testing.T) {
	vad := NewSpectralEnergyVAD(DefaultVADConfig())
	pcm := make([]float64, 3*testSampleRate)

	segments := vad.DetectSpeech(pcm)
	require.NotNil(t, segments)
	assert.Empty(t, segments)
}

func TestDetectSpeechEmptyInput(t *testing.T) {
	vad := NewSpectralEnergyVAD(DefaultVADConfig())
	segments := vad.DetectSpeech(nil)
	require.NotNil(t, segments)
	assert.Empty(t, segments)
}

func TestDetectSpeechSingleTone(t *testing.T) {
	vad := NewSpectralEnergyVAD(DefaultVADConfig())

	// One second of tone in the middle of three seconds of silence
	pcm := make([]float64, 3*testSampleRate)
	toneAt(pcm, 440, 1.0, 1.0)

	segments := vad.DetectSpeech(pcm)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.InDelta(t, 1.0, seg.Start, 0.15)
	assert.InDelta(t, 2.0, seg.End, 0.15)
	assert.InDelta(t, 1.0, seg.Duration(), 0.2)
}

func TestDetectSpeechDropsShortBlips(t *testing.T) {
	vad := NewSpectralEnergyVAD(DefaultVADConfig())

	// A 100ms blip is below the minimum speech duration
	pcm := make([]float64, 3*testSampleRate)
	toneAt(pcm, 440, 1.5, 0.1)

	segments := vad.DetectSpeech(pcm)
	assert.Empty(t, segments)
}

func TestDetectSpeechTwoUtterances(t *testing.T) {
	vad := NewSpectralEnergyVAD(DefaultVADConfig())

	pcm := make([]float64, 4*testSampleRate)
	toneAt(pcm, 220, 0.5, 0.8)
	toneAt(pcm, 330, 2.5, 0.8)

	segments := vad.DetectSpeech(pcm)
	require.Len(t, segments, 2)
	assert.Less(t, segments[0].End, segments[1].Start)
}

func TestMedianFilterBool(t *testing.T) {
	// Single-frame flicker is suppressed
	in := []bool{false, false, true, false, false}
	out := medianFilterBool(in, 5)
	for i, v := range out {
		assert.False(t, v, "frame %d", i)
	}

	// Solid runs survive
	in = []bool{true, true, true, true, false, false, false}
	out = medianFilterBool(in, 3)
	assert.True(t, out[0])
	assert.True(t, out[2])
	assert.False(t, out[5])

	// Size 1 is a no-op
	in = []bool{true, false, true}
	assert.Equal(t, in, medianFilterBool(in, 1))
}

func TestSegmentByPausesSplitsAtPause(t *testing.T) {
	segmenter := NewPauseSegmenter(testSampleRate)

	// Two half-second utterances separated by a half-second pause
	pcm := make([]float64, int(1.5*testSampleRate))
	toneAt(pcm, 220, 0.0, 0.5)
	toneAt(pcm, 220, 1.0, 0.5)

	segments := segmenter.SegmentByPauses(pcm, 0.3, 0.05)
	require.Len(t, segments, 2)

	assert.InDelta(t, 0.0, segments[0].Start, 0.05)
	assert.InDelta(t, 0.5, segments[0].End, 0.15)
	assert.InDelta(t, 1.0, segments[1].Start, 0.15)
	assert.InDelta(t, 1.5, segments[1].End, 1e-9,
		"trailing run ends at the clip boundary")
}

func TestSegmentByPausesIgnoresShortGaps(t *testing.T) {
	segmenter := NewPauseSegmenter(testSampleRate)

	// A 100ms gap is below the minimum pause duration
	pcm := make([]float64, int(1.1*testSampleRate))
	toneAt(pcm, 220, 0.0, 0.5)
	toneAt(pcm, 220, 0.6, 0.5)

	segments := segmenter.SegmentByPauses(pcm, 0.3, 0.05)
	assert.Len(t, segments, 1)
}

func TestSegmentByPausesFlushesTrailingRun(t *testing.T) {
	segmenter := NewPauseSegmenter(testSampleRate)

	// A short clip that is all speech still yields one segment
	pcm := make([]float64, int(0.2*testSampleRate))
	toneAt(pcm, 220, 0.0, 0.2)

	segments := segmenter.SegmentByPauses(pcm, 0.3, 0.05)
	require.Len(t, segments, 1)
	assert.InDelta(t, 0.2, segments[0].End, 1e-9)
}

func TestSegmentByPausesEmptyInput(t *testing.T) {
	segmenter := NewPauseSegmenter(testSampleRate)
	segments := segmenter.SegmentByPauses(nil, 0.3, 0.05)
	require.NotNil(t, segments)
	assert.Empty(t, segments)
}

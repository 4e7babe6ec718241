package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemoExtractorShape(t *testing.T) {
	extractor := NewDemoExtractor()

	// Two seconds at 16kHz gives 100 embedding frames
	pcm := make([]float64, 32000)
	summary := extractor.ExtractSummary(pcm, 16000)

	assert.Equal(t, 100, summary.TimeSteps)
	assert.Equal(t, 768, summary.Dim)
	assert.InDelta(t, 0.0, summary.GlobalMean, 0.05)
	assert.InDelta(t, 1.0, summary.GlobalStd, 0.05)
}

func TestDemoExtractorDeterministic(t *testing.T) {
	extractor := NewDemoExtractor()
	pcm := make([]float64, 16000)

	a := extractor.ExtractSummary(pcm, 16000)
	b := extractor.ExtractSummary(pcm, 16000)
	assert.Equal(t, a, b)
}

func TestDemoExtractorTinyClip(t *testing.T) {
	extractor := NewDemoExtractor()
	summary := extractor.ExtractSummary(make([]float64, 10), 16000)
	assert.Equal(t, 1, summary.TimeSteps)
}

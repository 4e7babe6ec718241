package analysis

import (
	"time"

	"github.com/RyanBlaney/voice-biomarker/pkg/voice"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/concepts"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/embedding"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/model"
)

// FeatureEchoes are the rounded raw features included in every result
// for display purposes. Rounding widths follow the reporting
// convention: perturbation measures to 5 decimals, dB/Hz measures to
// 2, complexity measures to 3.
type FeatureEchoes struct {
	Jitter    float64 `json:"jitter"`
	Shimmer   float64 `json:"shimmer"`
	HNR       float64 `json:"hnr"`
	PitchMean float64 `json:"pitch_mean"`
	PitchStd  float64 `json:"pitch_std"`
	RPDE      float64 `json:"rpde"`
	DFA       float64 `json:"dfa"`
}

// ComplexityDiagnostics surfaces whether the nonlinear measures were
// actually computed or hit their defined fallback constants
type ComplexityDiagnostics struct {
	RPDEFallback bool `json:"rpde_fallback"`
	DFAFallback  bool `json:"dfa_fallback"`
}

// AnalysisResult is the complete outcome of analyzing one clip
type AnalysisResult struct {
	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`
	Prediction bool    `json:"prediction"`

	Features    FeatureEchoes         `json:"features"`
	Metrics     model.DerivedMetrics  `json:"metrics"`
	Diagnostics ComplexityDiagnostics `json:"diagnostics"`

	ClinicalConcepts concepts.Scores `json:"clinical_concepts,omitempty"`
	Explanation      string          `json:"explanation,omitempty"`

	SpeechSegments   []voice.SpeechSegment `json:"speech_segments,omitempty"`
	EmbeddingSummary *embedding.Summary    `json:"embedding_summary,omitempty"`

	DurationSeconds float64   `json:"duration_seconds"`
	SampleRate      int       `json:"sample_rate"`
	Timestamp       time.Time `json:"timestamp"`

	// RawFeatures carries the full unrounded feature set for callers
	// that need it (CLI detailed output); omitted from API responses
	RawFeatures features.FeatureSet `json:"raw_features,omitempty"`
}

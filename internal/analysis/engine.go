package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/voice-biomarker/pkg/audio"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/concepts"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/embedding"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/model"
)

// EngineConfig contains configuration for the analysis engine. The
// classifier is injected rather than created internally so tests can
// substitute a pre-trained or mock instance.
type EngineConfig struct {
	SampleRate      int
	EnableVAD       bool
	EnableConcepts  bool
	EnableEmbedding bool
	IncludeRaw      bool
	Classifier      *model.RiskClassifier
	ConceptMapper   concepts.Mapper
	Embedder        embedding.Extractor
	VAD             voice.VADConfig
	Logger          logging.Logger
}

// AnalysisEngine runs the full waveform-to-risk-score pipeline
type AnalysisEngine struct {
	sampleRate      int
	enableVAD       bool
	enableConcepts  bool
	enableEmbedding bool
	includeRaw      bool
	extractor       *features.Extractor
	classifier      *model.RiskClassifier
	conceptMapper   concepts.Mapper
	embedder        embedding.Extractor
	vad             *voice.SpectralEnergyVAD
	logger          logging.Logger
}

// NewAnalysisEngine creates an engine from the given configuration.
// Missing collaborators get working defaults.
func NewAnalysisEngine(config *EngineConfig) *AnalysisEngine {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	sampleRate := config.SampleRate
	if sampleRate <= 0 {
		sampleRate = 22050
	}

	classifier := config.Classifier
	if classifier == nil {
		classifier = model.New(model.DefaultConfig())
	}

	mapper := config.ConceptMapper
	if mapper == nil {
		mapper = concepts.NewHeuristicMapper()
	}

	embedder := config.Embedder
	if embedder == nil {
		embedder = embedding.NewDemoExtractor()
	}

	vadConfig := config.VAD
	if vadConfig.SampleRate == 0 {
		vadConfig = voice.DefaultVADConfig()
		vadConfig.SampleRate = sampleRate
	}

	return &AnalysisEngine{
		sampleRate:      sampleRate,
		enableVAD:       config.EnableVAD,
		enableConcepts:  config.EnableConcepts,
		enableEmbedding: config.EnableEmbedding,
		includeRaw:      config.IncludeRaw,
		extractor:       features.NewExtractor(sampleRate),
		classifier:      classifier,
		conceptMapper:   mapper,
		embedder:        embedder,
		vad:             voice.NewSpectralEnergyVAD(vadConfig),
		logger:          logger,
	}
}

// Analyze runs the pipeline on a mono waveform. Input at a different
// sample rate is resampled to the engine's rate first.
func (e *AnalysisEngine) Analyze(ctx context.Context, pcm []float64, sampleRate int) (*AnalysisResult, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty waveform")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	if sampleRate != e.sampleRate {
		e.logger.Debug("Resampling input", logging.Fields{
			"from": sampleRate,
			"to":   e.sampleRate,
		})
		pcm = audio.Resample(pcm, sampleRate, e.sampleRate)
	}

	result := &AnalysisResult{
		DurationSeconds: float64(len(pcm)) / float64(e.sampleRate),
		SampleRate:      e.sampleRate,
		Timestamp:       start,
	}

	if e.enableVAD {
		result.SpeechSegments = e.vad.DetectSpeech(pcm)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extracted, err := e.extractor.Extract(pcm)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}
	fs := extracted.Features

	prediction, err := e.classifier.Predict(fs.Vector())
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	result.RiskScore = prediction.RiskScore
	result.Confidence = prediction.Confidence
	result.Prediction = prediction.Prediction
	result.Features = FeatureEchoes{
		Jitter:    roundTo(fs[features.JitterLocal], 5),
		Shimmer:   roundTo(fs[features.ShimmerLocal], 5),
		HNR:       roundTo(fs[features.HNR], 2),
		PitchMean: roundTo(fs[features.PitchMean], 2),
		PitchStd:  roundTo(fs[features.PitchStd], 2),
		RPDE:      roundTo(fs[features.RPDEKey], 3),
		DFA:       roundTo(fs[features.DFAKey], 3),
	}
	result.Metrics = model.CalculateMetrics(fs)
	result.Diagnostics = ComplexityDiagnostics{
		RPDEFallback: extracted.RPDE.Fallback,
		DFAFallback:  extracted.DFA.Fallback,
	}

	if e.enableConcepts {
		scores := e.conceptMapper.Map(fs)
		result.ClinicalConcepts = scores
		result.Explanation = e.conceptMapper.Explain(scores)
	}

	if e.enableEmbedding {
		summary := e.embedder.ExtractSummary(pcm, e.sampleRate)
		result.EmbeddingSummary = &summary
	}

	if e.includeRaw {
		result.RawFeatures = fs
	}

	e.logger.Debug("Analysis completed", logging.Fields{
		"duration_s": result.DurationSeconds,
		"risk_score": result.RiskScore,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return result, nil
}

// AnalyzeFile decodes a WAV file and analyzes it
func (e *AnalysisEngine) AnalyzeFile(ctx context.Context, path string) (*AnalysisResult, error) {
	data, err := audio.ReadWAVFile(path)
	if err != nil {
		return nil, err
	}
	return e.Analyze(ctx, data.PCM, data.SampleRate)
}

// Healthy reports whether the classifier holds trained state, for
// liveness checks
func (e *AnalysisEngine) Healthy() bool {
	return e.classifier.IsTrained()
}

// DetectSpeech exposes the engine's VAD for segmentation-aware callers
func (e *AnalysisEngine) DetectSpeech(pcm []float64) []voice.SpeechSegment {
	return e.vad.DetectSpeech(pcm)
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

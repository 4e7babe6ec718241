package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/features"
)

const (
	scalerFileName = "scaler.json"
	forestFileName = "forest.json"

	// artifactSchemaVersion guards persisted state against silent
	// drift in the feature contract
	artifactSchemaVersion = 1
)

// PredictionResult is the classifier output for one feature vector
type PredictionResult struct {
	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`
	Prediction bool    `json:"prediction"`
}

// Config controls training hyperparameters
type Config struct {
	NumTrees int   `mapstructure:"num_trees"`
	MaxDepth int   `mapstructure:"max_depth"`
	Seed     int64 `mapstructure:"seed"`
}

// DefaultConfig returns the standard training configuration
func DefaultConfig() Config {
	return Config{
		NumTrees: 100,
		MaxDepth: 10,
		Seed:     42,
	}
}

// RiskClassifier predicts Parkinson's risk from a standardized feature
// vector. It owns a fitted scaler and forest as a matched pair: both
// load or neither does. After training completes the classifier is
// read-only and safe for concurrent prediction.
type RiskClassifier struct {
	mu      sync.RWMutex
	scaler  *StandardScaler
	forest  *RandomForest
	trained bool
	config  Config
	logger  logging.Logger
}

// New creates an untrained classifier
func New(config Config) *RiskClassifier {
	return &RiskClassifier{
		scaler: &StandardScaler{},
		forest: NewRandomForest(config.NumTrees, config.MaxDepth),
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "risk_classifier",
		}),
	}
}

// Train fits the scaler and forest on synthesized labeled data. It is
// deterministic for a fixed seed.
func (c *RiskClassifier) Train() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trainLocked()
}

func (c *RiskClassifier) trainLocked() error {
	rng := rand.New(rand.NewSource(c.config.Seed))
	X, y := SynthesizeTrainingData(rng)

	c.scaler = &StandardScaler{}
	c.scaler.Fit(X)
	scaled, err := c.scaler.TransformAll(X)
	if err != nil {
		return fmt.Errorf("failed to standardize training data: %w", err)
	}

	// Balanced class weights: n / (numClasses * count(class))
	var classCounts [2]float64
	for _, label := range y {
		classCounts[label]++
	}
	weights := [2]float64{
		float64(len(y)) / (2 * classCounts[0]),
		float64(len(y)) / (2 * classCounts[1]),
	}

	c.forest = NewRandomForest(c.config.NumTrees, c.config.MaxDepth)
	c.forest.Fit(scaled, y, weights, rng)
	c.trained = true

	c.logger.Info("Classifier trained on synthetic data", logging.Fields{
		"samples":   len(X),
		"num_trees": c.config.NumTrees,
		"max_depth": c.config.MaxDepth,
		"seed":      c.config.Seed,
	})
	return nil
}

// Predict returns the risk assessment for a feature vector in the
// canonical order. An untrained classifier trains itself first rather
// than failing.
func (c *RiskClassifier) Predict(vector []float64) (*PredictionResult, error) {
	if len(vector) != features.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", features.NumFeatures, len(vector))
	}

	c.mu.RLock()
	trained := c.trained
	c.mu.RUnlock()

	if !trained {
		c.mu.Lock()
		if !c.trained {
			if err := c.trainLocked(); err != nil {
				c.mu.Unlock()
				return nil, err
			}
		}
		c.mu.Unlock()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	scaled, err := c.scaler.Transform(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to standardize input: %w", err)
	}

	proba := c.forest.PredictProba(scaled)
	riskScore := proba[1]

	return &PredictionResult{
		RiskScore:  riskScore,
		Confidence: math.Abs(proba[1] - proba[0]),
		Prediction: riskScore > 0.5,
	}, nil
}

// IsTrained reports whether the classifier holds fitted state
func (c *RiskClassifier) IsTrained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trained
}

type scalerArtifact struct {
	Version int             `json:"version"`
	Scaler  *StandardScaler `json:"scaler"`
}

type forestArtifact struct {
	Version int           `json:"version"`
	Forest  *RandomForest `json:"forest"`
}

// Save persists the scaler and forest as a matched pair under dir
func (c *RiskClassifier) Save(dir string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.trained {
		return fmt.Errorf("cannot save an untrained classifier")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	scalerData, err := json.Marshal(scalerArtifact{Version: artifactSchemaVersion, Scaler: c.scaler})
	if err != nil {
		return fmt.Errorf("failed to encode scaler: %w", err)
	}
	forestData, err := json.Marshal(forestArtifact{Version: artifactSchemaVersion, Forest: c.forest})
	if err != nil {
		return fmt.Errorf("failed to encode forest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, scalerFileName), scalerData, 0o644); err != nil {
		return fmt.Errorf("failed to write scaler artifact: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, forestFileName), forestData, 0o644); err != nil {
		return fmt.Errorf("failed to write forest artifact: %w", err)
	}

	c.logger.Info("Model artifacts saved", logging.Fields{"dir": dir})
	return nil
}

// Load restores a persisted scaler/forest pair. It fails closed: any
// missing file, decode error, or schema mismatch leaves the classifier
// untrained and returns false. It never partially initializes.
func (c *RiskClassifier) Load(dir string) bool {
	scaler, forest, err := loadArtifacts(dir)
	if err != nil {
		c.logger.Warn("Model artifacts unavailable, classifier stays untrained", logging.Fields{
			"dir":    dir,
			"reason": err.Error(),
		})
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.scaler = scaler
	c.forest = forest
	c.trained = true
	return true
}

func loadArtifacts(dir string) (*StandardScaler, *RandomForest, error) {
	scalerData, err := os.ReadFile(filepath.Join(dir, scalerFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("read scaler: %w", err)
	}
	forestData, err := os.ReadFile(filepath.Join(dir, forestFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("read forest: %w", err)
	}

	var sa scalerArtifact
	if err := json.Unmarshal(scalerData, &sa); err != nil {
		return nil, nil, fmt.Errorf("decode scaler: %w", err)
	}
	var fa forestArtifact
	if err := json.Unmarshal(forestData, &fa); err != nil {
		return nil, nil, fmt.Errorf("decode forest: %w", err)
	}

	if sa.Version != artifactSchemaVersion || fa.Version != artifactSchemaVersion {
		return nil, nil, fmt.Errorf("schema version mismatch: scaler=%d forest=%d want %d", sa.Version, fa.Version, artifactSchemaVersion)
	}
	if sa.Scaler == nil || !sa.Scaler.Fitted() || len(sa.Scaler.Mean) != features.NumFeatures {
		return nil, nil, fmt.Errorf("scaler artifact does not match the %d-feature contract", features.NumFeatures)
	}
	if fa.Forest == nil || !fa.Forest.Fitted() || fa.Forest.FeatureDim != features.NumFeatures {
		return nil, nil, fmt.Errorf("forest artifact does not match the %d-feature contract", features.NumFeatures)
	}

	return sa.Scaler, fa.Forest, nil
}

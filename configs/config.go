package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Audio processing configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Voice activity detection configuration
	VAD VADConfig `mapstructure:"vad"`

	// Classifier configuration
	Model ModelConfig `mapstructure:"model"`

	// Analysis pipeline configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
}

// AudioConfig contains audio processing settings
type AudioConfig struct {
	SampleRate  int `mapstructure:"sample_rate"`
	FrameLength int `mapstructure:"frame_length"`
	HopLength   int `mapstructure:"hop_length"`
}

// VADConfig contains voice activity detection settings
type VADConfig struct {
	EnergyThreshold   float64 `mapstructure:"energy_threshold"`
	FluxThreshold     float64 `mapstructure:"flux_threshold"`
	MinSpeechDuration float64 `mapstructure:"min_speech_duration"`
	MedianFilterSize  int     `mapstructure:"median_filter_size"`
	MinPauseDuration  float64 `mapstructure:"min_pause_duration"`
}

// ModelConfig contains classifier training and persistence settings
type ModelConfig struct {
	Dir      string `mapstructure:"dir"`
	NumTrees int    `mapstructure:"num_trees"`
	MaxDepth int    `mapstructure:"max_depth"`
	Seed     int64  `mapstructure:"seed"`
}

// AnalysisConfig contains pipeline feature toggles
type AnalysisConfig struct {
	EnableVAD       bool `mapstructure:"enable_vad"`
	EnableConcepts  bool `mapstructure:"enable_concepts"`
	EnableEmbedding bool `mapstructure:"enable_embedding"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	if config.Audio.FrameLength <= 0 || config.Audio.HopLength <= 0 {
		return fmt.Errorf("audio frame and hop lengths must be positive")
	}

	if config.Audio.HopLength > config.Audio.FrameLength {
		return fmt.Errorf("audio hop length cannot exceed frame length")
	}

	if config.VAD.MedianFilterSize%2 == 0 {
		return fmt.Errorf("VAD median filter size must be odd")
	}

	if config.VAD.MinSpeechDuration < 0 || config.VAD.MinPauseDuration < 0 {
		return fmt.Errorf("VAD durations cannot be negative")
	}

	if config.Model.NumTrees <= 0 {
		return fmt.Errorf("model tree count must be positive")
	}

	if config.Model.MaxDepth <= 0 {
		return fmt.Errorf("model max depth must be positive")
	}

	if config.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	return nil
}

package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "json")
	}

	// Audio defaults: 22.05kHz mono with the standard 2048/512 framing
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", 22050)
	}
	if !v.IsSet("audio.frame_length") {
		v.Set("audio.frame_length", 2048)
	}
	if !v.IsSet("audio.hop_length") {
		v.Set("audio.hop_length", 512)
	}

	// VAD defaults
	if !v.IsSet("vad.energy_threshold") {
		v.Set("vad.energy_threshold", 0.01)
	}
	if !v.IsSet("vad.flux_threshold") {
		v.Set("vad.flux_threshold", 0.02)
	}
	if !v.IsSet("vad.min_speech_duration") {
		v.Set("vad.min_speech_duration", 0.3)
	}
	if !v.IsSet("vad.median_filter_size") {
		v.Set("vad.median_filter_size", 5)
	}
	if !v.IsSet("vad.min_pause_duration") {
		v.Set("vad.min_pause_duration", 0.2)
	}

	// Model defaults
	if !v.IsSet("model.dir") {
		v.Set("model.dir", defaultModelDir())
	}
	if !v.IsSet("model.num_trees") {
		v.Set("model.num_trees", 100)
	}
	if !v.IsSet("model.max_depth") {
		v.Set("model.max_depth", 10)
	}
	if !v.IsSet("model.seed") {
		v.Set("model.seed", 42)
	}

	// Analysis defaults
	if !v.IsSet("analysis.enable_vad") {
		v.Set("analysis.enable_vad", false)
	}
	if !v.IsSet("analysis.enable_concepts") {
		v.Set("analysis.enable_concepts", true)
	}
	if !v.IsSet("analysis.enable_embedding") {
		v.Set("analysis.enable_embedding", false)
	}

	// Server defaults
	if !v.IsSet("server.address") {
		v.Set("server.address", ":5000")
	}
	if !v.IsSet("server.allowed_origins") {
		v.Set("server.allowed_origins", []string{"*"})
	}
	if !v.IsSet("server.read_timeout") {
		v.Set("server.read_timeout", 30*time.Second)
	}
	if !v.IsSet("server.write_timeout") {
		v.Set("server.write_timeout", 60*time.Second)
	}
}

// defaultModelDir resolves the model artifact directory, preferring
// the user data dir and falling back to the working directory
func defaultModelDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "model_data"
	}
	return filepath.Join(home, ".local", "share", "voice-analyzer", "model_data")
}

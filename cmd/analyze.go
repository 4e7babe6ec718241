package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/voice-biomarker/configs"
	"github.com/RyanBlaney/voice-biomarker/internal/analysis"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
	"github.com/RyanBlaney/voice-biomarker/pkg/output"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/model"
)

var (
	analyzeIncludeRaw bool
	analyzeNoConcepts bool
	analyzeEmbedding  bool
	analyzeVAD        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [wav-file]",
	Short: "Analyze a WAV recording for vocal biomarkers",
	Long: `Analyze a WAV recording and report a Parkinson's voice risk
score along with the underlying acoustic measurements.

The recording is resampled to the configured analysis rate, run
through the feature extractor, and scored with the ensemble
classifier. A previously trained model is loaded from the model
directory when present; otherwise one is trained on the spot.

Examples:
  voice-analyzer analyze recording.wav
  voice-analyzer analyze recording.wav --raw -o yaml
  voice-analyzer analyze recording.wav --vad --embedding`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeIncludeRaw, "raw", false,
		"include the full raw feature map in the output")
	analyzeCmd.Flags().BoolVar(&analyzeNoConcepts, "no-concepts", false,
		"skip clinical concept scoring")
	analyzeCmd.Flags().BoolVar(&analyzeEmbedding, "embedding", false,
		"include embedding summary statistics")
	analyzeCmd.Flags().BoolVar(&analyzeVAD, "vad", false,
		"include detected speech segments in the output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{"component": "analyze_cmd"})

	engine, err := buildEngine(config, logger, engineOverrides{
		includeRaw:      analyzeIncludeRaw,
		enableVAD:       analyzeVAD || config.Analysis.EnableVAD,
		enableConcepts:  !analyzeNoConcepts && config.Analysis.EnableConcepts,
		enableEmbedding: analyzeEmbedding || config.Analysis.EnableEmbedding,
	})
	if err != nil {
		return err
	}

	result, err := engine.AnalyzeFile(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return printResult(result, config.OutputFormat)
}

// engineOverrides carries per-command toggles layered over the config file
type engineOverrides struct {
	includeRaw      bool
	enableVAD       bool
	enableConcepts  bool
	enableEmbedding bool
	warm            bool
}

// buildEngine assembles an analysis engine from the effective
// configuration. The classifier is loaded from disk when trained
// artifacts exist so repeated invocations skip retraining. With warm
// set, a missing model is trained eagerly instead of on first predict.
func buildEngine(config *configs.Config, logger logging.Logger, overrides engineOverrides) (*analysis.AnalysisEngine, error) {
	classifier := model.New(model.Config{
		NumTrees: config.Model.NumTrees,
		MaxDepth: config.Model.MaxDepth,
		Seed:     config.Model.Seed,
	})
	if classifier.Load(config.Model.Dir) {
		logger.Debug("Loaded trained model", logging.Fields{"dir": config.Model.Dir})
	} else if overrides.warm {
		logger.Info("Training classifier", logging.Fields{
			"num_trees": config.Model.NumTrees,
			"seed":      config.Model.Seed,
		})
		if err := classifier.Train(); err != nil {
			return nil, fmt.Errorf("training failed: %w", err)
		}
	}

	engine := analysis.NewAnalysisEngine(&analysis.EngineConfig{
		SampleRate:      config.Audio.SampleRate,
		EnableVAD:       overrides.enableVAD,
		EnableConcepts:  overrides.enableConcepts,
		EnableEmbedding: overrides.enableEmbedding,
		IncludeRaw:      overrides.includeRaw,
		Classifier:      classifier,
		VAD: voice.VADConfig{
			SampleRate:        config.Audio.SampleRate,
			FrameLength:       config.Audio.FrameLength,
			HopLength:         config.Audio.HopLength,
			EnergyThreshold:   config.VAD.EnergyThreshold,
			FluxThreshold:     config.VAD.FluxThreshold,
			MinSpeechDuration: config.VAD.MinSpeechDuration,
			MedianFilterSize:  config.VAD.MedianFilterSize,
		},
		Logger: logger,
	})
	return engine, nil
}

// printResult writes the result to stdout in the configured format
func printResult(data any, format string) error {
	formatter := output.NewFormatter(format)
	rendered, err := formatter.Format(data, true)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(rendered))
	return nil
}

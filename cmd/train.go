package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice/model"
)

var trainForce bool

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the risk classifier and persist its artifacts",
	Long: `Train the risk classifier on synthetic class-conditional feature
data and write the scaler and forest artifacts to the model directory.

Training is deterministic for a given seed, so rerunning with the same
configuration reproduces the same model. Existing artifacts are reused
unless --force is given.

Examples:
  voice-analyzer train
  voice-analyzer train --force`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().BoolVar(&trainForce, "force", false,
		"retrain even when persisted artifacts already exist")
}

type trainReport struct {
	Dir       string `json:"dir" yaml:"dir"`
	NumTrees  int    `json:"num_trees" yaml:"num_trees"`
	MaxDepth  int    `json:"max_depth" yaml:"max_depth"`
	Seed      int64  `json:"seed" yaml:"seed"`
	Retrained bool   `json:"retrained" yaml:"retrained"`
}

func runTrain(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{"component": "train_cmd"})

	classifier := model.New(model.Config{
		NumTrees: config.Model.NumTrees,
		MaxDepth: config.Model.MaxDepth,
		Seed:     config.Model.Seed,
	})

	retrained := true
	if !trainForce && classifier.Load(config.Model.Dir) {
		logger.Info("Existing model artifacts found, skipping training", logging.Fields{
			"dir": config.Model.Dir,
		})
		retrained = false
	} else {
		if err := classifier.Train(); err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		if err := classifier.Save(config.Model.Dir); err != nil {
			return fmt.Errorf("failed to persist model: %w", err)
		}
		logger.Info("Model trained and persisted", logging.Fields{
			"dir":       config.Model.Dir,
			"num_trees": config.Model.NumTrees,
		})
	}

	return printResult(trainReport{
		Dir:       config.Model.Dir,
		NumTrees:  config.Model.NumTrees,
		MaxDepth:  config.Model.MaxDepth,
		Seed:      config.Model.Seed,
		Retrained: retrained,
	}, config.OutputFormat)
}

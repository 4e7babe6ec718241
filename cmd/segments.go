package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/voice-biomarker/pkg/audio"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
	"github.com/RyanBlaney/voice-biomarker/pkg/voice"
)

var segmentsByPause bool

var segmentsCmd = &cobra.Command{
	Use:   "segments [wav-file]",
	Short: "Detect speech segments in a WAV recording",
	Long: `Detect speech segments in a WAV recording using spectral-energy
voice activity detection, or split the recording at pauses with the
--pauses flag.

Examples:
  voice-analyzer segments recording.wav
  voice-analyzer segments recording.wav --pauses -o table`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

func init() {
	rootCmd.AddCommand(segmentsCmd)

	segmentsCmd.Flags().BoolVar(&segmentsByPause, "pauses", false,
		"segment at energy pauses instead of running VAD")
}

type segmentReport struct {
	File     string                `json:"file" yaml:"file"`
	Method   string                `json:"method" yaml:"method"`
	Count    int                   `json:"count" yaml:"count"`
	Segments []voice.SpeechSegment `json:"segments" yaml:"segments"`
}

func runSegments(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{"component": "segments_cmd"})

	data, err := audio.ReadWAVFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	pcm := data.PCM
	if data.SampleRate != config.Audio.SampleRate {
		pcm = audio.Resample(pcm, data.SampleRate, config.Audio.SampleRate)
	}

	var segments []voice.SpeechSegment
	method := "vad"
	if segmentsByPause {
		method = "pauses"
		segmenter := voice.NewPauseSegmenter(config.Audio.SampleRate)
		segments = segmenter.SegmentByPauses(pcm,
			config.VAD.MinPauseDuration, config.VAD.EnergyThreshold)
	} else {
		vad := voice.NewSpectralEnergyVAD(voice.VADConfig{
			SampleRate:        config.Audio.SampleRate,
			FrameLength:       config.Audio.FrameLength,
			HopLength:         config.Audio.HopLength,
			EnergyThreshold:   config.VAD.EnergyThreshold,
			FluxThreshold:     config.VAD.FluxThreshold,
			MinSpeechDuration: config.VAD.MinSpeechDuration,
			MedianFilterSize:  config.VAD.MedianFilterSize,
		})
		segments = vad.DetectSpeech(pcm)
	}

	logger.Debug("Segmentation completed", logging.Fields{
		"method": method,
		"count":  len(segments),
	})

	return printResult(segmentReport{
		File:     args[0],
		Method:   method,
		Count:    len(segments),
		Segments: segments,
	}, config.OutputFormat)
}

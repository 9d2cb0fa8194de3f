package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/C0D3-M4513R/visualizer2/internal/config"
	"github.com/C0D3-M4513R/visualizer2/pkg/build"
)

// ParseArgs builds the runtime configuration: the YAML file (VIS_CONFIG or
// the default locations) provides the base values, command line flags win
// over it.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	options, err := config.LoadConfig(os.Getenv("VIS_CONFIG"))
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Live audio spectrum analysis core for visualizers",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available capture devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Capture configuration
	rootCmd.PersistentFlags().StringVarP(&options.Audio.Device, "device", "d", options.Audio.Device,
		"Input device name. Use the 'list' command to see available devices.")
	rootCmd.PersistentFlags().Float64VarP(&options.Audio.SampleRate, "sample-rate", "s", options.Audio.SampleRate,
		"Capture sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVar(&options.Audio.BufferFrames, "buffer-frames", options.Audio.BufferFrames,
		"Circular buffer capacity in frames")
	rootCmd.PersistentFlags().IntVar(&options.Audio.ReadFrames, "read-frames", options.Audio.ReadFrames,
		"Frames per capture delivery (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.Audio.LowLatency, "low-latency", "l", options.Audio.LowLatency,
		"Request the device's low latency profile")

	// Analysis configuration
	rootCmd.PersistentFlags().IntVarP(&options.Analysis.FFTLength, "fft-length", "n", options.Analysis.FFTLength,
		"Transform length in frames")
	rootCmd.PersistentFlags().StringVarP(&options.Analysis.Window, "window", "w", options.Analysis.Window,
		"Tapering window: none, triangular, hann, hamming, blackman, nuttall, sine")
	rootCmd.PersistentFlags().IntVarP(&options.Analysis.Downsample, "downsample", "D", options.Analysis.Downsample,
		"Decimation factor (keep every Nth frame)")

	// Recording configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Recording.Enabled, "record", "r", options.Recording.Enabled,
		"Record captured audio to a WAV file")
	rootCmd.PersistentFlags().StringVarP(&options.Recording.OutputFile, "output", "o", options.Recording.OutputFile,
		"Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Debug configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Debug, "verbose", "v", options.Debug,
		"Show verbose output")

	if options.Recording.OutputFile == "" {
		options.Recording.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return options, nil
}

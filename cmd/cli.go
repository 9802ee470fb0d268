// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"tuner/internal/config"
	"tuner/pkg/build"
)

// ParseArgs builds the runtime configuration: defaults, then the optional
// YAML file and environment overrides, then command line flags on top.
// Flag defaults are the loaded values, so an unset flag keeps whatever the
// file or environment provided.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	options, err := config.LoadConfig(os.Getenv("TUNER_CONFIG"))
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time chromatic instrument tuner",
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
			options.TUIMode = true
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
			options.TUIMode = false
		},
	}
	rootCmd.AddCommand(listCmd)

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.DeviceID, "device", "d", options.DeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Channels, "channels", "c", options.Channels,
		"Number of input channels (analysis uses channel 0)")
	rootCmd.PersistentFlags().Float64VarP(&options.SampleRate, "sample-rate", "s", options.SampleRate,
		"Sample rate, measured in Hertz (Hz)")

	rootCmd.PersistentFlags().IntVarP(&options.FramesPerBuffer, "frames-per-buffer", "b", options.FramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.LowLatency, "low-latency", "l", options.LowLatency,
		"Use low latency mode for real-time processing")

	// Analysis Configuration
	rootCmd.PersistentFlags().IntVar(&options.FFTSize, "fft-size", options.FFTSize,
		"Analysis window length in samples (power of 2)")
	rootCmd.PersistentFlags().IntVar(&options.HopSize, "hop-size", options.HopSize,
		"Samples between consecutive analysis windows")
	rootCmd.PersistentFlags().StringVarP(&options.Window, "window", "w", options.Window,
		"Window function (Hann, Hamming, Blackman, BlackmanNuttall, BartlettHann, Nuttall)")

	// Tuning Reference Configuration
	rootCmd.PersistentFlags().Float64VarP(&options.A4, "a4", "a", options.A4,
		"A4 reference frequency in Hz (432-450)")
	rootCmd.PersistentFlags().StringVarP(&options.TargetNote, "note", "n", options.TargetNote,
		"Initial target note (A, A#, B, C, ...)")
	rootCmd.PersistentFlags().IntVarP(&options.TargetOctave, "octave", "o", options.TargetOctave,
		"Initial target octave (0-8)")

	// Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&options.WSEnabled, "ws", options.WSEnabled,
		"Publish results over a WebSocket endpoint")
	rootCmd.PersistentFlags().StringVar(&options.WSPort, "ws-port", options.WSPort,
		"WebSocket listen port")
	rootCmd.PersistentFlags().BoolVar(&options.UDPEnabled, "udp", options.UDPEnabled,
		"Publish results as JSON datagrams")
	rootCmd.PersistentFlags().StringVar(&options.UDPTarget, "udp-target", options.UDPTarget,
		"UDP destination address (host:port)")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", options.Verbose,
		"Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// Flags may have replaced validated values; check the final state.
	if err := options.Validate(); err != nil {
		return nil, err
	}

	return options, nil
}

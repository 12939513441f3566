package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"spectro/internal/config"
)

// Options is the result of CLI parsing: the merged configuration plus
// the requested command.
type Options struct {
	Config *config.Config

	// Command is a one-off command ("list") or a mode ("play");
	// empty means run the analyzer.
	Command string

	// Play settings.
	PlayFile  string
	GainDB    float64
	SynthFreq float64 // synthesize a sine instead of reading a file
	SynthSecs float64
}

// ParseArgs loads the configuration (defaults, YAML, environment) and
// applies command-line flags on top.
func ParseArgs() (*Options, error) {
	var configPath string
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:           "spectro",
		Short:         "Real-time audio capture, loudness and spectral analysis",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Flags the user set explicitly win over file/env values.
			applyFlagOverrides(cmd, cfg)
			opts.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil // analyzer mode
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().IntP("device", "d", config.DefaultDeviceID,
		"Device ID. Use the 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntP("channels", "c", config.DefaultChannels,
		"Number of channels (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().IntP("sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntP("frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per device buffer (affects latency)")
	rootCmd.PersistentFlags().BoolP("low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	// Analyzer flags.
	rootCmd.Flags().Int("window", 0, "Analysis window length in samples (0 = sample rate / 10)")
	rootCmd.Flags().Int("stride", 0, "Analysis window stride in samples (0 = window length)")
	rootCmd.Flags().Bool("pow2-window", false, "Round the window length up to a power of two")
	rootCmd.Flags().BoolP("record", "r", false, "Mirror raw capture into a WAV file")
	rootCmd.Flags().StringP("output", "o", config.DefaultCaptureFile, "Capture WAV file name")
	rootCmd.Flags().StringP("websocket", "w", "", "Publish results over WebSocket on this address")

	// List command.
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Play command.
	playCmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play a WAV/AIFF/MP3/Ogg file, or a synthesized tone, to an output device",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = "play"
			if len(args) == 1 {
				opts.PlayFile = args[0]
			}
			return nil
		},
	}
	playCmd.Flags().Float64Var(&opts.GainDB, "gain", 0, "Playback gain in dB (power)")
	playCmd.Flags().Float64Var(&opts.SynthFreq, "tone", 440, "Tone frequency (Hz) when no file is given")
	playCmd.Flags().Float64Var(&opts.SynthSecs, "seconds", 2, "Tone duration when no file is given")
	rootCmd.AddCommand(playCmd)

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Audio.DeviceID, _ = flags.GetInt("device")
	}
	if flags.Changed("channels") {
		cfg.Audio.Channels, _ = flags.GetInt("channels")
	}
	if flags.Changed("sample-rate") {
		cfg.Audio.SampleRate, _ = flags.GetInt("sample-rate")
	}
	if flags.Changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer, _ = flags.GetInt("frames-per-buffer")
	}
	if flags.Changed("low-latency") {
		cfg.Audio.LowLatency, _ = flags.GetBool("low-latency")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("window") {
		cfg.Analysis.WindowLen, _ = flags.GetInt("window")
	}
	if flags.Changed("stride") {
		cfg.Analysis.WindowStride, _ = flags.GetInt("stride")
	}
	if flags.Changed("pow2-window") {
		cfg.Analysis.Pow2Window, _ = flags.GetBool("pow2-window")
	}
	if flags.Changed("record") {
		cfg.Capture.Enabled, _ = flags.GetBool("record")
	}
	if flags.Changed("output") {
		cfg.Capture.File, _ = flags.GetString("output")
		cfg.Capture.Enabled = true
	}
	if flags.Changed("websocket") {
		cfg.Transport.WebSocketAddr, _ = flags.GetString("websocket")
		cfg.Transport.WebSocketEnabled = true
	}
}

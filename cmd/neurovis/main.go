package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/neurovis/internal/config"
)

var (
	configFile string
	preset     string
	variant    string
	dataDir    string
	rank       int
	logLevel   string
	lenient    bool
	width      int
	height     int
	steps      []int64
	count      int
	workers    int

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "neurovis",
	})
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neurovis",
		Short:         "3d viewer for neuron simulation outputs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			return nil
		},
		RunE: runView,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&variant, "variant", config.DefaultVariant, "simulation variant")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "simulation output directory")
	pf.IntVar(&rank, "rank", 0, "MPI rank of the files to read")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.BoolVar(&lenient, "lenient", false, "drop synapses that reference unknown neurons")
	pf.IntVar(&width, "width", config.DefaultWidth, "render width in cells")
	pf.IntVar(&height, "height", config.DefaultHeight, "render height in cells")
	pf.Int64SliceVar(&steps, "steps", nil, "explicit timesteps")
	pf.IntVar(&count, "count", config.DefaultCount, "number of evenly spaced timesteps")
	pf.IntVar(&workers, "workers", 4, "concurrent snapshot loaders, 0 loads each frame on demand")

	rootCmd.AddCommand(
		viewCmd(),
		renderCmd(),
		animateCmd(),
		areasCmd(),
		plasticityCmd(),
		exportCmd(),
		runCmd(),
		listCmd(),
		showCmd(),
		serveCmd(),
		publishCmd(),
		presetsCmd(),
	)
	return rootCmd
}

// loadConfig resolves the configuration for cmd: a preset or config file
// first, then any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(variant, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for variant %q", preset, variant)
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
		cfg.Variant = variant
	}
	applyFlags(cmd, cfg)
	return cfg, cfg.Validate()
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Variant = variant
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("rank") {
		cfg.Rank = rank
	}
	if flags.Changed("lenient") {
		cfg.Render.Lenient = lenient
	}
	if flags.Changed("width") {
		cfg.Render.Width = width
	}
	if flags.Changed("height") {
		cfg.Render.Height = height
	}
	if flags.Changed("count") {
		cfg.Timesteps.Count = count
		cfg.Timesteps.Steps = nil
	}
	if flags.Changed("steps") {
		cfg.Timesteps.Steps = steps
	}
}

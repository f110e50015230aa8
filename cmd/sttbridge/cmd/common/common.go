package common

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"stt-bridge/internal/app"
	"stt-bridge/internal/config"
)

// Options holds the flags shared by every command.
type Options struct {
	ConfigFile      string
	Verbose         bool
	Engine          string
	ReportSkipped   bool
	RemoveProcessed bool
}

// AddFlags registers the shared flags as persistent flags of cmd.
func (o *Options) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigFile, "config", "c", "", "config file (default is ./"+config.DefaultConfigFile+" when present)")
	flags.BoolVarP(&o.Verbose, "verbose", "V", false, "write debug logs to stderr")
	flags.StringVarP(&o.Engine, "engine", "e", "", "transcription engine, overrides the config file")
	flags.BoolVar(&o.ReportSkipped, "report-skipped", false, "write 'SKIP: <path>' to stderr for paths that are not files")
	flags.BoolVar(&o.RemoveProcessed, "remove-processed", false, "delete each input file after it has been processed")
}

// LoadConfig builds the bridge configuration with command line flags applied
// last.
func (o *Options) LoadConfig() (*config.BridgeConfig, error) {
	cfg, err := config.LoadBridgeConfig(config.ResolveConfigPath(o.ConfigFile))
	if err != nil {
		return nil, err
	}

	if o.Engine != "" {
		cfg.Engine = o.Engine
	}
	if o.ReportSkipped {
		cfg.Bridge.ReportSkipped = true
	}
	if o.RemoveProcessed {
		cfg.Bridge.RemoveProcessed = true
	}
	cfg.Log.Verbose = o.Verbose
	return cfg, nil
}

// RunBridge loads the model and serves requests from in until it is exhausted
// or ctx is cancelled. Only startup failures are returned.
func RunBridge(ctx context.Context, cfg *config.BridgeConfig, in io.Reader, stdout, stderr io.Writer) error {
	b, cleanup, err := app.InitializeBridge(cfg, app.Streams{Stdout: stdout, Stderr: stderr})
	if err != nil {
		return err
	}
	defer cleanup()

	return b.Run(ctx, in)
}

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ardnew/softportal/config"
	"github.com/ardnew/softportal/pkg"
)

// options holds the global flags and the configuration they produce.
type options struct {
	configPath string
	envPath    string
	verbose    bool
	jsonLog    bool

	cfg config.Config
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "softportal",
		Short:         "Emulate a toy-figurine portal over a FIFO HID bus.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (.toml, .yaml or .yml)")
	flags.StringVar(&opts.envPath, "env", ".env", "environment file with SOFTPORTAL_* overrides")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.jsonLog, "json", false, "use JSON log format")

	root.AddCommand(
		newRunCmd(opts),
		newSendCmd(opts),
		newToyCmd(opts),
		newDescribeCmd(opts),
	)
	return root
}

// load reads the environment file and configuration, then sets up logging.
func (o *options) load() error {
	if err := config.LoadDotEnv(o.envPath); err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Log.ApplyLogging(); err != nil {
		return err
	}
	if o.jsonLog {
		pkg.SetLogFormat(pkg.LogFormatJSON)
	}
	if o.verbose {
		pkg.SetLogLevel(slog.LevelDebug)
	}
	o.cfg = cfg
	return nil
}

// Package logtool is the operator CLI over the per-check log streams and
// their archives.
package logtool

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
	"github.com/NordCoder/uptimed/internal/logsink"
	"github.com/NordCoder/uptimed/internal/obs"
)

type options struct {
	cfgFile string
	logsDir string
	output  string
	verbose bool
}

func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "logtool",
		Short:         "Inspect and rotate uptimed check logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "monitor config file (defaults plus environment when empty)")
	root.PersistentFlags().StringVar(&opts.logsDir, "logs-dir", "", "log directory, overrides logs.dir")
	root.PersistentFlags().StringVar(&opts.output, "output", "text", "output format: json|text")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newCatCmd(opts))
	root.AddCommand(newRotateCmd(opts))
	root.AddCommand(newTruncateCmd(opts))
	return root
}

// open resolves the log directory and a logger from flags and config.
func (o *options) open() (*logsink.Sink, *zap.Logger, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if o.logsDir != "" {
		cfg.Logs.Dir = o.logsDir
	}
	lc := cfg.AsLoggerConfig()
	lc.Level = "warn"
	if o.verbose {
		lc.Level = "debug"
	}
	lc.Outputs = []string{"stderr"}
	l, err := obs.NewLogger(lc)
	if err != nil {
		return nil, nil, err
	}
	sink, err := logsink.New(cfg.Logs.Dir, l)
	if err != nil {
		return nil, nil, err
	}
	return sink, l, nil
}

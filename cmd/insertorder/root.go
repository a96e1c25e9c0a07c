package main

import (
	"github.com/spf13/cobra"

	"github.com/mevdschee/insertorder/config"
)

// rootOptions holds the flags shared by all commands
type rootOptions struct {
	configPath string
	batchSize  int
	noOrdering bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "insertorder",
		Short: "Order and batch entity inserts by foreign key dependency",
		Long: `insertorder replays YAML scenarios of entity inserts. Inserts are sorted so
that no foreign key constraint is violated and consecutive inserts of the same
shape are executed as one statement batch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file (defaults and INSERTORDER_* variables when empty)")
	cmd.PersistentFlags().IntVar(&opts.batchSize, "batch-size", 0, "override statement_batch_size")
	cmd.PersistentFlags().BoolVar(&opts.noOrdering, "no-order", false, "execute inserts in registration order")

	cmd.AddCommand(newPlanCommand(opts))
	cmd.AddCommand(newRunCommand(opts))

	return cmd
}

// loadConfig reads the configuration file and applies command line overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath == "" {
		cfg, err = config.LoadBytes([]byte{})
	} else {
		cfg, err = config.Load(o.configPath)
	}
	if err != nil {
		return nil, err
	}

	if o.batchSize != 0 {
		cfg.Batch.StatementBatchSize = o.batchSize
	}
	if o.noOrdering {
		cfg.Batch.OrderInserts = false
	}
	return cfg, cfg.Validate()
}

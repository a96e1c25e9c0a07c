package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mevdschee/insertorder/flush"
	"github.com/mevdschee/insertorder/scenario"
	"github.com/mevdschee/insertorder/writebatch"
)

func newPlanCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <scenario.yaml>",
		Short: "Print the execution order and batches of a scenario",
		Long: `Plan sorts and batches every flush of a scenario without touching a
database. Identifiers generated by the database are not known in a plan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd.OutOrStdout())
		},
	}
}

func runPlan(opts *rootOptions, path string, w io.Writer) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	registry, err := s.Registry()
	if err != nil {
		return err
	}
	defer registry.Close()

	queue := flush.New(cfg.Batch, writebatch.NewRecorder())
	plans, err := scenario.NewReplayer(s, registry, queue).Plan()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "scenario %s: %d flushes, batch size %d, ordering %s\n",
		s.Name, len(plans), cfg.Batch.StatementBatchSize, ordering(cfg.Batch.OrderInserts, cfg.Batch.TieBreak.String()))
	for n, p := range plans {
		fmt.Fprintf(w, "flush %d: %d inserts in %d batches, %d dependencies\n", n+1, len(p.Order), len(p.Batches), len(p.Dependencies))
		for i, b := range p.Batches {
			fmt.Fprintf(w, "  %3d  %3d x %s\n", i+1, b.Size(), b.SQL)
		}
	}
	return nil
}

func ordering(enabled bool, tieBreak string) string {
	if !enabled {
		return "off"
	}
	return tieBreak
}

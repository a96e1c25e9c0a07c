package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mevdschee/insertorder/database"
	"github.com/mevdschee/insertorder/flush"
	"github.com/mevdschee/insertorder/metrics"
	"github.com/mevdschee/insertorder/scenario"
	"github.com/mevdschee/insertorder/writebatch"
)

type runOptions struct {
	applySchema bool
	commit      bool
	hold        bool
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	runOpts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario against the configured database",
		Long: `Run executes every flush of a scenario inside one transaction on the
database configured in the [database] section. The transaction is rolled
back unless --commit is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.Context(), opts, runOpts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&runOpts.applySchema, "schema", false, "execute the schema statements of the scenario first")
	cmd.Flags().BoolVar(&runOpts.commit, "commit", false, "commit the transaction")
	cmd.Flags().BoolVar(&runOpts.hold, "hold", false, "keep serving metrics after the run until interrupted")

	return cmd
}

func runScenario(ctx context.Context, opts *rootOptions, runOpts *runOptions, path string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
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

	metrics.Init()
	if cfg.Metrics.Listen != "" {
		startMetrics(cfg.Metrics.Listen)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if runOpts.applySchema {
		if err := database.ApplySchema(ctx, tx, s.Schema); err != nil {
			return err
		}
	}

	adapter := writebatch.NewSQLAdapter(tx, db.Style())
	queue := flush.New(cfg.Batch, adapter)
	reports, err := scenario.NewReplayer(s, registry, queue).Run(ctx)
	for n, r := range reports {
		fmt.Fprintf(w, "flush %d (%s): %d inserts in %d batches, %s\n",
			n+1, r.FlushID, r.Statements(), len(r.Batches), r.Duration)
		for i, b := range r.Batches {
			fmt.Fprintf(w, "  %3d  %016x  %3d x %s\n", i+1, b.Key, b.Size, b.SQL)
		}
	}
	if err != nil {
		return err
	}

	if runOpts.commit {
		if err := tx.Commit(); err != nil {
			return err
		}
		fmt.Fprintln(w, "committed")
	} else {
		if err := tx.Rollback(); err != nil {
			return err
		}
		fmt.Fprintln(w, "rolled back")
	}

	if runOpts.hold && cfg.Metrics.Listen != "" {
		log.Println("Run finished. Press Ctrl+C to stop.")
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
	}
	return nil
}

func startMetrics(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		log.Printf("[Metrics] Endpoint at http://localhost%s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[Metrics] Server error: %v", err)
		}
	}()
}

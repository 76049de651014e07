package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/aretw0/brownian"
	"github.com/aretw0/brownian/internal/presentation/tui"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/dsl"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/observability"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/aretw0/brownian/pkg/registry"
	"github.com/aretw0/brownian/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run [model]",
	Short: "Drive a process for a duration and summarise the run",
	Long: `Advances the process in fixed intervals, merging each update into the state
and recording every snapshot to the selected store. With --document, every
process of a composite document is run instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetFloat64("duration")
		interval, _ := cmd.Flags().GetFloat64("interval")
		runID, _ := cmd.Flags().GetString("run-id")
		document, _ := cmd.Flags().GetString("document")

		store, release, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer release()

		if noBanner, _ := cmd.Flags().GetBool("no-banner"); !noBanner {
			tui.PrintBanner(cmd.ErrOrStderr())
		}

		if document != "" {
			return runDocument(cmd, document, store, runID, duration, interval)
		}

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		proc, _, err := openProcess(cmd, args, observability.LogHooks(logger))
		if err != nil {
			return err
		}
		defer proc.Close()

		return drive(cmd, proc, store, logger, runID, duration, interval)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Float64P("duration", "d", 1, "Simulated time to run for")
	runCmd.Flags().Float64P("interval", "i", 0.1, "Simulated time per update")
	runCmd.Flags().String("run-id", "", "Run ID in the store (default is a timestamp)")
	runCmd.Flags().String("document", "", "Composite document (.yaml or .json) listing processes to run")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
	runCmd.Flags().Bool("plain", false, "Render the summary without colour")
	addStoreFlags(runCmd)
}

func drive(cmd *cobra.Command, proc ports.Process, store ports.StateStore, logger *slog.Logger, runID string, duration, interval float64) error {
	r := runner.New(
		runner.WithStore(store),
		runner.WithLogger(logger),
		runner.WithRunID(runID),
		runner.WithSignals(),
	)
	res, runErr := r.Run(cmd.Context(), proc, duration, interval)
	if res == nil {
		return runErr
	}

	snaps, err := r.Results(context.WithoutCancel(cmd.Context()))
	if err != nil {
		logger.Warn("could not read back run snapshots", "run", res.RunID, "error", err)
	}
	if err := printSummary(cmd, cmd.OutOrStdout(), res, snaps); err != nil {
		return err
	}
	return runErr
}

func printSummary(cmd *cobra.Command, w io.Writer, res *runner.Result, snaps []*domain.Snapshot) error {
	plain, _ := cmd.Flags().GetBool("plain")
	render, err := tui.NewRenderer(0)
	if plain || !isTerminal(w) {
		render, err = tui.NewPlainRenderer()
	}
	if err != nil {
		return err
	}
	out, err := render(tui.Summary(res, snaps))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runDocument instantiates every process of a composite document and drives them in path order.
// Duration and interval come from the document's first simulation unless set by flag.
func runDocument(cmd *cobra.Command, path string, store ports.StateStore, runID string, duration, interval float64) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := dsl.Parse(data)
	if err != nil {
		return err
	}

	sims, err := doc.Simulations()
	if err != nil {
		return err
	}
	if len(sims) > 0 {
		keys := make([]string, 0, len(sims))
		for k := range sims {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sim := sims[keys[0]]
		if !cmd.Flags().Changed("duration") {
			duration = sim.EndTime - sim.StartTime
		}
		if !cmd.Flags().Changed("interval") {
			interval = sim.Interval()
		}
	}

	cache, err := model.NewCache(model.DefaultCacheSize)
	if err != nil {
		return err
	}
	reg := registry.NewRegistry()
	brownian.Register(reg,
		brownian.WithLogger(logger),
		brownian.WithLifecycleHooks(observability.LogHooks(logger)),
		brownian.WithModelCache(cache),
	)
	procs, err := doc.Instantiate(reg)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(procs))
	for id := range procs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	defer func() {
		for _, p := range procs {
			if c, ok := p.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}()

	for _, id := range ids {
		procRun := id
		if runID != "" {
			procRun = runID + "-" + id
		}
		logger.Info("running process", "process", id, "duration", duration, "interval", interval)
		if err := drive(cmd, procs[id], store, logger, procRun, duration, interval); err != nil {
			return fmt.Errorf("process %s: %w", id, err)
		}
	}
	return nil
}

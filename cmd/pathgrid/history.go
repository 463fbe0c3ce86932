package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pathgrid/internal/state"
)

func newHistoryCmd(fv *flagValues) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent solve runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), fv)
			if err != nil {
				return err
			}
			store, err := state.NewSQLite(filepath.Join(cfg.DataDir, "state.db"))
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := commandContext(cmd)
			defer stop()
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			runs, err := store.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			sum, err := store.GetSummary(ctx)
			if err != nil {
				return err
			}
			return printHistory(cmd, sum, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func printHistory(cmd *cobra.Command, sum state.Summary, runs []state.SolveRun) error {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No solve runs recorded yet.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tALGORITHM\tGRID\tOUTCOME\tVISITED\tPATH\tSOLVER MS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\t%d\t%s\n",
			humanize.Time(r.StartTS),
			r.Algorithm,
			r.Rows, r.Cols,
			r.Outcome,
			humanize.Comma(int64(r.NodesVisited)),
			r.PathLength,
			humanize.FormatFloat("#,###.##", r.TimeTakenMS),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s runs: %d found, %d unreachable, %d failed\n",
		humanize.Comma(int64(sum.Runs)), sum.Found, sum.Unreachable, sum.Failed)
	algos := make([]string, 0, len(sum.BestPath))
	for a := range sum.BestPath {
		algos = append(algos, a)
	}
	sort.Strings(algos)
	for _, a := range algos {
		fmt.Fprintf(out, "  shortest %-13s %d cells\n", a, sum.BestPath[a])
	}
	return nil
}

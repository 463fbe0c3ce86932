package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pathgrid/internal/devtools"
	"pathgrid/internal/telemetry"
)

func newMockSolverCmd(fv *flagValues) *cobra.Command {
	var (
		addr     string
		scenario string
		style    string
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "mock-solver",
		Short: "Serve the solver endpoints with the built-in mock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := telemetry.NewLogger(fv.logPath)
			if err != nil {
				return err
			}
			defer logger.Close()

			opts := []devtools.Option{devtools.WithStyle(style), devtools.WithLogger(logger)}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, devtools.WithSeed(seed))
			}
			m := devtools.NewManager(opts...)
			sc := m.SetScenario(scenario)

			ctx, stop := commandContext(cmd)
			defer stop()
			fmt.Fprintf(cmd.OutOrStdout(), "mock solver on http://%s (scenario %s)\n", addr, sc.Name)
			logger.Info("mock.start", map[string]any{"addr": addr, "scenario": sc.Name, "style": style})
			return m.Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "listen address")
	cmd.Flags().StringVar(&scenario, "scenario", "normal", "normal|slow|unreachable|broken|garbage")
	cmd.Flags().StringVar(&style, "style", "random", "maze generator: random|perfect")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for generated mazes")
	return cmd
}

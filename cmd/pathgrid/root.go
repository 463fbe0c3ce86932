package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pathgrid/internal/app"
)

// flagValues receives the command line. Only flags the user set are
// copied into the config, so env and persisted settings stay in force
// for the rest.
type flagValues struct {
	rows          int
	cols          int
	algorithm     string
	delayMS       int
	batchSize     int
	density       float64
	solverURL     string
	solverCmd     string
	solverTimeout time.Duration
	mockSolver    bool
	mockScenario  string
	mockStyle     string
	dataDir       string
	logPath       string
	presetDir     string
	load          string
	ascii         bool
	debug         bool
	style         string
	motion        string
}

func newRootCmd() *cobra.Command {
	fv := &flagValues{}

	cmd := &cobra.Command{
		Use:           "pathgrid",
		Short:         "Draw a maze in the terminal and watch search algorithms solve it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), fv)
			if err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := commandContext(cmd)
			defer stop()
			return a.Run(ctx)
		},
	}

	bindPersistentFlags(cmd.PersistentFlags(), fv)
	bindFlags(cmd.Flags(), fv)
	cmd.AddCommand(newMockSolverCmd(fv), newHistoryCmd(fv))
	return cmd
}

func bindPersistentFlags(f *pflag.FlagSet, fv *flagValues) {
	f.StringVar(&fv.dataDir, "data-dir", "", "directory for settings, history and exported mazes")
	f.StringVar(&fv.logPath, "log", "", "write JSON logs to this file")
	f.BoolVar(&fv.debug, "debug", false, "verbose logging")
}

func bindFlags(f *pflag.FlagSet, fv *flagValues) {
	def := app.DefaultConfig()
	f.IntVar(&fv.rows, "rows", def.Rows, "grid rows")
	f.IntVar(&fv.cols, "cols", def.Cols, "grid columns")
	f.StringVarP(&fv.algorithm, "algorithm", "a", def.Algorithm, "search algorithm")
	f.IntVar(&fv.delayMS, "delay", def.DelayMS, "animation delay per step in milliseconds (10-200)")
	f.IntVar(&fv.batchSize, "batch", def.BatchSize, "cells drawn per animation step")
	f.Float64Var(&fv.density, "density", def.Density, "wall density for generated mazes")
	f.StringVar(&fv.solverURL, "solver-url", def.SolverURL, "base URL of the solver service")
	f.StringVar(&fv.solverCmd, "solver-cmd", "", "run this command per request instead of calling a URL")
	f.DurationVar(&fv.solverTimeout, "solver-timeout", def.SolverTimeout, "timeout per solver request")
	f.BoolVar(&fv.mockSolver, "mock-solver", false, "answer requests with the built-in mock solver")
	f.StringVar(&fv.mockScenario, "mock-scenario", def.MockScenario, "mock solver behavior: normal|slow|unreachable|broken|garbage")
	f.StringVar(&fv.mockStyle, "mock-style", def.MockStyle, "mock maze generator: random|perfect")
	f.StringVar(&fv.presetDir, "preset-dir", "", "directory with extra YAML presets")
	f.StringVar(&fv.load, "load", "", "open a JSON maze file")
	f.BoolVar(&fv.ascii, "ascii", false, "draw with ASCII only")
	f.StringVar(&fv.style, "style", def.UI.StyleVariant, "color theme: modern_arcade|cozy_clean|retro_terminal")
	f.StringVar(&fv.motion, "motion", def.UI.MotionLevel, "drawer motion: off|reduced|full")
}

// resolveConfig layers defaults, PATHGRID_* variables and the flags that
// were set. Persisted settings are applied later by app.New and never
// override the keys pinned here.
func resolveConfig(flags *pflag.FlagSet, fv *flagValues) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := app.LoadEnv(&cfg); err != nil {
		return cfg, err
	}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "rows":
			cfg.Rows = fv.rows
		case "cols":
			cfg.Cols = fv.cols
		case "algorithm":
			cfg.Algorithm = fv.algorithm
		case "delay":
			cfg.DelayMS = fv.delayMS
		case "batch":
			cfg.BatchSize = fv.batchSize
		case "density":
			cfg.Density = fv.density
		case "solver-url":
			cfg.SolverURL = fv.solverURL
		case "solver-cmd":
			cfg.SolverCmd = fv.solverCmd
		case "solver-timeout":
			cfg.SolverTimeout = fv.solverTimeout
		case "mock-solver":
			cfg.MockSolver = fv.mockSolver
		case "mock-scenario":
			cfg.MockScenario = fv.mockScenario
		case "mock-style":
			cfg.MockStyle = fv.mockStyle
		case "data-dir":
			cfg.DataDir = fv.dataDir
		case "log":
			cfg.LogPath = fv.logPath
		case "preset-dir":
			cfg.PresetDir = fv.presetDir
		case "load":
			cfg.Load = fv.load
		case "ascii":
			cfg.ASCIIOnly = fv.ascii
		case "debug":
			cfg.Debug = fv.debug
		case "style":
			cfg.UI.StyleVariant = fv.style
		case "motion":
			cfg.UI.MotionLevel = fv.motion
		}
		cfg.Pin(settingKey(f.Name))
	})
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func settingKey(flag string) string {
	if flag == "delay" {
		return "delay_ms"
	}
	return strings.ReplaceAll(flag, "-", "_")
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cypherlabdev/house-edge-simulator/internal/config"
	"github.com/cypherlabdev/house-edge-simulator/internal/service"
	"github.com/cypherlabdev/house-edge-simulator/pkg/pricer"
	"github.com/cypherlabdev/house-edge-simulator/pkg/simulator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "simctl",
		Short:        "Run the house-edge simulation headless",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newPriceCmd())
	return root
}

type runOptions struct {
	configPath string
	rounds     int
	seed       uint64
	agents     int
	margin     string
	format     string
	ledgerOnly bool
	logLevel   string
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance a fresh session by N rounds and print per-round and cumulative results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to the YAML config file (defaults and env apply when empty)")
	flags.IntVarP(&opts.rounds, "rounds", "n", 10, "number of rounds to run")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 seeds from the clock")
	flags.IntVar(&opts.agents, "agents", 0, "override the agent count")
	flags.StringVar(&opts.margin, "margin", "", "override the house margin, e.g. 0.05")
	flags.StringVarP(&opts.format, "format", "o", formatJSON, "output format: json or yaml")
	flags.BoolVar(&opts.ledgerOnly, "ledger-only", false, "print only the cumulative ledger")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	return cmd
}

func runSimulation(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.agents > 0 {
		cfg.Simulation.AgentCount = opts.agents
	}

	simCfg, err := cfg.Simulation.ToSimulatorConfig()
	if err != nil {
		return err
	}
	if opts.margin != "" {
		simCfg.HouseMargin, err = decimal.NewFromString(opts.margin)
		if err != nil {
			return fmt.Errorf("invalid margin %q: %w", opts.margin, err)
		}
	}
	profiles, err := cfg.Profiles.ToProfileConfigs()
	if err != nil {
		return err
	}

	seed := cfg.Simulation.Seed
	if opts.seed != 0 {
		seed = opts.seed
	}
	if seed == 0 {
		// pin the clock seed so the summary can be replayed
		seed = uint64(time.Now().UnixNano())
	}

	logger := newLogger(stderr, opts.logLevel)
	session, err := simulator.NewSession(simCfg, profiles, logger, simulator.WithSource(simulator.NewSource(seed)))
	if err != nil {
		return err
	}

	svc := service.NewSimulationService(session, nil, nil, logger)
	results, runErr := svc.AdvanceRounds(ctx, opts.rounds)

	summary := summarizeRun(svc.Status(ctx), seed, results, svc.Ledger(ctx))
	var out any = summary
	if opts.ledgerOnly {
		out = summary.Ledger
	}
	if err := writeOutput(stdout, opts.format, out); err != nil {
		return err
	}

	return runErr
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Str("service", "simctl").Logger()
}

type priceOptions struct {
	margin string
	stake  string
	format string
}

func newPriceCmd() *cobra.Command {
	opts := priceOptions{}

	cmd := &cobra.Command{
		Use:   "price PROBABILITY [PROBABILITY...]",
		Short: "Price outcome probabilities at a house margin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(opts, args, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.margin, "margin", "0.05", "house margin")
	flags.StringVar(&opts.stake, "stake", "10", "stake used for the potential payout")
	flags.StringVarP(&opts.format, "format", "o", formatJSON, "output format: json or yaml")

	return cmd
}

func runPrice(opts priceOptions, args []string, stdout io.Writer) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	margin, err := decimal.NewFromString(opts.margin)
	if err != nil {
		return fmt.Errorf("invalid margin %q: %w", opts.margin, err)
	}
	stake, err := decimal.NewFromString(opts.stake)
	if err != nil || !stake.IsPositive() {
		return fmt.Errorf("invalid stake %q", opts.stake)
	}
	p, err := pricer.New(margin)
	if err != nil {
		return err
	}

	quotes := make([]priceQuote, 0, len(args))
	for _, arg := range args {
		prob, err := decimal.NewFromString(arg)
		if err != nil || prob.IsNegative() || prob.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("invalid probability %q: must be in [0, 1]", arg)
		}
		quotes = append(quotes, quoteOutcome(p, prob, stake))
	}

	return writeOutput(stdout, opts.format, quotes)
}

package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/intervalbot/backtest"
	"github.com/rustyeddy/intervalbot/broker"
	"github.com/rustyeddy/intervalbot/config"
	"github.com/rustyeddy/intervalbot/journal"
	"github.com/rustyeddy/intervalbot/risk"
	"github.com/rustyeddy/intervalbot/sim"
	"github.com/rustyeddy/intervalbot/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a tick dataset through the scheduler",
	Long: `Run the interval scheduler over a recorded tick dataset using
settings from a configuration file.

Example:
  intervalbot run -f examples/configs/basic.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runFrom       string
	runTo         string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runFrom, "from", "", "replay start time (RFC3339, optional)")
	runCmd.Flags().StringVar(&runTo, "to", "", "replay end time (RFC3339, optional)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	acct := broker.Account{
		ID:       cfg.Account.ID,
		Currency: cfg.Account.Currency,
		Balance:  cfg.Account.Balance,
		Equity:   cfg.Account.Balance,
	}
	engine := sim.NewEngine(acct, j, log)

	sc, err := cfg.StrategyConfig()
	if err != nil {
		return err
	}

	var guard *risk.EquityGuard
	if cfg.Guard.Enabled {
		guard, err = risk.NewEquityGuard(risk.GuardPolicy{
			TargetPct:   cfg.Guard.TargetPercent,
			TrailingPct: cfg.Guard.TrailingPercent,
		}, acct.Equity, sc.Location)
		if err != nil {
			return fmt.Errorf("equity guard: %w", err)
		}
	}

	seed := cfg.Schedule.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	strat, err := strategies.StrategyByName(cfg.Schedule.Strategy, sc, guard, rng, log)
	if err != nil {
		return err
	}

	from, to, err := parseRange(runFrom, runTo)
	if err != nil {
		return err
	}

	feed, err := backtest.NewCSVTicksFeed(cfg.Replay.TicksFile, from, to)
	if err != nil {
		return fmt.Errorf("open ticks file: %w", err)
	}

	log.Info("starting replay",
		zap.String("config", runConfigPath),
		zap.String("instrument", cfg.Schedule.Instrument),
		zap.String("window", cfg.Schedule.Window),
		zap.Int64("seed", seed))

	runner := &backtest.Runner{
		Engine:   engine,
		Feed:     feed,
		Strategy: strat,
		Options:  backtest.RunnerOptions{CloseEnd: cfg.Replay.CloseEnd},
	}

	res, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Printf("Replayed %d ticks (%s .. %s)\n", res.Ticks,
		res.Start.Format(time.RFC3339), res.End.Format(time.RFC3339))
	fmt.Printf("  Final balance: %.2f %s\n", res.FinalBalance, cfg.Account.Currency)
	fmt.Printf("  Final equity:  %.2f %s\n", res.FinalEquity, cfg.Account.Currency)
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile, jc.GuardFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.NewMemory(), nil
	}
}

func parseRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, to, fmt.Errorf("parse --from: %w", err)
		}
	}
	if toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			return from, to, fmt.Errorf("parse --to: %w", err)
		}
	}
	return from, to, nil
}

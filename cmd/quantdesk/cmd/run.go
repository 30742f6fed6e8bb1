package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantdesk/quantdesk/autopilot"
	"github.com/quantdesk/quantdesk/config"
	"github.com/quantdesk/quantdesk/events"
	"github.com/quantdesk/quantdesk/internal/logging"
	"github.com/quantdesk/quantdesk/journal"
	"github.com/quantdesk/quantdesk/ledger"
	"github.com/quantdesk/quantdesk/market"
	"github.com/quantdesk/quantdesk/oracle"
	"github.com/quantdesk/quantdesk/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the autopilot desk from a config file",
	Long: `Start the desk: restore persisted state, run the autopilot loop against
the configured venue, and save state on shutdown.

Example:
  quantdesk run -f quantdesk.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Sync()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	st, err := store.Open(cfg.Store.Path, cfg.Store.Namespace)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer st.Close()

	var oracleOpts []oracle.Option
	if cfg.Live.Enabled {
		oracleOpts = append(oracleOpts,
			oracle.WithLiveProvider(oracle.NewLiveProvider(cfg.Live.BaseURL, cfg.Live.QuoteCcy)))
	}
	quotes := oracle.New(log.Named("oracle"), oracleOpts...)

	eventLog := events.NewLog(events.DefaultCap)

	book := ledger.New(log.Named("ledger"),
		ledger.WithJournal(j),
		ledger.WithListener(eventLog),
		ledger.WithQuoter(quotes),
		ledger.WithFeeRate(cfg.Account.FeeRate),
		ledger.WithBalance(market.Simulation, cfg.Account.SimulationBalance),
	)
	book.SetActiveVenue(market.Venue(cfg.Account.Venue))
	book.SetLeverage(cfg.Account.Leverage)

	if saved, err := st.Load(); err != nil {
		log.Warn("state restore failed, starting fresh", zap.Error(err))
	} else if saved != nil {
		book.Restore(saved.Ledger)
		log.Info("state restored",
			zap.Int("positions", len(saved.Ledger.Positions)))
	}

	interval, _ := cfg.Autopilot.ParseInterval()
	pilotCfg := autopilot.Config{
		Interval:         interval,
		Threshold:        cfg.Autopilot.Threshold,
		RiskMin:          cfg.Autopilot.RiskMin,
		RiskMax:          cfg.Autopilot.RiskMax,
		BalanceFloor:     cfg.Autopilot.BalanceFloor,
		MaxPerInstrument: cfg.Autopilot.MaxPerInstrument,
	}
	pilot := autopilot.New(pilotCfg, book, quotes, autopilot.NewRandomScorer(0), 0, log.Named("autopilot"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("autopilot starting",
		zap.String("venue", cfg.Account.Venue),
		zap.Duration("interval", interval))
	pilot.Run(ctx)

	if err := st.Save(&store.AppState{
		Ledger: book.Snapshot(),
		Events: eventLog.Recent(0),
	}); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	log.Info("state saved, shutting down")
	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.PositionsFile, cfg.BalancesFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Noop{}, nil
	}
}

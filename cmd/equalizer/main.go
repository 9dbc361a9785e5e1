package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"equalizer/internal/batch"
	"equalizer/internal/config"
	"equalizer/internal/ledger"
	"equalizer/internal/notify"
	"equalizer/internal/observability"
	"equalizer/internal/reconcile"
	"equalizer/internal/store"
)

// CLI represents the main CLI application
type CLI struct {
	configFile string
	profile    string
	verbose    bool
	dryRun     bool
}

func main() {
	cli := &CLI{}

	// Global flags
	flag.StringVar(&cli.configFile, "config", "", "Configuration file path")
	flag.StringVar(&cli.profile, "profile", "", "Named profile under the user config directory")
	flag.BoolVar(&cli.verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&cli.dryRun, "dry-run", false, "Log mutations instead of applying them")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	subArgs := args[1:]

	// Setup logging
	logLevel := ""
	if cli.verbose {
		logLevel = "debug"
	}

	cfg := loadConfig(cli.configFile, cli.profile)
	if logLevel == "" {
		logLevel = cfg.Observability.Logging.Level
	}
	logger := observability.NewLogger(config.LoggingConfig{
		Level:  logLevel,
		Format: cfg.Observability.Logging.Format,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := newApp(cfg, cli.dryRun, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.store.Close()

	ctx := context.Background()

	switch subcommand {
	case "create-batch":
		err = app.createBatch(ctx, subArgs)
	case "reconcile":
		err = app.reconcileOne(ctx, subArgs)
	case "reconcile-all":
		err = app.reconcileAll(ctx)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("Command failed", "command", subcommand, "error", err)
		os.Exit(1)
	}
}

// app holds the wired collaborators shared by all subcommands.
type app struct {
	cfg      *config.Config
	dryRun   bool
	creditor *ledger.Client
	store    store.Repository
	orch     *reconcile.Orchestrator
	logger   *slog.Logger
}

func newApp(cfg *config.Config, dryRun bool, logger *slog.Logger) (*app, error) {
	repo, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening batch store: %w", err)
	}

	creditor := ledger.NewClient(ledger.Config{
		Token:   cfg.Creditor.APIKey,
		BaseURL: cfg.Ledger.BaseURL,
		DryRun:  dryRun,
		Logger:  logger.With("party", "creditor"),
	})
	debtor := ledger.NewClient(ledger.Config{
		Token:   cfg.Debtor.APIKey,
		BaseURL: cfg.Ledger.BaseURL,
		DryRun:  dryRun,
		Logger:  logger.With("party", "debtor"),
	})

	orch := reconcile.NewOrchestrator(creditor, debtor, repo, reconcile.Config{
		CreditorProxyCategoryID:    cfg.Creditor.ProxyCategoryID,
		CreditorRepaymentAccountID: cfg.Creditor.RepaymentAccountID,
		DebtorRepaymentAccountID:   cfg.Debtor.RepaymentAccountID,
		DryRun:                     dryRun,
	}, logger)

	return &app{
		cfg:      cfg,
		dryRun:   dryRun,
		creditor: creditor,
		store:    repo,
		orch:     orch,
		logger:   logger,
	}, nil
}

func (a *app) createBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-batch", flag.ExitOnError)
	startFlag := fs.String("start-date", "", "Start of the transaction window (yyyy-mm-dd, required)")
	endFlag := fs.String("end-date", "", "End of the transaction window (yyyy-mm-dd, defaults to today)")
	summaryFlag := fs.String("summary-html", "", "Also write the batch-ready email body to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *startFlag == "" {
		return errors.New("-start-date is required")
	}
	start, err := ledger.ParseDate(*startFlag)
	if err != nil {
		return err
	}

	end := ledger.Today()
	if *endFlag != "" {
		if end, err = ledger.ParseDate(*endFlag); err != nil {
			return err
		}
	}

	notifier := notify.Multi{&notify.LogNotifier{Logger: a.logger}}
	if *summaryFlag != "" {
		notifier = append(notifier, &notify.FileNotifier{Path: *summaryFlag, Logger: a.logger})
	}

	creator := batch.NewCreator(a.creditor, a.store, notifier, batch.Config{
		ProxyCategoryID:     a.cfg.Creditor.ProxyCategoryID,
		AddTag:              a.cfg.Tags.Batch,
		SplitTag:            a.cfg.Tags.Split,
		DebtorVenmoUsername: a.cfg.Debtor.VenmoUsername,
		DryRun:              a.dryRun,
	}, a.logger)

	result, err := creator.Run(ctx, start, end)
	if errors.Is(err, batch.ErrNoEligibleTransactions) {
		a.logger.Info("No eligible transactions in window", "start", start.String(), "end", end.String())
		return nil
	}
	if err != nil {
		return err
	}

	a.logger.Info("Batch created",
		"batch_id", result.BatchID,
		"amount", result.Amount.String(),
		"transactions", result.Count,
		"issues", len(result.Issues),
	)
	return nil
}

func (a *app) reconcileOne(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	batchID := fs.String("batch-id", "", "Batch to reconcile (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *batchID == "" {
		return errors.New("-batch-id is required")
	}

	return a.orch.ReconcileByID(ctx, *batchID)
}

func (a *app) reconcileAll(ctx context.Context) error {
	reconciled, err := a.orch.ReconcileAll(ctx)
	for _, id := range reconciled {
		a.logger.Info("Batch reconciled", "batch_id", id)
	}
	return err
}

func printUsage() {
	fmt.Println("Equalizer - shared expense batching for Lunch Money")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  equalizer [options] <command> [command options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create-batch    Collect tagged expenses into a repayment batch")
	fmt.Println("  reconcile       Match one batch against its repayment")
	fmt.Println("  reconcile-all   Reconcile every open batch")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  -config string   Configuration file path")
	fmt.Println("  -profile string  Named profile under the user config directory")
	fmt.Println("  -dry-run         Log mutations instead of applying them")
	fmt.Println("  -verbose         Enable verbose logging")
}

func loadConfig(configFile, profile string) *config.Config {
	if configFile == "" && profile != "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve profile %s: %v\n", profile, err)
			os.Exit(1)
		}
		configFile = filepath.Join(dir, "equalizer", "profiles", profile, "config.yaml")
	}
	if configFile == "" {
		candidates := []string{"config.yaml", "config.yml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				configFile = candidate
				break
			}
		}
	}

	if configFile == "" {
		return config.LoadFromEnv()
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", configFile, err)
		os.Exit(1)
	}
	return cfg
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MainnetGIT/BASE-NODE-sub001/internal/chain"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/config"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/events"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/journal"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/journal/postgres"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/model"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/sniper"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/token"
	"github.com/MainnetGIT/BASE-NODE-sub001/internal/trade"
)

func main() {
	root := &cobra.Command{
		Use:          "sniper",
		Short:        "New-pool launch sniper",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Watch for fresh token launches and trade them",
		RunE:  runSniper,
	}

	runCmd.Flags().String("rpc", "", "node RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (0 means current head, no backfill)")
	runCmd.Flags().Duration("poll-interval", time.Second, "poll interval between head checks")
	runCmd.Flags().Duration("error-backoff", 5*time.Second, "backoff after a transient fetch failure")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts per remote call")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Uint64("batch-size", 10, "max blocks per iteration when behind head")
	runCmd.Flags().StringSlice("factory", nil, "factory addresses to filter scans (comma-separated, empty = any emitter)")
	runCmd.Flags().StringSlice("strategy", []string{config.StrategyPoolCreation}, "detection strategies (pool-creation, first-transfer, router-transaction)")
	runCmd.Flags().StringSlice("known-token", nil, "extra known token addresses to exclude")
	runCmd.Flags().String("router", "0x2626664c2603336E57B271c5C0b26F421741e481", "swap router address")
	runCmd.Flags().String("quoter", "0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a", "quoter address")
	runCmd.Flags().String("weth", "0x4200000000000000000000000000000000000006", "wrapped native token address")
	runCmd.Flags().String("amount-in", "100000000000000", "swap input amount in wei")
	runCmd.Flags().Uint32("slippage-bps", 500, "slippage tolerance in basis points")
	runCmd.Flags().StringSlice("fee-tiers", []string{"500", "3000", "10000"}, "fee tiers to probe")
	runCmd.Flags().Duration("deadline", 5*time.Minute, "swap deadline window")
	runCmd.Flags().Int64("gas-boost-pct", 400, "gas price boost in percent (100 = no boost)")
	runCmd.Flags().Int64("max-gas-price-gwei", 50, "gas price cap in gwei")
	runCmd.Flags().Uint64("gas-limit", 500_000, "swap gas limit")
	runCmd.Flags().Bool("dry-run", false, "plan trades without submitting")
	runCmd.Flags().String("out", "./data/launches.jsonl", "launch/trade journal JSONL path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the journal")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSniper(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	registry := events.NewRegistry()
	decoder := events.NewDecoder(registry)

	factories := make([]common.Address, 0, len(cfg.Factories))
	for _, addr := range cfg.Factories {
		factories = append(factories, common.HexToAddress(addr))
	}
	scanner := sniper.NewScanner(chainClient, factories)

	router := common.HexToAddress(cfg.Router)
	producers, err := buildProducers(cfg, scanner, decoder, chainClient, router)
	if err != nil {
		return err
	}

	known := token.DefaultKnownTokens()
	for _, addr := range cfg.KnownTokens {
		known[common.HexToAddress(addr)] = model.TokenMeta{Address: common.HexToAddress(addr).Hex()}
	}
	resolver := token.NewResolver(chainClient, known, logger)

	planner := trade.NewPlanner(trade.PlannerConfig{
		Quoter:         common.HexToAddress(cfg.Quoter),
		SlippageBps:    cfg.SlippageBps,
		DeadlineWindow: cfg.DeadlineWin,
	}, chainClient)

	var signer trade.Signer
	if !cfg.DryRun {
		signer, err = trade.NewKeySigner(cfg.PrivateKey)
		if err != nil {
			return err
		}
		logger.Info("wallet loaded", zap.String("address", signer.Address().Hex()))
	}

	maxGasPrice := new(big.Int).Mul(big.NewInt(cfg.MaxGasPriceGwei), big.NewInt(1_000_000_000))
	executor := trade.NewExecutor(trade.ExecutorConfig{
		Router:      router,
		WETH:        common.HexToAddress(cfg.WETH),
		ChainID:     chainID,
		GasBoostPct: cfg.GasBoostPct,
		MaxGasPrice: maxGasPrice,
		GasLimit:    cfg.GasLimit,
		DryRun:      cfg.DryRun,
	}, chainClient, signer, logger)

	sink, closeSink, err := buildJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	runner := sniper.NewRunner(sniper.RunConfig{
		ChainID:      chainID.Uint64(),
		StartBlock:   cfg.StartBlock,
		PollInterval: cfg.PollInterval,
		ErrorBackoff: cfg.ErrorBackoff,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		BatchSize:    cfg.BatchSize,
		WETH:         common.HexToAddress(cfg.WETH),
		AmountIn:     cfg.AmountInWei(),
		FeeTiers:     cfg.FeeTiers,
	}, chainClient, producers, decoder, resolver, sniper.NewSeenStore(), planner, executor, sink, logger)

	logger.Info("sniper start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.Strings("strategies", cfg.Strategies),
		zap.String("amount_in", cfg.AmountIn),
		zap.Uint32("slippage_bps", cfg.SlippageBps),
		zap.Bool("dry_run", cfg.DryRun),
	)

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("stopped", zap.Uint64("last_block", runner.LastBlock()))
		return nil
	}
	return err
}

func buildProducers(
	cfg config.Config,
	scanner *sniper.Scanner,
	decoder *events.Decoder,
	chainClient *chain.Client,
	router common.Address,
) ([]sniper.CandidateProducer, error) {
	producers := make([]sniper.CandidateProducer, 0, len(cfg.Strategies))
	for _, strategy := range cfg.Strategies {
		switch strategy {
		case config.StrategyPoolCreation:
			producers = append(producers, sniper.NewPoolCreationProducer(scanner, decoder))
		case config.StrategyFirstTransfer:
			producers = append(producers, sniper.NewFirstTransferProducer(scanner, decoder))
		case config.StrategyRouterTx:
			producers = append(producers, sniper.NewRouterTransactionProducer(chainClient, chainClient, decoder, router))
		default:
			return nil, fmt.Errorf("unknown strategy %q", strategy)
		}
	}
	return producers, nil
}

func buildJournal(ctx context.Context, cfg config.Config) (journal.Journal, func(), error) {
	sinks := []journal.Journal{journal.NewJsonlJournal(cfg.Out)}
	closeSink := func() {}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sinks = append(sinks, store)
		closeSink = store.Close
	}

	return journal.Multi(sinks...), closeSink, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

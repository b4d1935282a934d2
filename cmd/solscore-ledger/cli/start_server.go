package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solscore-labs/solscore-ledger/internal/api"
	"github.com/solscore-labs/solscore-ledger/internal/clients/bank"
	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	dbmodel "github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
	"github.com/solscore-labs/solscore-ledger/internal/observability/tracing"
	"github.com/solscore-labs/solscore-ledger/internal/queue"
	"github.com/solscore-labs/solscore-ledger/internal/services"
)

const shutdownTimeout = 10 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the SolScore ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	dbClient, closeDb, err := newDbClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	defer closeDb()

	// Create a basic zap logger
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating zap logger")
	}
	defer func() {
		// syncing stderr fails on some platforms, nothing to do about it on exit
		_ = zapLogger.Sync()
	}()

	var publisher queue.Publisher = queue.NoopPublisher{}
	if cfg.Queue.Enabled {
		publisher, err = queue.NewQueueManager(&cfg.Queue, zapLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize event publisher")
		}
	}
	defer publisher.Shutdown()

	// config validation only accepts the memory bank together with the
	// in-memory store, so balances and ledger records are lost together.
	// TODO: add an on-chain transfer client once the program is deployed
	memoryBank, err := bank.NewMemoryBankFromConfig(cfg.Engine.GetProgramID(), &cfg.Bank)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating the bank")
	}
	log.Info().Int("accounts", len(cfg.Bank.Accounts)).Msg("memory bank seeded from config")
	transferer := bank.NewBankWithMetrics(memoryBank)

	service := services.NewService(cfg, dbClient, transferer, publisher, nil)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service.StartStatsPoller(ctx)

	server := api.New(&cfg.Server, service)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error while shutting down the api server")
		}
	}()

	return server.Start()
}

func newDbClient(ctx context.Context, cfg *config.Config) (db.DbInterface, func(), error) {
	if cfg.Db.InMemory {
		log.Ctx(ctx).Warn().Msg("using the in-memory store, ledger state is lost on restart")
		return db.NewDbWithMetrics(db.NewMemoryDatabase()), func() {}, nil
	}

	if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
		return nil, nil, fmt.Errorf("error while setting up ledger db model: %w", err)
	}

	client, err := db.New(ctx, cfg.Db)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(context.Background()); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("error while closing db client")
		}
	}
	return db.NewDbWithMetrics(client), closeFn, nil
}

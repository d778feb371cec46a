package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/config"
	"github.com/sellerops/wbsync/internal/db"
	"github.com/sellerops/wbsync/internal/kafka"
	"github.com/sellerops/wbsync/internal/logger"
	"github.com/sellerops/wbsync/internal/report"
	"github.com/sellerops/wbsync/internal/repository"
	"github.com/sellerops/wbsync/internal/store"
	syncsvc "github.com/sellerops/wbsync/internal/sync"
	"github.com/sellerops/wbsync/internal/wbapi"
)

var syncCmd = &cobra.Command{
	Use:   "sync [kind]",
	Short: "Sync seller data for all active tenants",
	Long: "Runs every sync task for every active tenant, or a single task " +
		"when a kind is given (stocks, orders, supplies, cards, prices, " +
		"region-sales, fin-report, storage, card-stats, stock-age, adverts).",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log, err := logger.New(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		redisClient, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
			DSN:             cfg.ClickHouse.DSN,
			MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
			MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
			PingTimeout:     cfg.ClickHouse.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		producer := kafka.NewProducerFromConfig(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.ResultsTopic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		defer func() { _ = producer.Close() }()

		limiter := wbapi.NewLimiter(cfg.API.Rate)
		executor := wbapi.NewExecutor(limiter, cfg.API.Retry, cfg.API.RequestTimeout, log)
		client := wbapi.NewClient(executor, wbapi.NewSpecs(wbapi.DefaultHosts()), log)
		runner := report.NewRunner(cfg.API.Report, log)
		writer := store.NewWriter(mysqlDB, cfg.Sync.ChunkSize, log)
		cursors := store.NewCursorStore(redisClient)
		events := store.NewEventLog(chDB, log)
		tenantsRepo := repository.NewTenantsRepository(mysqlDB)

		svc := syncsvc.NewService(cfg.Sync, client, runner, writer, cursors, log)

		tasks := svc.Tasks()
		if len(args) == 1 {
			task, ok := svc.Task(args[0])
			if !ok {
				return fmt.Errorf("unknown sync kind %q", args[0])
			}
			tasks = []syncsvc.Task{task}
		}

		orch := syncsvc.NewOrchestrator(cfg.Sync.MaxTenants, tenantsRepo, events, producer, log)
		summary, err := orch.RunForAll(ctx, tasks)
		if err != nil {
			return err
		}

		log.Info("sync complete",
			zap.Int("tenants", summary.Tenants),
			zap.Int("ok", summary.OK),
			zap.Int("failed", summary.Failed))
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d tenants failed: %v", summary.Failed, summary.Tenants, summary.Failures)
		}
		return nil
	},
}

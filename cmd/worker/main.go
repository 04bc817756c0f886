package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/jobs"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reconciler := inventory.NewReconcileUseCase(
		postgres.NewRepositories(pool),
		postgres.NewTxRunner(pool),
		inventory.ReconcileOptions{
			RepairAggregates: cfg.Worker.RepairAggregates,
			Concurrency:      cfg.Worker.ReconcileConcurrency,
		},
		log,
	)

	var cron []jobs.CronRegistration
	if cfg.Worker.ReconcileCron != "" {
		task, err := jobs.NewReconcileTask(jobs.ReconcilePayload{})
		if err != nil {
			log.Fatal().Err(err).Msg("tarea de conciliación")
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.Worker.ReconcileCron, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		Logger:    log,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReconcileInventory, Handler: jobs.NewReconcileHandler(reconciler, log)},
		},
		Cron: cron,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	log.Info().Str("cron", cfg.Worker.ReconcileCron).Msg("worker de conciliación iniciando")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}

// @title           Stock Ledger API
// @version         1.0
// @description     Libro de movimientos de stock y valorización a costo promedio ponderado.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	_ "github.com/jhoicas/stock-ledger/docs"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/application/sales"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
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
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		repos    repository.Repositories
	)
	switch cfg.App.StorageDriver {
	case "memory":
		store := memory.NewStore()
		seedDemo(store)
		txRunner, repos = store, store.Repositories()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.App.IsDevelopment() {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.NewRepositories(pool)
	}

	// Redis es opcional: sin REDIS_ADDR no hay caché de saldos ni cola de conciliación.
	var (
		balanceCache inventory.BalanceCache
		enqueuer     httpRouter.ReconcileEnqueuer
	)
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		balanceCache = cache.NewBalanceCache(client, cfg.Redis.CacheTTL, log)

		jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer jobClient.Close()
		enqueuer = jobClient
	}

	policy := inventory.Policy{
		AllowNegativeSales:       cfg.Inventory.AllowNegativeSales,
		AllowNegativeAdjustments: cfg.Inventory.AllowNegativeAdjustments,
		MaxRetries:               cfg.Inventory.MaxRetries,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	reconciler := inventory.NewReconcileUseCase(repos, txRunner, inventory.ReconcileOptions{
		RepairAggregates: cfg.Worker.RepairAggregates,
		Concurrency:      cfg.Worker.ReconcileConcurrency,
	}, log)

	httpRouter.Router(app, httpRouter.RouterDeps{
		Receive:   purchasing.NewReceiveUseCase(txRunner, policy, balanceCache, log),
		Fulfill:   sales.NewFulfillUseCase(txRunner, policy, balanceCache, cfg.Sales.OrderPrefix, log),
		Adjust:    inventory.NewStockAdjustmentUseCase(txRunner, policy, balanceCache, log),
		Transfer:  inventory.NewTransferUseCase(txRunner, policy, balanceCache, log),
		Balances:  inventory.NewBalanceQueryUseCase(repos.Balances, repos.Products, balanceCache),
		Ledger:    inventory.NewLedgerUseCase(repos.Ledger),
		Reconcile: reconciler,
		Enqueuer:  enqueuer,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedDemo catálogo mínimo para probar la API con STORAGE_DRIVER=memory.
func seedDemo(s *memory.Store) {
	s.AddWarehouse(entity.Warehouse{ID: "bodega-principal", Name: "Bodega principal", IsActive: true})
	s.AddWarehouse(entity.Warehouse{ID: "bodega-norte", Name: "Bodega norte", IsActive: true})
	s.AddProduct(entity.Product{ID: "demo-001", SKU: "DEMO-001", Name: "Producto demo", PurchasePrice: decimal.NewFromInt(1000)})
	s.AddPurchaseOrder(entity.PurchaseOrder{
		ID:     "oc-demo",
		Number: "OC-DEMO",
		Status: entity.PurchaseOrderApproved,
		Lines: []entity.PurchaseOrderLine{
			{ID: "oc-demo-1", ProductID: "demo-001", Quantity: 50, UnitCost: decimal.NewFromInt(1000)},
		},
	})
}

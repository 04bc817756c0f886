package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Receive   *purchasing.ReceiveUseCase
	Fulfill   *sales.FulfillUseCase
	Adjust    *inventory.StockAdjustmentUseCase
	Transfer  *inventory.TransferUseCase
	Balances  *inventory.BalanceQueryUseCase
	Ledger    *inventory.LedgerUseCase
	Reconcile *inventory.ReconcileUseCase
	Enqueuer  ReconcileEnqueuer // opcional
	JWTSecret string
	JWTIssuer string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; el subject es el actor.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	purchaseHandler := NewPurchaseHandler(deps.Receive)
	api.Post("/purchases/:id/receive", RequireRole(RoleAdmin, RoleBodeguero), purchaseHandler.Receive)

	salesHandler := NewSalesHandler(deps.Fulfill)
	api.Post("/sales", RequireRole(RoleAdmin, RoleVendedor), salesHandler.Create)

	inv := api.Group("/inventory")
	h := NewInventoryHandler(deps.Adjust, deps.Transfer, deps.Balances, deps.Ledger, deps.Reconcile, deps.Enqueuer)
	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)
	inv.Post("/adjustments", stockRoles, h.Adjust)
	inv.Post("/opening-stock", stockRoles, h.OpeningStock)
	inv.Post("/transfers", stockRoles, h.Transfer)
	inv.Get("/balances/:product_id", h.Balances)
	inv.Get("/ledger", h.Ledger)
	inv.Get("/reconcile/:product_id", RequireRole(RoleAdmin), h.Reconcile)
	inv.Post("/reconcile", RequireRole(RoleAdmin), h.EnqueueReconcile)
}

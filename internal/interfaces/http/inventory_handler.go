package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/jobs"
)

// ReconcileEnqueuer encola conciliaciones en el worker.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, payload jobs.ReconcilePayload) (*asynq.TaskInfo, error)
}

// InventoryHandler ajustes, traslados y consultas de inventario (protegido).
type InventoryHandler struct {
	adjust    *inventory.StockAdjustmentUseCase
	transfer  *inventory.TransferUseCase
	balances  *inventory.BalanceQueryUseCase
	ledger    *inventory.LedgerUseCase
	reconcile *inventory.ReconcileUseCase
	enqueuer  ReconcileEnqueuer
}

// NewInventoryHandler construye el handler. enqueuer puede ser nil (sin worker).
func NewInventoryHandler(
	adjust *inventory.StockAdjustmentUseCase,
	transfer *inventory.TransferUseCase,
	balances *inventory.BalanceQueryUseCase,
	ledger *inventory.LedgerUseCase,
	reconcile *inventory.ReconcileUseCase,
	enqueuer ReconcileEnqueuer,
) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, transfer: transfer, balances: balances, ledger: ledger, reconcile: reconcile, enqueuer: enqueuer}
}

// Adjust godoc
// @Summary      Ajuste de stock
// @Description  signed_delta positivo ingresa al costo indicado (o al último precio de compra); negativo descuenta al costo promedio.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Ajuste"
// @Success      201   {object}  dto.AdjustmentResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.AdjustmentResult
// @Failure      422   {object}  dto.AdjustmentResult
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	in.Actor = GetActor(c)
	res := h.adjust.Adjust(c.UserContext(), in)
	return resultJSON(c, res.Success, res.ErrorCode, fiber.StatusCreated, res)
}

// OpeningStock godoc
// @Summary      Saldo inicial
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpeningStockRequest  true  "Saldo inicial"
// @Success      201   {object}  dto.AdjustmentResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.AdjustmentResult  "el par ya tiene historial"
// @Router       /api/inventory/opening-stock [post]
func (h *InventoryHandler) OpeningStock(c *fiber.Ctx) error {
	var in dto.OpeningStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	in.Actor = GetActor(c)
	res := h.adjust.OpeningStock(c.UserContext(), in)
	return resultJSON(c, res.Success, res.ErrorCode, fiber.StatusCreated, res)
}

// Transfer godoc
// @Summary      Traslado entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Traslado"
// @Success      201   {object}  dto.TransferResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.TransferResult
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	in.Actor = GetActor(c)
	res := h.transfer.Transfer(c.UserContext(), in)
	return resultJSON(c, res.Success, res.ErrorCode, fiber.StatusCreated, res)
}

// Balances godoc
// @Summary      Saldos de un producto
// @Description  Con warehouse_id devuelve un solo saldo; sin él, todas las bodegas y el stock total.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {object}  dto.ProductStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{product_id} [get]
func (h *InventoryHandler) Balances(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		b, err := h.balances.Get(c.UserContext(), productID, warehouseID)
		if err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(b)
	}
	list, err := h.balances.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(list)
}

// Ledger godoc
// @Summary      Libro de stock
// @Description  Asientos en orden de registro. from y to en RFC 3339, ambos inclusivos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "Producto"
// @Param        warehouse_id  query  string  false  "Bodega (origen o destino)"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	q := dto.LedgerQuery{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	}
	var err error
	if q.From, err = parseTime(c.Query("from")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe estar en RFC 3339"})
	}
	if q.To, err = parseTime(c.Query("to")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe estar en RFC 3339"})
	}
	entries, err := h.ledger.EntriesFor(c.UserContext(), q)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "entries": entries})
}

// Reconcile godoc
// @Summary      Conciliar producto
// @Description  Reconstruye los saldos desde el libro y los compara con los almacenados.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto"
// @Success      200  {object}  dto.ProductReconciliation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile/{product_id} [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.reconcile.ReconcileProduct(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"consistent": rec.Consistent(), "reconciliation": rec})
}

// EnqueueReconcile godoc
// @Summary      Encolar conciliación completa
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) EnqueueReconcile(c *fiber.Ctx) error {
	if h.enqueuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "WORKER_DISABLED", Message: "no hay worker configurado"})
	}
	info, err := h.enqueuer.EnqueueReconcile(c.UserContext(), jobs.ReconcilePayload{})
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "QUEUE_UNAVAILABLE", Message: "no se pudo encolar la conciliación"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": info.ID, "queue": info.Queue})
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

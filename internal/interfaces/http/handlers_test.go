package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/application/sales"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/jobs"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeEnqueuer struct {
	err   error
	calls int
}

func (f *fakeEnqueuer) EnqueueReconcile(context.Context, jobs.ReconcilePayload) (*asynq.TaskInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault}, nil
}

func newAPI(t *testing.T, enqueuer apphttp.ReconcileEnqueuer) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "p1", SKU: "P-1", Name: "Café", PurchasePrice: decimal.NewFromInt(20)})
	s.AddProduct(entity.Product{ID: "p2", SKU: "P-2", Name: "Azúcar", PurchasePrice: decimal.NewFromInt(5)})
	s.AddWarehouse(entity.Warehouse{ID: "w1", Name: "Principal", IsActive: true})
	s.AddWarehouse(entity.Warehouse{ID: "w2", Name: "Sucursal", IsActive: true})
	s.AddPurchaseOrder(entity.PurchaseOrder{
		ID: "po-1", Number: "OC-001", Status: entity.PurchaseOrderApproved,
		Lines: []entity.PurchaseOrderLine{
			{ID: "pol-1", ProductID: "p1", Quantity: 10, UnitCost: decimal.NewFromInt(30)},
			{ID: "pol-2", ProductID: "p2", Quantity: 4, UnitCost: decimal.NewFromInt(6)},
		},
	})

	policy := inventory.DefaultPolicy()
	repos := s.Repositories()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Receive:   purchasing.NewReceiveUseCase(s, policy, nil, nil),
		Fulfill:   sales.NewFulfillUseCase(s, policy, nil, sales.DefaultOrderPrefix, nil),
		Adjust:    inventory.NewStockAdjustmentUseCase(s, policy, nil, nil),
		Transfer:  inventory.NewTransferUseCase(s, policy, nil, nil),
		Balances:  inventory.NewBalanceQueryUseCase(repos.Balances, repos.Products, nil),
		Ledger:    inventory.NewLedgerUseCase(repos.Ledger),
		Reconcile: inventory.NewReconcileUseCase(repos, s, inventory.ReconcileOptions{}, nil),
		Enqueuer:  enqueuer,
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
	})
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_RecibeYNoDuplica(t *testing.T) {
	app, _ := newAPI(t, nil)

	status, body := call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleBodeguero, map[string]string{"warehouse_id": "w1"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["lines_received"])
	assert.Equal(t, "324", body["total_amount"])

	status, body = call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleBodeguero, map[string]string{"warehouse_id": "w1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_PROCESSED", body["error_code"])

	status, body = call(t, app, http.MethodGet, "/api/inventory/balances/p1?warehouse_id=w1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10), body["quantity"])
}

func TestReceive_OrdenInexistente404YVendedor403(t *testing.T) {
	app, _ := newAPI(t, nil)

	status, body := call(t, app, http.MethodPost, "/api/purchases/po-x/receive", apphttp.RoleAdmin, map[string]string{"warehouse_id": "w1"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error_code"])

	status, _ = call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleVendedor, map[string]string{"warehouse_id": "w1"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestReceive_SinBodega400(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, body := call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleAdmin, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Contains(t, body["message"], "warehouse_id")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func saleBody(ref string, qty int64) map[string]any {
	return map[string]any{
		"reference_id":   ref,
		"warehouse_id":   "w1",
		"payment_method": "cash",
		"lines": []map[string]any{
			{"product_id": "p1", "quantity": qty, "unit_price": "50", "tax_rate": "0"},
		},
	}
}

func TestSales_CreaYRepiteConMismaReferencia(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, _ := call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleAdmin, map[string]string{"warehouse_id": "w1"})
	require.Equal(t, http.StatusOK, status)

	status, first := call(t, app, http.MethodPost, "/api/sales", apphttp.RoleVendedor, saleBody("ticket-1", 2))
	require.Equal(t, http.StatusCreated, status, first)
	assert.Equal(t, "100", first["total_amount"])
	assert.Equal(t, "60", first["cost_total"])

	status, again := call(t, app, http.MethodPost, "/api/sales", apphttp.RoleVendedor, saleBody("ticket-1", 2))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, again["duplicate"])
	assert.Equal(t, first["order_number"], again["order_number"])

	_, bal := call(t, app, http.MethodGet, "/api/inventory/balances/p1?warehouse_id=w1", apphttp.RoleVendedor, nil)
	assert.Equal(t, float64(8), bal["quantity"], "la venta repetida no descuenta de nuevo")
}

func TestSales_StockInsuficiente422(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, body := call(t, app, http.MethodPost, "/api/sales", apphttp.RoleAdmin, saleBody("ticket-2", 1))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["error_code"])
	assert.Equal(t, float64(1), body["failed_line"])
}

func TestSales_Validaciones400(t *testing.T) {
	app, _ := newAPI(t, nil)

	noLines := saleBody("t", 1)
	noLines["lines"] = []map[string]any{}
	badMethod := saleBody("t", 1)
	badMethod["payment_method"] = "bitcoin"
	zeroQty := saleBody("t", 0)

	for name, body := range map[string]map[string]any{"sin líneas": noLines, "medio inválido": badMethod, "cantidad cero": zeroQty} {
		t.Run(name, func(t *testing.T) {
			status, out := call(t, app, http.MethodPost, "/api/sales", apphttp.RoleAdmin, body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION", out["code"])
		})
	}
}

func TestSales_CuerpoRechazadoNoDescuentaStock(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, _ := call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleAdmin, map[string]string{"warehouse_id": "w1"})
	require.Equal(t, http.StatusOK, status)

	cases := map[string]map[string]any{
		"referencia de 150 caracteres": saleBody(strings.Repeat("r", 150), 3),
		"sin referencia":               saleBody("", 3),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, out := call(t, app, http.MethodPost, "/api/sales", apphttp.RoleVendedor, body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION", out["code"])
			assert.Contains(t, out["message"], "reference_id")
			assert.Nil(t, out["success"], "el caso de uso no debe ejecutarse")
		})
	}

	_, bal := call(t, app, http.MethodGet, "/api/inventory/balances/p1?warehouse_id=w1", apphttp.RoleVendedor, nil)
	assert.Equal(t, float64(10), bal["quantity"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestOpeningStock_DosVeces409(t *testing.T) {
	app, _ := newAPI(t, nil)
	body := map[string]any{"product_id": "p2", "warehouse_id": "w2", "quantity": 5, "unit_cost": "4"}

	status, out := call(t, app, http.MethodPost, "/api/inventory/opening-stock", apphttp.RoleBodeguero, body)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(5), out["new_quantity"])

	status, out = call(t, app, http.MethodPost, "/api/inventory/opening-stock", apphttp.RoleBodeguero, body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", out["error_code"])
}

func TestAdjustment_DeltaCero400YVendedor403(t *testing.T) {
	app, _ := newAPI(t, nil)
	body := map[string]any{"product_id": "p1", "warehouse_id": "w1", "signed_delta": 0, "reason": "conteo"}

	status, out := call(t, app, http.MethodPost, "/api/inventory/adjustments", apphttp.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])
	_, out = call(t, app, http.MethodGet, "/api/inventory/ledger?product_id=p1", apphttp.RoleAdmin, nil)
	assert.Equal(t, float64(0), out["total"], "el ajuste rechazado no escribe en el libro")

	body["signed_delta"] = 3
	status, _ = call(t, app, http.MethodPost, "/api/inventory/adjustments", apphttp.RoleVendedor, body)
	assert.Equal(t, http.StatusForbidden, status)

	status, out = call(t, app, http.MethodPost, "/api/inventory/adjustments", apphttp.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(3), out["new_quantity"])
	assert.Equal(t, "20", out["new_average_cost"], "sin costo se usa el último precio de compra")
}

func TestTransfer_YLibro(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, _ := call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleAdmin, map[string]string{"warehouse_id": "w1"})
	require.Equal(t, http.StatusOK, status)

	body := map[string]any{"product_id": "p1", "from_warehouse_id": "w1", "to_warehouse_id": "w2", "quantity": 4}
	status, out := call(t, app, http.MethodPost, "/api/inventory/transfers", apphttp.RoleBodeguero, body)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(6), out["source_quantity"])
	assert.Equal(t, float64(4), out["target_quantity"])

	status, out = call(t, app, http.MethodGet, "/api/inventory/ledger?product_id=p1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), out["total"], "recepción + salida + entrada")

	status, out = call(t, app, http.MethodGet, "/api/inventory/ledger?product_id=p1&warehouse_id=w2", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), out["total"], "solo la entrada del traslado afecta la bodega destino")

	status, out = call(t, app, http.MethodGet, "/api/inventory/balances/p1", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10), out["total_stock_quantity"])
	assert.Len(t, out["balances"], 2)
}

func TestTransfer_MismaBodega400(t *testing.T) {
	app, _ := newAPI(t, nil)
	body := map[string]any{"product_id": "p1", "from_warehouse_id": "w1", "to_warehouse_id": "w1", "quantity": 1}
	status, out := call(t, app, http.MethodPost, "/api/inventory/transfers", apphttp.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])
	assert.Nil(t, out["success"])
}

func TestLedger_FechaInvalida400(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, out := call(t, app, http.MethodGet, "/api/inventory/ledger?product_id=p1&from=ayer", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])

	status, _ = call(t, app, http.MethodGet, "/api/inventory/ledger", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, status, "product_id es obligatorio")
}

func TestBalances_ProductoInexistente404(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, out := call(t, app, http.MethodGet, "/api/inventory/balances/nope", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", out["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Conciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_ProductoConsistente(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, _ := call(t, app, http.MethodPost, "/api/purchases/po-1/receive", apphttp.RoleAdmin, map[string]string{"warehouse_id": "w1"})
	require.Equal(t, http.StatusOK, status)

	status, out := call(t, app, http.MethodGet, "/api/inventory/reconcile/p1", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["consistent"])

	status, _ = call(t, app, http.MethodGet, "/api/inventory/reconcile/p1", apphttp.RoleBodeguero, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestEnqueueReconcile(t *testing.T) {
	app, _ := newAPI(t, nil)
	status, out := call(t, app, http.MethodPost, "/api/inventory/reconcile", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "WORKER_DISABLED", out["code"])

	enq := &fakeEnqueuer{}
	app, _ = newAPI(t, enq)
	status, out = call(t, app, http.MethodPost, "/api/inventory/reconcile", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "task-1", out["task_id"])
	assert.Equal(t, 1, enq.calls)

	app, _ = newAPI(t, &fakeEnqueuer{err: errors.New("redis caído")})
	status, _ = call(t, app, http.MethodPost, "/api/inventory/reconcile", apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

package sales_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/sales"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newStore dos productos con saldo: p1 = 10 @ 40, p2 = 3 @ 5.
func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "p1", SKU: "P1", Name: "Queso"})
	s.AddProduct(entity.Product{ID: "p2", SKU: "P2", Name: "Pan"})
	s.AddWarehouse(entity.Warehouse{ID: "w1", Name: "Tienda", IsActive: true})
	adj := inventory.NewStockAdjustmentUseCase(s, inventory.DefaultPolicy(), nil, nil)
	for _, o := range []dto.OpeningStockRequest{
		{ProductID: "p1", WarehouseID: "w1", Quantity: 10, UnitCost: dec("40")},
		{ProductID: "p2", WarehouseID: "w1", Quantity: 3, UnitCost: dec("5")},
	} {
		res := adj.OpeningStock(context.Background(), o)
		require.True(t, res.Success, res.ErrorMessage)
	}
	return s
}

func newUseCase(s *memory.Store) *sales.FulfillUseCase {
	return sales.NewFulfillUseCase(s, inventory.DefaultPolicy(), nil, "", nil)
}

func quantity(t *testing.T, s *memory.Store, productID string) int64 {
	t.Helper()
	b, err := inventory.LoadBalance(context.Background(), s.Repositories().Balances, productID, "w1")
	require.NoError(t, err)
	return b.Quantity
}

func ledgerLen(t *testing.T, s *memory.Store, productID string) int {
	t.Helper()
	e, err := s.Repositories().Ledger.EntriesFor(context.Background(), repository.LedgerFilter{ProductID: productID})
	require.NoError(t, err)
	return len(e)
}

func cartRequest(ref string) dto.SaleRequest {
	return dto.SaleRequest{
		ReferenceID:   ref,
		WarehouseID:   "w1",
		PaymentMethod: entity.PaymentCash,
		Actor:         "cajero",
		Lines: []dto.SaleLineRequest{
			{ProductID: "p1", Quantity: 2, UnitPrice: dec("50"), TaxRate: dec("0.19")},
			{ProductID: "p2", Quantity: 1, UnitPrice: dec("10")},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfill_DescuentaYRegistraCaja(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)

	res := uc.Fulfill(context.Background(), cartRequest("ref-1"))

	require.True(t, res.Success, res.ErrorMessage)
	assert.True(t, strings.HasPrefix(res.OrderNumber, "VTA-"), res.OrderNumber)
	assert.Equal(t, "129.00", res.TotalAmount.StringFixed(2), "2*50*1.19 + 10")
	assert.Equal(t, "85.00", res.CostTotal.StringFixed(2), "2*40 + 1*5")
	assert.Equal(t, int64(8), quantity(t, s, "p1"))
	assert.Equal(t, int64(2), quantity(t, s, "p2"))

	repos := s.Repositories()
	sale, err := repos.Sales.GetByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, res.SaleID, sale.ID)
	assert.Equal(t, "110.00", sale.NetTotal.StringFixed(2))
	assert.Equal(t, "19.00", sale.TaxTotal.StringFixed(2))
	require.Len(t, sale.Lines, 2)
	assert.True(t, sale.Lines[0].CostBasis.Equal(dec("40")))

	cash, err := repos.Cash.ListBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, cash, 1)
	assert.Equal(t, entity.PaymentCash, cash[0].PaymentMethod)
	assert.Equal(t, "129.00", cash[0].Amount.StringFixed(2))

	entries, err := repos.Ledger.EntriesFor(context.Background(), repository.LedgerFilter{ProductID: "p1"})
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, entity.MovementSaleDeduction, last.MovementType)
	assert.Equal(t, sale.ID, last.TransactionID)
	assert.Equal(t, sale.Lines[0].ID, last.ReferenceID)
	assert.Equal(t, "w1", last.SourceWarehouseID)

	p1, err := repos.Products.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), p1.TotalStockQuantity)
}

func TestFulfill_StockInsuficienteNoEscribeNingunaLinea(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)
	req := cartRequest("ref-2")
	req.Lines[1].Quantity = 5 // p2 tiene 3

	res := uc.Fulfill(context.Background(), req)

	assert.False(t, res.Success)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.ErrorCode)
	assert.Equal(t, 2, res.FailedLine)
	assert.Contains(t, res.ErrorMessage, "p2")
	assert.Equal(t, int64(10), quantity(t, s, "p1"), "la línea con stock suficiente tampoco se descuenta")
	assert.Equal(t, int64(3), quantity(t, s, "p2"))
	assert.Equal(t, 1, ledgerLen(t, s, "p1"))
	assert.Equal(t, 1, ledgerLen(t, s, "p2"))
	_, err := s.Repositories().Sales.GetByReference(context.Background(), "ref-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFulfill_VentaEnNegativoSiLaPoliticaLoPermite(t *testing.T) {
	s := newStore(t)
	policy := inventory.DefaultPolicy()
	policy.AllowNegativeSales = true
	uc := sales.NewFulfillUseCase(s, policy, nil, "POS", nil)
	req := cartRequest("ref-neg")
	req.Lines = []dto.SaleLineRequest{{ProductID: "p2", Quantity: 5, UnitPrice: dec("10")}}

	res := uc.Fulfill(context.Background(), req)

	require.True(t, res.Success, res.ErrorMessage)
	assert.True(t, strings.HasPrefix(res.OrderNumber, "POS-"))
	assert.Equal(t, int64(-2), quantity(t, s, "p2"))
}

func TestFulfill_RepetirNoDescuentaDosVeces(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)

	first := uc.Fulfill(context.Background(), cartRequest("ref-3"))
	require.True(t, first.Success, first.ErrorMessage)
	second := uc.Fulfill(context.Background(), cartRequest("ref-3"))

	require.True(t, second.Success, second.ErrorMessage)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, first.SaleID, second.SaleID)
	assert.Equal(t, int64(8), quantity(t, s, "p1"))
	assert.Equal(t, 2, ledgerLen(t, s, "p1"))
}

func TestFulfill_SinReferenciaSeRechazaSinDescontar(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)
	before := quantity(t, s, "p1")
	entries := ledgerLen(t, s, "p1")

	for i := 0; i < 2; i++ {
		res := uc.Fulfill(context.Background(), cartRequest(""))
		assert.False(t, res.Success)
		assert.Equal(t, "VALIDATION", res.ErrorCode)
		assert.Contains(t, res.ErrorMessage, "reference_id")
	}
	assert.Equal(t, before, quantity(t, s, "p1"))
	assert.Equal(t, entries, ledgerLen(t, s, "p1"))
}

func TestFulfill_RepeticionConcurrente(t *testing.T) {
	s := newStore(t)
	policy := inventory.DefaultPolicy()
	policy.MaxRetries = 50
	uc := sales.NewFulfillUseCase(s, policy, nil, "", nil)

	var wg sync.WaitGroup
	results := make([]dto.SaleResult, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = uc.Fulfill(context.Background(), cartRequest("ref-race"))
		}()
	}
	wg.Wait()

	duplicates := 0
	for _, r := range results {
		require.True(t, r.Success, r.ErrorMessage)
		if r.Duplicate {
			duplicates++
		}
	}
	assert.Equal(t, 3, duplicates)
	assert.Equal(t, int64(8), quantity(t, s, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfill_PagoDividido(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)
	req := cartRequest("ref-4")
	req.Payments = []dto.PaymentRequest{
		{Method: entity.PaymentCash, Amount: dec("29")},
		{Method: entity.PaymentCard, Amount: dec("100")},
	}

	res := uc.Fulfill(context.Background(), req)

	require.True(t, res.Success, res.ErrorMessage)
	cash, err := s.Repositories().Cash.ListBySale(context.Background(), res.SaleID)
	require.NoError(t, err)
	require.Len(t, cash, 2)
	sum := cash[0].Amount.Add(cash[1].Amount)
	assert.True(t, sum.Equal(res.TotalAmount))
}

func TestFulfill_VentaEnCeroSinCaja(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)
	req := cartRequest("ref-cortesia")
	for i := range req.Lines {
		req.Lines[i].DiscountPercent = dec("100")
	}

	res := uc.Fulfill(context.Background(), req)

	require.True(t, res.Success, res.ErrorMessage)
	assert.True(t, res.TotalAmount.IsZero())
	assert.Equal(t, int64(8), quantity(t, s, "p1"), "la mercancía sale igual")
	cash, err := s.Repositories().Cash.ListBySale(context.Background(), res.SaleID)
	require.NoError(t, err)
	assert.Empty(t, cash)
}

func TestFulfill_PagoIncompletoNoDescuenta(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)
	req := cartRequest("ref-5")
	req.Payments = []dto.PaymentRequest{{Method: entity.PaymentCash, Amount: dec("100")}}

	res := uc.Fulfill(context.Background(), req)

	assert.False(t, res.Success)
	assert.Equal(t, "NOT_TENDERED", res.ErrorCode)
	assert.ErrorIs(t, res.Err, domain.ErrNotTendered)
	assert.Equal(t, int64(10), quantity(t, s, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfill_Validaciones(t *testing.T) {
	s := newStore(t)
	uc := newUseCase(s)

	cases := []struct {
		name   string
		mutate func(r *dto.SaleRequest)
		code   string
		line   int
	}{
		{"sin líneas", func(r *dto.SaleRequest) { r.Lines = nil }, "VALIDATION", 0},
		{"sin bodega", func(r *dto.SaleRequest) { r.WarehouseID = "" }, "VALIDATION", 0},
		{"cantidad cero", func(r *dto.SaleRequest) { r.Lines[1].Quantity = 0 }, "VALIDATION", 2},
		{"total de línea inconsistente", func(r *dto.SaleRequest) { r.Lines[0].LineTotal = dec("1") }, "VALIDATION", 1},
		{"producto inexistente", func(r *dto.SaleRequest) { r.Lines[0].ProductID = "nope" }, "NOT_FOUND", 1},
		{"bodega inexistente", func(r *dto.SaleRequest) { r.WarehouseID = "nope" }, "NOT_FOUND", 0},
		{"medio de pago inválido", func(r *dto.SaleRequest) { r.PaymentMethod = "bitcoin" }, "VALIDATION", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := cartRequest("ref-" + tc.name)
			tc.mutate(&req)
			res := uc.Fulfill(context.Background(), req)
			assert.False(t, res.Success)
			assert.Equal(t, tc.code, res.ErrorCode)
			assert.Equal(t, tc.line, res.FailedLine)
		})
	}
	assert.Equal(t, int64(10), quantity(t, s, "p1"))
}

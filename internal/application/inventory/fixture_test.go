package inventory_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodA = "prod-a"
	prodB = "prod-b"
	wh1   = "wh-1"
	wh2   = "wh-2"
	whOff = "wh-off"
	actor = "user-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: prodA, SKU: "A-001", Name: "Arroz", PurchasePrice: dec("70")})
	s.AddProduct(entity.Product{ID: prodB, SKU: "B-001", Name: "Frijol", PurchasePrice: dec("12.50")})
	s.AddWarehouse(entity.Warehouse{ID: wh1, Name: "Principal", IsActive: true})
	s.AddWarehouse(entity.Warehouse{ID: wh2, Name: "Sucursal", IsActive: true})
	s.AddWarehouse(entity.Warehouse{ID: whOff, Name: "Cerrada", IsActive: false})
	return s
}

// seedOpening carga saldo inicial por el caso de uso real.
func seedOpening(t *testing.T, s *memory.Store, productID, warehouseID string, qty int64, cost string) {
	t.Helper()
	uc := inventory.NewStockAdjustmentUseCase(s, inventory.DefaultPolicy(), nil, nil)
	res := uc.OpeningStock(context.Background(), dto.OpeningStockRequest{
		ProductID: productID, WarehouseID: warehouseID, Quantity: qty, UnitCost: dec(cost), Actor: actor,
	})
	require.True(t, res.Success, res.ErrorMessage)
}

func balanceOf(t *testing.T, s *memory.Store, productID, warehouseID string) entity.InventoryBalance {
	t.Helper()
	b, err := inventory.LoadBalance(context.Background(), s.Repositories().Balances, productID, warehouseID)
	require.NoError(t, err)
	return *b
}

func entriesOf(t *testing.T, s *memory.Store, productID, warehouseID string) []*entity.StockLedgerEntry {
	t.Helper()
	e, err := s.Repositories().Ledger.EntriesFor(context.Background(), repository.LedgerFilter{ProductID: productID, WarehouseID: warehouseID})
	require.NoError(t, err)
	return e
}

func totalStock(t *testing.T, s *memory.Store, productID string) int64 {
	t.Helper()
	p, err := s.Repositories().Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.TotalStockQuantity
}

// conflictRunner simula que otra operación gana la carrera en los primeros n intentos.
type conflictRunner struct {
	inner     inventory.TxRunner
	remaining atomic.Int64
	calls     atomic.Int64
}

func newConflictRunner(inner inventory.TxRunner, n int64) *conflictRunner {
	r := &conflictRunner{inner: inner}
	r.remaining.Store(n)
	return r
}

func (r *conflictRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	r.calls.Add(1)
	return r.inner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if r.remaining.Add(-1) >= 0 {
			repos.Balances = staleBalances{repos.Balances}
		}
		return fn(ctx, repos)
	})
}

type staleBalances struct {
	repository.InventoryBalanceRepository
}

func (staleBalances) TryUpdate(_ context.Context, expected int64, b *entity.InventoryBalance) error {
	return fmt.Errorf("saldo %s/%s versión %d: %w", b.ProductID, b.WarehouseID, expected, domain.ErrConcurrencyConflict)
}

// mapCache caché de saldos en memoria para verificar lectura e invalidación.
type mapCache struct {
	data        map[inventory.Pair]entity.InventoryBalance
	invalidated []inventory.Pair
}

func newMapCache() *mapCache { return &mapCache{data: map[inventory.Pair]entity.InventoryBalance{}} }

func (c *mapCache) Get(_ context.Context, p, w string) (*entity.InventoryBalance, bool) {
	b, ok := c.data[inventory.Pair{ProductID: p, WarehouseID: w}]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c *mapCache) Set(_ context.Context, b *entity.InventoryBalance) {
	c.data[inventory.Pair{ProductID: b.ProductID, WarehouseID: b.WarehouseID}] = *b
}

func (c *mapCache) Invalidate(_ context.Context, pairs ...inventory.Pair) {
	for _, p := range pairs {
		delete(c.data, inventory.Pair{ProductID: p.ProductID, WarehouseID: p.WarehouseID})
		c.invalidated = append(c.invalidated, p)
	}
}

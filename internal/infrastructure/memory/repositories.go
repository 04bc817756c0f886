package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockLedgerRepository      = (*ledgerRepo)(nil)
	_ repository.InventoryBalanceRepository = (*balanceRepo)(nil)
	_ repository.ProductRepository          = (*productRepo)(nil)
	_ repository.WarehouseRepository        = (*warehouseRepo)(nil)
	_ repository.PurchaseOrderRepository    = (*purchaseOrderRepo)(nil)
	_ repository.SaleRepository             = (*saleRepo)(nil)
	_ repository.CashTransactionRepository  = (*cashRepo)(nil)
)

// ─── Libro de stock ───────────────────────────────────────────────────────────

type ledgerRepo struct{ t *tx }

func (r *ledgerRepo) Append(_ context.Context, entry *entity.StockLedgerEntry) (string, error) {
	if err := entry.Validate(); err != nil {
		return "", err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.t.entries = append(r.t.entries, *entry)
	return entry.ID, r.t.flush()
}

func (r *ledgerRepo) EntriesFor(_ context.Context, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	r.t.s.mu.Lock()
	committed := r.t.s.filterLedger(f)
	r.t.s.mu.Unlock()

	out := make([]*entity.StockLedgerEntry, 0, len(committed)+len(r.t.entries))
	for i := range committed {
		out = append(out, &committed[i])
	}
	for _, e := range r.t.entries {
		if matches(&e, f) {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *ledgerRepo) WarehousesWithHistory(ctx context.Context, productID string) ([]string, error) {
	entries, err := r.EntriesFor(ctx, repository.LedgerFilter{ProductID: productID})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, e := range entries {
		w := e.WarehouseID()
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ─── Saldos ───────────────────────────────────────────────────────────────────

type balanceRepo struct{ t *tx }

func (r *balanceRepo) Get(_ context.Context, productID, warehouseID string) (*entity.InventoryBalance, error) {
	k := pairKey{productID, warehouseID}
	if b, ok := r.t.balances[k]; ok {
		return &b, nil
	}
	r.t.s.mu.Lock()
	b, ok := r.t.s.balances[k]
	r.t.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *balanceRepo) TryUpdate(_ context.Context, expectedVersion int64, balance *entity.InventoryBalance) error {
	k := pairKey{balance.ProductID, balance.WarehouseID}
	current, staged := r.t.balances[k]
	if !staged {
		r.t.s.mu.Lock()
		current = r.t.s.balances[k]
		r.t.s.mu.Unlock()
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("saldo %s/%s versión %d, esperada %d: %w",
			balance.ProductID, balance.WarehouseID, current.Version, expectedVersion, domain.ErrConcurrencyConflict)
	}
	if _, touched := r.t.base[k]; !touched {
		r.t.base[k] = expectedVersion
	}
	balance.Version = expectedVersion + 1
	r.t.balances[k] = *balance
	return r.t.flush()
}

func (r *balanceRepo) ListByProduct(_ context.Context, productID string) ([]*entity.InventoryBalance, error) {
	merged := map[string]entity.InventoryBalance{}
	r.t.s.mu.Lock()
	for k, b := range r.t.s.balances {
		if k.productID == productID {
			merged[k.warehouseID] = b
		}
	}
	r.t.s.mu.Unlock()
	for k, b := range r.t.balances {
		if k.productID == productID {
			merged[k.warehouseID] = b
		}
	}
	out := make([]*entity.InventoryBalance, 0, len(merged))
	for _, b := range merged {
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

// ─── Productos ────────────────────────────────────────────────────────────────

type productRepo struct{ t *tx }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.t.s.mu.Lock()
	p, ok := r.t.s.products[id]
	p.TotalStockQuantity = r.t.totalStock(p)
	r.t.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if price, ok := r.t.prices[id]; ok {
		p.PurchasePrice = price
	}
	return &p, nil
}

func (r *productRepo) ListIDs(_ context.Context) ([]string, error) {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	ids := make([]string, 0, len(r.t.s.products))
	for id := range r.t.s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *productRepo) exists(id string) bool {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	_, ok := r.t.s.products[id]
	return ok
}

func (r *productRepo) AdjustTotalStock(_ context.Context, productID string, delta int64) error {
	if !r.exists(productID) {
		return domain.ErrNotFound
	}
	r.t.stockDelta[productID] += delta
	return r.t.flush()
}

func (r *productRepo) StockTotals(_ context.Context, productID string) (int64, int64, error) {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	p, ok := r.t.s.products[productID]
	if !ok {
		return 0, 0, domain.ErrNotFound
	}
	return r.t.totalStock(p), r.t.balanceSum(productID), nil
}

// RecomputeTotalStock se resuelve en el commit, bajo el mismo candado que aplica los saldos.
func (r *productRepo) RecomputeTotalStock(_ context.Context, productID string) error {
	if !r.exists(productID) {
		return domain.ErrNotFound
	}
	delete(r.t.stockDelta, productID)
	r.t.recompute[productID] = struct{}{}
	return r.t.flush()
}

func (r *productRepo) UpdatePurchasePrice(_ context.Context, productID string, price decimal.Decimal) error {
	if !r.exists(productID) {
		return domain.ErrNotFound
	}
	r.t.prices[productID] = price
	return r.t.flush()
}

// ─── Bodegas ──────────────────────────────────────────────────────────────────

type warehouseRepo struct{ t *tx }

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	w, ok := r.t.s.warehouses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &w, nil
}

// ─── Órdenes de compra ────────────────────────────────────────────────────────

type purchaseOrderRepo struct{ t *tx }

func (r *purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	r.t.s.mu.Lock()
	po, ok := r.t.s.orders[id]
	r.t.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	po.Lines = append([]entity.PurchaseOrderLine(nil), po.Lines...)
	if mark, ok := r.t.received[id]; ok {
		at := mark.at
		po.Status = entity.PurchaseOrderReceived
		po.ReceivedAt = &at
		po.ReceivedBy = mark.actor
	}
	return &po, nil
}

func (r *purchaseOrderRepo) MarkReceived(ctx context.Context, id, actor string, at time.Time) error {
	po, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch po.Status {
	case entity.PurchaseOrderApproved:
	case entity.PurchaseOrderReceived:
		return domain.ErrAlreadyProcessed
	default:
		return fmt.Errorf("%w: la orden está en estado %s", domain.ErrConflict, po.Status)
	}
	r.t.received[id] = receivedMark{actor: actor, at: at}
	return r.t.flush()
}

// ─── Ventas y caja ────────────────────────────────────────────────────────────

type saleRepo struct{ t *tx }

func (r *saleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if _, err := r.GetByReference(ctx, sale.ReferenceID); err == nil {
		return domain.ErrAlreadyProcessed
	}
	s := *sale
	s.Lines = append([]entity.SaleLine(nil), sale.Lines...)
	r.t.sales = append(r.t.sales, s)
	return r.t.flush()
}

func (r *saleRepo) GetByReference(_ context.Context, referenceID string) (*entity.Sale, error) {
	for _, s := range r.t.sales {
		if s.ReferenceID == referenceID {
			return &s, nil
		}
	}
	r.t.s.mu.Lock()
	s, ok := r.t.s.sales[referenceID]
	r.t.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

type cashRepo struct{ t *tx }

func (r *cashRepo) Create(_ context.Context, ct *entity.CashTransaction) error {
	if ct.ID == "" {
		ct.ID = uuid.New().String()
	}
	r.t.cash = append(r.t.cash, *ct)
	return r.t.flush()
}

func (r *cashRepo) ListBySale(_ context.Context, saleID string) ([]*entity.CashTransaction, error) {
	out := []*entity.CashTransaction{}
	r.t.s.mu.Lock()
	for _, c := range r.t.s.cash {
		if c.SaleID == saleID {
			out = append(out, &c)
		}
	}
	r.t.s.mu.Unlock()
	for _, c := range r.t.cash {
		if c.SaleID == saleID {
			out = append(out, &c)
		}
	}
	return out, nil
}

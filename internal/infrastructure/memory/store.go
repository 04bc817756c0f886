// Package memory implementa los repositorios en memoria con la misma semántica transaccional
// que el almacén Postgres: escrituras aisladas hasta el commit y control de versión optimista.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type pairKey struct {
	productID   string
	warehouseID string
}

// Store estado confirmado. Implementa TxRunner.
type Store struct {
	mu         sync.Mutex
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	balances   map[pairKey]entity.InventoryBalance
	ledger     []entity.StockLedgerEntry
	seq        int64
	lastTS     time.Time
	orders     map[string]entity.PurchaseOrder
	sales      map[string]entity.Sale // por ReferenceID
	cash       []entity.CashTransaction
	now        func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   map[string]entity.Product{},
		warehouses: map[string]entity.Warehouse{},
		balances:   map[pairKey]entity.InventoryBalance{},
		orders:     map[string]entity.PurchaseOrder{},
		sales:      map[string]entity.Sale{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AddProduct registra un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// AddPurchaseOrder registra una orden de compra con sus líneas.
func (s *Store) AddPurchaseOrder(po entity.PurchaseOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po.Lines = append([]entity.PurchaseOrderLine(nil), po.Lines...)
	s.orders[po.ID] = po
}

// Run ejecuta fn en una transacción. Si fn falla se descarta todo lo escrito;
// si otra transacción confirmó antes un saldo que fn leyó, el commit falla con ErrConcurrencyConflict.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTx(s, false)
	if err := fn(ctx, t.repositories()); err != nil {
		return err
	}
	return s.commit(t)
}

// Repositories repositorios fuera de transacción: cada escritura se confirma de inmediato.
func (s *Store) Repositories() repository.Repositories {
	return newTx(s, true).repositories()
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, base := range t.base {
		if s.balances[k].Version != base {
			return fmt.Errorf("saldo %s/%s: %w", k.productID, k.warehouseID, domain.ErrConcurrencyConflict)
		}
	}
	for id := range t.received {
		if s.orders[id].Status != entity.PurchaseOrderApproved {
			return fmt.Errorf("orden de compra %s: %w", id, domain.ErrAlreadyProcessed)
		}
	}
	for _, sale := range t.sales {
		if _, dup := s.sales[sale.ReferenceID]; dup {
			return fmt.Errorf("venta %s: %w", sale.ReferenceID, domain.ErrAlreadyProcessed)
		}
	}

	for k, b := range t.balances {
		s.balances[k] = b
	}
	for _, e := range t.entries {
		ts := s.now()
		if !ts.After(s.lastTS) {
			ts = s.lastTS.Add(time.Nanosecond)
		}
		s.lastTS = ts
		s.seq++
		e.Sequence = s.seq
		e.Timestamp = ts
		s.ledger = append(s.ledger, e)
	}
	for id, delta := range t.stockDelta {
		p := s.products[id]
		p.TotalStockQuantity += delta
		p.UpdatedAt = s.now()
		s.products[id] = p
	}
	for id := range t.recompute {
		p := s.products[id]
		p.TotalStockQuantity = s.balanceSum(id)
		p.UpdatedAt = s.now()
		s.products[id] = p
	}
	for id, price := range t.prices {
		p := s.products[id]
		p.PurchasePrice = price
		s.products[id] = p
	}
	for id, mark := range t.received {
		po := s.orders[id]
		at := mark.at
		po.Status = entity.PurchaseOrderReceived
		po.ReceivedAt = &at
		po.ReceivedBy = mark.actor
		po.UpdatedAt = at
		s.orders[id] = po
	}
	for _, sale := range t.sales {
		s.sales[sale.ReferenceID] = sale
	}
	s.cash = append(s.cash, t.cash...)
	t.reset()
	return nil
}

// balanceSum suma los saldos confirmados del producto. Requiere s.mu.
func (s *Store) balanceSum(productID string) int64 {
	var sum int64
	for k, b := range s.balances {
		if k.productID == productID {
			sum += b.Quantity
		}
	}
	return sum
}

func (s *Store) filterLedger(f repository.LedgerFilter) []entity.StockLedgerEntry {
	out := make([]entity.StockLedgerEntry, 0)
	for _, e := range s.ledger {
		if matches(&e, f) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func matches(e *entity.StockLedgerEntry, f repository.LedgerFilter) bool {
	if e.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && e.WarehouseID() != f.WarehouseID {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	return true
}

type receivedMark struct {
	actor string
	at    time.Time
}

// tx escrituras pendientes de una transacción.
type tx struct {
	s          *Store
	auto       bool
	balances   map[pairKey]entity.InventoryBalance
	base       map[pairKey]int64 // versión confirmada al primer TryUpdate del par
	entries    []entity.StockLedgerEntry
	stockDelta map[string]int64
	recompute  map[string]struct{}
	prices     map[string]decimal.Decimal
	received   map[string]receivedMark
	sales      []entity.Sale
	cash       []entity.CashTransaction
}

func newTx(s *Store, auto bool) *tx {
	t := &tx{s: s, auto: auto}
	t.reset()
	return t
}

func (t *tx) reset() {
	t.balances = map[pairKey]entity.InventoryBalance{}
	t.base = map[pairKey]int64{}
	t.entries = nil
	t.stockDelta = map[string]int64{}
	t.recompute = map[string]struct{}{}
	t.prices = map[string]decimal.Decimal{}
	t.received = map[string]receivedMark{}
	t.sales = nil
	t.cash = nil
}

// flush confirma de inmediato en modo autocommit.
func (t *tx) flush() error {
	if !t.auto {
		return nil
	}
	return t.s.commit(t)
}

// balanceSum suma los saldos del producto vistos por la transacción. Requiere s.mu.
func (t *tx) balanceSum(productID string) int64 {
	sum := t.s.balanceSum(productID)
	for k, b := range t.balances {
		if k.productID == productID {
			sum += b.Quantity - t.s.balances[k].Quantity
		}
	}
	return sum
}

// totalStock agregado de p visto por la transacción. Requiere s.mu.
func (t *tx) totalStock(p entity.Product) int64 {
	if _, pending := t.recompute[p.ID]; pending {
		return t.balanceSum(p.ID)
	}
	return p.TotalStockQuantity + t.stockDelta[p.ID]
}

func (t *tx) repositories() repository.Repositories {
	return repository.Repositories{
		Ledger:         &ledgerRepo{t},
		Balances:       &balanceRepo{t},
		Products:       &productRepo{t},
		Warehouses:     &warehouseRepo{t},
		PurchaseOrders: &purchaseOrderRepo{t},
		Sales:          &saleRepo{t},
		Cash:           &cashRepo{t},
	}
}

package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Movement describe un movimiento a registrar sobre un solo saldo (producto, bodega).
type Movement struct {
	ProductID     string
	WarehouseID   string
	Type          entity.MovementType
	Quantity      int64           // magnitud, siempre positiva
	UnitCost      decimal.Decimal // solo entradas
	AllowNegative bool            // solo salidas
	TransactionID string
	ReferenceID   string
	Actor         string
	Description   string
}

// Posting resultado de registrar un movimiento.
type Posting struct {
	Before       entity.InventoryBalance
	After        entity.InventoryBalance
	Entry        *entity.StockLedgerEntry
	CostBasis    decimal.Decimal // costo unitario registrado en el libro
	WentNegative bool            // una salida dejó el saldo bajo cero, aunque ya lo estuviera
}

// Pair saldo escrito por el movimiento, con la versión que quedará confirmada.
func (p *Posting) Pair() Pair {
	return Pair{ProductID: p.After.ProductID, WarehouseID: p.After.WarehouseID, Version: p.After.Version}
}

// LoadBalance lee el saldo actual; un par sin saldo es un saldo implícito en cero (versión 0).
func LoadBalance(ctx context.Context, balances repository.InventoryBalanceRepository, productID, warehouseID string) (*entity.InventoryBalance, error) {
	b, err := balances.Get(ctx, productID, warehouseID)
	if errors.Is(err, domain.ErrNotFound) {
		return entity.NewEmptyBalance(productID, warehouseID), nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Post registra un movimiento dentro de la transacción del caller:
// lee el saldo, calcula con el motor de costos, escribe el saldo con control de versión,
// agrega el asiento al libro y mueve el agregado del producto. Debe ejecutarse dentro de RunAtomic.
func Post(ctx context.Context, repos repository.Repositories, m Movement) (*Posting, error) {
	current, err := LoadBalance(ctx, repos.Balances, m.ProductID, m.WarehouseID)
	if err != nil {
		return nil, err
	}

	var (
		next     entity.InventoryBalance
		unitCost decimal.Decimal
	)
	if m.Type.IsInbound() {
		next, err = costing.ApplyReceipt(*current, m.Quantity, m.UnitCost)
		unitCost = m.UnitCost
	} else {
		next, unitCost, err = costing.ApplyDeduction(*current, m.Quantity, m.AllowNegative)
	}
	if err != nil {
		return nil, err
	}

	// El timestamp se toma después de leer el saldo: así queda posterior al asiento que produjo esa versión.
	now := time.Now().UTC()
	entry := &entity.StockLedgerEntry{
		ID:            uuid.New().String(),
		Timestamp:     now,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		UnitCost:      unitCost,
		MovementType:  m.Type,
		TransactionID: m.TransactionID,
		ReferenceID:   m.ReferenceID,
		Actor:         m.Actor,
		Description:   m.Description,
	}
	if m.Type.IsInbound() {
		entry.TargetWarehouseID = m.WarehouseID
	} else {
		entry.SourceWarehouseID = m.WarehouseID
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	next.UpdatedAt = now
	if err := repos.Balances.TryUpdate(ctx, current.Version, &next); err != nil {
		return nil, err
	}
	if _, err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, err
	}
	if err := repos.Products.AdjustTotalStock(ctx, m.ProductID, entry.SignedQuantity()); err != nil {
		return nil, err
	}

	return &Posting{
		Before:       *current,
		After:        next,
		Entry:        entry,
		CostBasis:    unitCost,
		WentNegative: !m.Type.IsInbound() && next.Quantity < 0,
	}, nil
}

// RequireProduct devuelve el producto o domain.ErrNotFound.
func RequireProduct(ctx context.Context, products repository.ProductRepository, id string) (*entity.Product, error) {
	if id == "" {
		return nil, domain.Invalid("product_id", "es obligatorio")
	}
	p, err := products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// RequireWarehouse devuelve la bodega activa o domain.ErrNotFound.
func RequireWarehouse(ctx context.Context, warehouses repository.WarehouseRepository, id string) (*entity.Warehouse, error) {
	if id == "" {
		return nil, domain.Invalid("warehouse_id", "es obligatorio")
	}
	w, err := warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	if !w.IsActive {
		return nil, domain.Invalid("warehouse_id", "la bodega está inactiva")
	}
	return w, nil
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementOpeningStock    MovementType = "OPENING_STOCK"
	MovementPurchaseReceipt MovementType = "PURCHASE_RECEIPT"
	MovementSaleDeduction   MovementType = "SALE_DEDUCTION"
	MovementAdjustmentPlus  MovementType = "ADJUSTMENT_PLUS"
	MovementAdjustmentMinus MovementType = "ADJUSTMENT_MINUS"
	MovementTransferIn      MovementType = "TRANSFER_IN"
	MovementTransferOut     MovementType = "TRANSFER_OUT"
)

// IsInbound indica si el movimiento suma stock en la bodega destino.
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementOpeningStock, MovementPurchaseReceipt, MovementAdjustmentPlus, MovementTransferIn:
		return true
	}
	return false
}

// IsValid indica si el tipo pertenece al catálogo.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementOpeningStock, MovementPurchaseReceipt, MovementSaleDeduction,
		MovementAdjustmentPlus, MovementAdjustmentMinus, MovementTransferIn, MovementTransferOut:
		return true
	}
	return false
}

// StockLedgerEntry registro inmutable de un movimiento de stock. Nunca se edita ni se borra:
// las correcciones son nuevos asientos compensatorios.
type StockLedgerEntry struct {
	ID                string
	Sequence          int64 // orden de inserción; desempata registros con el mismo Timestamp
	Timestamp         time.Time
	ProductID         string
	SourceWarehouseID string // salidas y traslados de salida
	TargetWarehouseID string // entradas y traslados de entrada
	Quantity          int64  // siempre magnitud positiva
	UnitCost          decimal.Decimal
	MovementType      MovementType
	TransactionID     string // agrupa los asientos de una misma operación (orden, venta, ajuste)
	ReferenceID       string // línea del documento que originó el movimiento
	Actor             string
	Description       string
}

// WarehouseID bodega afectada por el asiento.
func (e *StockLedgerEntry) WarehouseID() string {
	if e.MovementType.IsInbound() {
		return e.TargetWarehouseID
	}
	return e.SourceWarehouseID
}

// SignedQuantity cantidad con signo desde el punto de vista de la bodega afectada.
func (e *StockLedgerEntry) SignedQuantity() int64 {
	if e.MovementType.IsInbound() {
		return e.Quantity
	}
	return -e.Quantity
}

// TotalCost cantidad * costo unitario.
func (e *StockLedgerEntry) TotalCost() decimal.Decimal {
	return e.UnitCost.Mul(decimal.NewFromInt(e.Quantity))
}

// Validate verifica la forma del asiento antes de escribirlo.
func (e *StockLedgerEntry) Validate() error {
	if e.ProductID == "" {
		return domain.Invalid("product_id", "es obligatorio")
	}
	if !e.MovementType.IsValid() {
		return domain.Invalid("movement_type", "desconocido")
	}
	if e.Quantity <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if e.UnitCost.IsNegative() {
		return domain.Invalid("unit_cost", "no puede ser negativo")
	}
	if e.MovementType.IsInbound() && e.TargetWarehouseID == "" {
		return domain.Invalid("target_warehouse_id", "es obligatorio para "+string(e.MovementType))
	}
	if !e.MovementType.IsInbound() && e.SourceWarehouseID == "" {
		return domain.Invalid("source_warehouse_id", "es obligatorio para "+string(e.MovementType))
	}
	return nil
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
// UnitCost es opcional: por defecto se usa el último precio de compra del producto.
type AdjustmentRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	WarehouseID string           `json:"warehouse_id" validate:"required"`
	SignedDelta int64            `json:"signed_delta" validate:"required,ne=0"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason      string           `json:"reason" validate:"required,max=500"`
	Actor       string           `json:"-"`
}

// AdjustmentResult resultado de un ajuste, apertura o traslado.
type AdjustmentResult struct {
	Success        bool            `json:"success"`
	NewQuantity    int64           `json:"new_quantity"`
	NewAverageCost decimal.Decimal `json:"new_average_cost"`
	Warning        string          `json:"warning,omitempty"`
	ErrorCode      string          `json:"error_code,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Err            error           `json:"-"`
}

// OpeningStockRequest body para POST /api/inventory/opening-stock.
type OpeningStockRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Actor       string          `json:"-"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Quantity        int64  `json:"quantity" validate:"required,gt=0"`
	Reason          string `json:"reason" validate:"max=500"`
	Actor           string `json:"-"`
}

// TransferResult saldos resultantes en origen y destino.
type TransferResult struct {
	Success        bool            `json:"success"`
	SourceQuantity int64           `json:"source_quantity"`
	TargetQuantity int64           `json:"target_quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ErrorCode      string          `json:"error_code,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Err            error           `json:"-"`
}

// BalanceResponse saldo de un producto en una bodega.
type BalanceResponse struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	Quantity        int64           `json:"quantity"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"` // redondeado a 2 decimales
	StockValue      decimal.Decimal `json:"stock_value"`
	Version         int64           `json:"version"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductStockResponse saldos de un producto en todas sus bodegas.
type ProductStockResponse struct {
	ProductID          string            `json:"product_id"`
	TotalStockQuantity int64             `json:"total_stock_quantity"`
	Balances           []BalanceResponse `json:"balances"`
}

// LedgerQuery filtros de GET /api/inventory/ledger.
type LedgerQuery struct {
	ProductID   string     `query:"product_id" validate:"required"`
	WarehouseID string     `query:"warehouse_id"`
	From        *time.Time `query:"-"`
	To          *time.Time `query:"-"`
}

// LedgerEntryResponse asiento del libro de stock.
type LedgerEntryResponse struct {
	ID                string          `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	ProductID         string          `json:"product_id"`
	SourceWarehouseID string          `json:"source_warehouse_id,omitempty"`
	TargetWarehouseID string          `json:"target_warehouse_id,omitempty"`
	Quantity          int64           `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	MovementType      string          `json:"movement_type"`
	TransactionID     string          `json:"transaction_id"`
	ReferenceID       string          `json:"reference_id"`
	Actor             string          `json:"actor"`
	Description       string          `json:"description"`
}

// PairDiscrepancy diferencia entre el saldo almacenado y el reconstruido desde el libro.
type PairDiscrepancy struct {
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	StoredQuantity   int64           `json:"stored_quantity"`
	ReplayedQuantity int64           `json:"replayed_quantity"`
	StoredCost       decimal.Decimal `json:"stored_cost"`
	ReplayedCost     decimal.Decimal `json:"replayed_cost"`
}

// ProductReconciliation resultado de conciliar un producto.
type ProductReconciliation struct {
	ProductID         string            `json:"product_id"`
	PairsChecked      int               `json:"pairs_checked"`
	Discrepancies     []PairDiscrepancy `json:"discrepancies"`
	AggregateStored   int64             `json:"aggregate_stored"`
	AggregateExpected int64             `json:"aggregate_expected"`
	AggregateRepaired bool              `json:"aggregate_repaired"`
}

// Consistent indica que el saldo y el agregado coinciden con el libro.
func (r ProductReconciliation) Consistent() bool {
	return len(r.Discrepancies) == 0 && r.AggregateStored == r.AggregateExpected
}

// ReconciliationReport resumen de una corrida completa.
type ReconciliationReport struct {
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
	Products     int                     `json:"products"`
	Inconsistent []ProductReconciliation `json:"inconsistent"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	PurchaseOrderDraft     = "draft"
	PurchaseOrderApproved  = "approved"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

// PurchaseOrder cabecera de una orden de compra (creada por el flujo de compras).
type PurchaseOrder struct {
	ID         string
	Number     string
	SupplierID string
	Status     string
	Lines      []PurchaseOrderLine
	ReceivedAt *time.Time
	ReceivedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderLine línea de la orden.
type PurchaseOrderLine struct {
	ID        string
	ProductID string
	Quantity  int64
	UnitCost  decimal.Decimal
}

// Total suma de cantidad * costo de todas las líneas.
func (po *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range po.Lines {
		total = total.Add(l.UnitCost.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}

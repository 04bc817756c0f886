package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryBalance es el saldo actual de un producto en una bodega (caché materializada del libro).
// Version es el token de concurrencia optimista: 0 significa que la fila aún no existe.
type InventoryBalance struct {
	ProductID       string
	WarehouseID     string
	Quantity        int64
	AverageUnitCost decimal.Decimal
	Version         int64
	UpdatedAt       time.Time
}

// NewEmptyBalance devuelve el saldo implícito (cantidad y costo en cero) de un par sin historial.
func NewEmptyBalance(productID, warehouseID string) *InventoryBalance {
	return &InventoryBalance{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		AverageUnitCost: decimal.Zero,
	}
}

// StockValue valor del inventario a costo promedio.
func (b *InventoryBalance) StockValue() decimal.Decimal {
	return b.AverageUnitCost.Mul(decimal.NewFromInt(b.Quantity))
}

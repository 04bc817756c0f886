package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (multi-bodega).
// TotalStockQuantity es el agregado desnormalizado: suma de InventoryBalance.Quantity en todas las bodegas.
type Product struct {
	ID                 string
	SKU                string // código único
	Name               string
	UnitMeasure        string
	TaxRate            decimal.Decimal // IVA: 0, 0.05, 0.19
	PurchasePrice      decimal.Decimal // último precio de compra; costo por defecto de ajustes positivos
	SalePrice          decimal.Decimal
	TotalStockQuantity int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

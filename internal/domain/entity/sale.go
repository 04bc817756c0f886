package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale venta completada en el punto de venta.
// ReferenceID es la llave de idempotencia del llamador: única por venta.
type Sale struct {
	ID            string
	ReferenceID   string
	OrderNumber   string
	WarehouseID   string
	CustomerID    string
	PaymentMethod string
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	CostTotal     decimal.Decimal // costo de ventas al promedio vigente
	Actor         string
	Lines         []SaleLine
	CreatedAt     time.Time
}

// SaleLine línea de la venta con el costo base capturado al descontar.
type SaleLine struct {
	ID              string
	ProductID       string
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxRate         decimal.Decimal
	LineTotal       decimal.Decimal
	CostBasis       decimal.Decimal
}

// GrossProfit margen bruto: neto de la venta menos costo.
func (s *Sale) GrossProfit() decimal.Decimal {
	return s.NetTotal.Sub(s.CostTotal)
}

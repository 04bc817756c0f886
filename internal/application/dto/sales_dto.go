package dto

import "github.com/shopspring/decimal"

// SaleLineRequest línea del carrito.
type SaleLineRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Quantity        int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// PaymentRequest pago entregado en caja.
type PaymentRequest struct {
	Method string          `json:"method" validate:"required,oneof=cash card transfer credit"`
	Amount decimal.Decimal `json:"amount"`
}

// SaleRequest body para POST /api/sales.
// ReferenceID es la llave de idempotencia: repetir la misma venta no vuelve a descontar stock.
type SaleRequest struct {
	ReferenceID   string            `json:"reference_id" validate:"required,max=100"`
	WarehouseID   string            `json:"warehouse_id" validate:"required"`
	CustomerID    string            `json:"customer_id,omitempty"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer credit"`
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Payments      []PaymentRequest  `json:"payments,omitempty" validate:"omitempty,dive"`
	Actor         string            `json:"-"`
}

// SaleResult resultado de la venta.
type SaleResult struct {
	Success      bool            `json:"success"`
	SaleID       string          `json:"sale_id,omitempty"`
	OrderNumber  string          `json:"order_number,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CostTotal    decimal.Decimal `json:"cost_total"`
	Duplicate    bool            `json:"duplicate,omitempty"`
	FailedLine   int             `json:"failed_line,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Err          error           `json:"-"`
}
